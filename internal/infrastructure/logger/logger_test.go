package logger

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given the logger package", t, func() {
		Convey("When creating a console-only logger", func() {
			logger, err := New("info", "")

			Convey("It should log without panicking", func() {
				So(err, ShouldBeNil)
				So(logger, ShouldNotBeNil)
				So(func() { logger.Infof("backup run for %s finished", "db-1") }, ShouldNotPanic)
			})
		})

		Convey("When a log file is configured", func() {
			logFile := filepath.Join(t.TempDir(), "logs", "custos.log")

			logger, err := New("debug", logFile)
			So(err, ShouldBeNil)

			logger.Debugf("scheduler tick, %d databases due", 3)
			logger.Sync()

			Convey("Entries land in the rotated file", func() {
				content, err := os.ReadFile(logFile)
				So(err, ShouldBeNil)
				So(string(content), ShouldContainSubstring, "scheduler tick")

				logger.Close()
			})
		})

		Convey("When the level string is unknown", func() {
			logger, err := New("chatty", "")

			Convey("It should fall back to info", func() {
				So(err, ShouldBeNil)
				So(logger, ShouldNotBeNil)
				So(func() { logger.Info("still works") }, ShouldNotPanic)
			})
		})

		Convey("When the log directory cannot be created", func() {
			// A regular file where the parent directory should go.
			blocker := filepath.Join(t.TempDir(), "blocker")
			So(os.WriteFile(blocker, []byte("x"), 0644), ShouldBeNil)

			logger, err := New("info", filepath.Join(blocker, "custos.log"))

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "failed to create log directory")
				So(logger, ShouldBeNil)
			})
		})

		Convey("Close flushes and does not panic", func() {
			logFile := filepath.Join(t.TempDir(), "custos.log")
			logger, err := New("info", logFile)
			So(err, ShouldBeNil)

			logger.Infof("shutting down")
			So(func() { logger.Close() }, ShouldNotPanic)

			_, err = os.Stat(logFile)
			So(err, ShouldBeNil)
		})
	})
}
