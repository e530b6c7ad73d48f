package usecase

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/semmidev/custos/internal/domain"
)

func TestSchedulerTick(t *testing.T) {
	ctx := context.Background()

	Convey("Given the scheduling tick", t, func() {
		Convey("Only due databases are dumped", func() {
			recent := time.Now().Add(-time.Hour)
			due := testConn(nil)
			notDue := testConn(&recent)
			notDue.ID = "db-2"
			notDue.Name = "inventory"

			runner := &fakeRunner{makeDump: func() *fakeProcess {
				return newFakeProcess([]byte("archive"), nil)
			}}
			databases := newMemDatabases(due, notDue)
			backups := newMemBackups()
			store := newMemBlobStore()
			dump := NewDump(databases, backups, store, runner, NewGuard(), nil, nopLogger{}, "backups", 0)
			sched := NewScheduler(databases, dump, nopLogger{})

			err := sched.Tick(ctx)

			So(err, ShouldBeNil)
			So(runner.dumpCalls(), ShouldEqual, 1)
			So(backups.count(), ShouldEqual, 1)
			So(databases.lastBackup("db-1"), ShouldNotBeNil)
			So(databases.lastBackup("db-2").Equal(recent), ShouldBeTrue)
		})

		Convey("One database's failure does not affect the others", func() {
			bad := testConn(nil)
			good := testConn(nil)
			good.ID = "db-2"
			good.Name = "inventory"

			calls := 0
			runner := &fakeRunner{makeDump: func() *fakeProcess {
				calls++
				if calls == 1 {
					return newFakeProcess(nil, &domain.ToolError{Tool: "pg_dump", ExitCode: 1, Stderr: "boom"})
				}
				return newFakeProcess([]byte("archive"), nil)
			}}
			databases := newMemDatabases(bad, good)
			backups := newMemBackups()
			dump := NewDump(databases, backups, newMemBlobStore(), runner, NewGuard(), nil, nopLogger{}, "backups", 0)
			sched := NewScheduler(databases, dump, nopLogger{})

			err := sched.Tick(ctx)

			Convey("The tick never fails; both dumps still ran", func() {
				So(err, ShouldBeNil)
				So(runner.dumpCalls(), ShouldEqual, 2)
				So(backups.count(), ShouldEqual, 1)
			})
		})

		Convey("A dump still in flight makes the next tick skip it", func() {
			conn := testConn(nil)
			block := make(chan struct{})
			runner := &fakeRunner{makeDump: func() *fakeProcess {
				proc := newFakeProcess(nil, nil)
				proc.stdout = blockingReader{ch: block}
				return proc
			}}
			databases := newMemDatabases(conn)
			backups := newMemBackups()
			guard := NewGuard()
			dump := NewDump(databases, backups, newMemBlobStore(), runner, guard, nil, nopLogger{}, "backups", 0)
			sched := NewScheduler(databases, dump, nopLogger{})

			firstDone := make(chan struct{})
			go func() {
				defer close(firstDone)
				_ = sched.Tick(ctx)
			}()

			// Wait for the first tick's dump to hold the guard.
			for i := 0; i < 100 && guard.TryAcquire("db-1"); i++ {
				guard.Release("db-1")
				time.Sleep(5 * time.Millisecond)
			}

			err := sched.Tick(ctx)
			So(err, ShouldBeNil)

			close(block)
			<-firstDone

			Convey("Only the first tick's dump ran to completion", func() {
				So(backups.count(), ShouldEqual, 1)
				So(runner.dumpCalls(), ShouldEqual, 1)
			})
		})
	})
}
