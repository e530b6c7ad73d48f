package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers unknown databases, backups and store objects.
	ErrNotFound = errors.New("not found")

	// ErrNotDue means the interval policy rejected a scheduled dump.
	ErrNotDue = errors.New("backup not due yet")

	// ErrUnknownInterval means an interval kind outside the enumeration.
	ErrUnknownInterval = errors.New("unknown backup interval")

	// ErrUnsupportedEngine means the pipeline has no dump/restore path
	// for the connection's engine kind.
	ErrUnsupportedEngine = errors.New("unsupported database engine")

	// ErrAlreadyInProgress means a dump for the same database is running.
	ErrAlreadyInProgress = errors.New("backup already in progress")

	// ErrToolUnavailable means the external tool could not be launched,
	// as opposed to launching and exiting nonzero.
	ErrToolUnavailable = errors.New("backup tool unavailable")

	// ErrStoreWrite / ErrStoreRead are object-store transport failures.
	ErrStoreWrite = errors.New("object store write failed")
	ErrStoreRead  = errors.New("object store read failed")

	// ErrRegistration means the metadata write failed after the artifact
	// was already stored; the object is orphaned.
	ErrRegistration = errors.New("backup registration failed")
)

// ToolError reports an external dump/restore tool that launched and then
// exited nonzero. Stderr carries the tool's diagnostic output.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, e.Stderr)
}
