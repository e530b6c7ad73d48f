package usecase

import (
	"context"
	"io"

	"github.com/semmidev/custos/internal/domain"
)

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// Notifier is told about backup outcomes. Optional; a nil notifier is
// silently skipped.
type Notifier interface {
	Notify(message string) error
}

// ToolRunner launches the external dump/restore tools.
type ToolRunner interface {
	StartDump(ctx context.Context, conn domain.DatabaseConnection) (Process, error)
	StartRestore(ctx context.Context, target domain.RestoreTarget) (Process, error)
}

// Process is one running external tool. Stdout carries a dump's archive
// stream; Stdin accepts a restore's. Wait reports a nonzero exit as
// *domain.ToolError; Kill terminates the process early, after which Wait
// must still be called to reap it.
type Process interface {
	Stdout() io.ReadCloser
	Stdin() io.WriteCloser
	Wait() error
	Kill()
}
