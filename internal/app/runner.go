package app

import (
	"context"

	"github.com/semmidev/custos/internal/adapter/toolrunner"
	"github.com/semmidev/custos/internal/domain"
	"github.com/semmidev/custos/internal/usecase"
)

// runnerAdapter lifts the concrete tool runner to the usecase port.
type runnerAdapter struct {
	runner *toolrunner.Runner
}

func (a runnerAdapter) StartDump(ctx context.Context, conn domain.DatabaseConnection) (usecase.Process, error) {
	p, err := a.runner.StartDump(ctx, conn)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (a runnerAdapter) StartRestore(ctx context.Context, target domain.RestoreTarget) (usecase.Process, error) {
	p, err := a.runner.StartRestore(ctx, target)
	if err != nil {
		return nil, err
	}
	return p, nil
}
