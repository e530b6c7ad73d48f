package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/semmidev/custos/internal/domain"
)

// Restore applies a stored backup artifact to a target database by
// streaming it from the blob store into the restore tool's stdin.
// Nothing is mutated: a restore touches neither Backup nor
// DatabaseConnection records.
type Restore struct {
	databases  domain.DatabaseStore
	backups    domain.BackupStore
	store      domain.BlobStore
	runner     ToolRunner
	logger     Logger
	runTimeout time.Duration
}

func NewRestore(
	databases domain.DatabaseStore,
	backups domain.BackupStore,
	store domain.BlobStore,
	runner ToolRunner,
	logger Logger,
	runTimeout time.Duration,
) *Restore {
	return &Restore{
		databases:  databases,
		backups:    backups,
		store:      store,
		runner:     runner,
		logger:     logger,
		runTimeout: runTimeout,
	}
}

func (uc *Restore) Execute(ctx context.Context, databaseID, backupID string, target domain.RestoreTarget) error {
	conn, err := uc.databases.FindByID(ctx, databaseID)
	if err != nil {
		return err
	}
	if conn.Engine != domain.EnginePostgreSQL {
		return fmt.Errorf("restore %s: %w", conn.Engine, domain.ErrUnsupportedEngine)
	}

	backup, err := uc.backups.FindByID(ctx, backupID)
	if err != nil {
		return err
	}
	if backup.DatabaseID != databaseID {
		return fmt.Errorf("backup %s does not belong to database %s: %w",
			backupID, databaseID, domain.ErrNotFound)
	}

	if uc.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.runTimeout)
		defer cancel()
	}

	// The store decides whether the object exists; the registry record
	// alone is not trusted.
	stream, err := uc.store.Get(ctx, backup.Bucket, backup.Key)
	if err != nil {
		return err
	}
	defer stream.Close()

	proc, err := uc.runner.StartRestore(ctx, target)
	if err != nil {
		return err
	}

	uc.logger.Infof("[%s] Restoring %s into %s@%s:%d/%s",
		conn.Name, backup.Key, target.Username, target.Host, target.Port, target.DatabaseName)

	_, copyErr := io.Copy(proc.Stdin(), stream)
	closeErr := proc.Stdin().Close()
	waitErr := proc.Wait()

	// A tool failure closes stdin early and surfaces as a copy error
	// too; the exit status is the authoritative report.
	if waitErr != nil {
		return waitErr
	}
	if copyErr != nil {
		return fmt.Errorf("stream %s/%s: %v: %w", backup.Bucket, backup.Key, copyErr, domain.ErrStoreRead)
	}
	if closeErr != nil {
		return fmt.Errorf("close restore input: %w", closeErr)
	}

	uc.logger.Infof("[%s] Restore of %s completed", conn.Name, backup.Key)
	return nil
}
