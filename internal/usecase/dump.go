package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/semmidev/custos/internal/domain"
)

// keyTimeLayout is millisecond ISO 8601; backupKey then swaps the
// colons and the dot for dashes to keep keys sortable and
// filesystem-safe. The dot matters: Go only renders fractional seconds
// after a "." or "," in the layout.
const keyTimeLayout = "2006-01-02T15:04:05.000Z"

var keyStampReplacer = strings.NewReplacer(":", "-", ".", "-")

// Dump produces one stored backup artifact for one database: it streams
// the dump tool's stdout into the blob store and records the result.
type Dump struct {
	databases  domain.DatabaseStore
	backups    domain.BackupStore
	store      domain.BlobStore
	runner     ToolRunner
	guard      *Guard
	notifier   Notifier
	logger     Logger
	bucket     string
	runTimeout time.Duration
	now        func() time.Time
}

func NewDump(
	databases domain.DatabaseStore,
	backups domain.BackupStore,
	store domain.BlobStore,
	runner ToolRunner,
	guard *Guard,
	notifier Notifier,
	logger Logger,
	bucket string,
	runTimeout time.Duration,
) *Dump {
	return &Dump{
		databases:  databases,
		backups:    backups,
		store:      store,
		runner:     runner,
		guard:      guard,
		notifier:   notifier,
		logger:     logger,
		bucket:     bucket,
		runTimeout: runTimeout,
		now:        time.Now,
	}
}

// DumpOptions control one run. Force bypasses the interval policy; the
// on-demand API trigger sets it, the scheduler does not.
type DumpOptions struct {
	Force bool
}

func (uc *Dump) Execute(ctx context.Context, databaseID string, opts DumpOptions) (*domain.Backup, error) {
	conn, err := uc.databases.FindByID(ctx, databaseID)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		due, err := domain.IsDue(conn.LastBackupAt, conn.Interval, uc.now())
		if err != nil {
			return nil, err
		}
		if !due {
			return nil, fmt.Errorf("database %s: %w", conn.ID, domain.ErrNotDue)
		}
	}

	if !uc.guard.TryAcquire(conn.ID) {
		return nil, fmt.Errorf("database %s: %w", conn.ID, domain.ErrAlreadyInProgress)
	}
	defer uc.guard.Release(conn.ID)

	backup, err := uc.run(ctx, conn)
	if err != nil {
		uc.logger.Errorf("[%s] Backup failed: %v", conn.Name, err)
		uc.notify(fmt.Sprintf("Backup failed for %s: %v", conn.Name, err))
		return nil, err
	}

	uc.logger.Infof("[%s] Backup stored: %s (etag %s)", conn.Name, backup.Key, backup.ETag)
	uc.notify(fmt.Sprintf("Backup created for %s: %s", conn.Name, backup.Key))
	return backup, nil
}

func (uc *Dump) run(ctx context.Context, conn *domain.DatabaseConnection) (*domain.Backup, error) {
	if uc.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.runTimeout)
		defer cancel()
	}

	proc, err := uc.runner.StartDump(ctx, *conn)
	if err != nil {
		return nil, err
	}

	startedAt := uc.now().UTC()
	key := backupKey(conn.ID, startedAt)

	uc.logger.Infof("[%s] Streaming dump to %s/%s", conn.Name, uc.bucket, key)

	// The upload consumes stdout at the store's pace; EOF arrives when
	// the tool exits, so the process is reaped right after.
	etag, putErr := uc.store.Put(ctx, uc.bucket, key, proc.Stdout())
	if putErr != nil {
		proc.Kill()
	}
	waitErr := proc.Wait()

	// A tool that exited nonzero closed its own stdout, so the upload
	// saw a clean EOF; the exit status decides, not the partial object.
	if putErr == nil && waitErr != nil {
		return nil, waitErr
	}
	if putErr != nil {
		return nil, putErr
	}

	backup := &domain.Backup{
		ID:         uuid.NewString(),
		DatabaseID: conn.ID,
		Key:        key,
		Bucket:     uc.bucket,
		ETag:       etag,
		CreatedAt:  startedAt,
	}

	if err := uc.backups.Create(ctx, backup); err != nil {
		return nil, fmt.Errorf("record backup %s: %v: %w", key, err, domain.ErrRegistration)
	}
	if err := uc.databases.TouchLastBackup(ctx, conn.ID, backup.CreatedAt); err != nil {
		return nil, fmt.Errorf("touch last backup for %s: %v: %w", conn.ID, err, domain.ErrRegistration)
	}

	return backup, nil
}

func (uc *Dump) notify(message string) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Notify(message); err != nil {
		uc.logger.Warnf("Notification failed: %v", err)
	}
}

func backupKey(databaseID string, t time.Time) string {
	return databaseID + "/" + keyStampReplacer.Replace(t.UTC().Format(keyTimeLayout))
}
