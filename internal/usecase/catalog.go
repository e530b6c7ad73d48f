package usecase

import (
	"context"
	"io"

	"github.com/semmidev/custos/internal/domain"
)

// Catalog answers read-only questions about recorded backups.
type Catalog struct {
	databases domain.DatabaseStore
	backups   domain.BackupStore
	store     domain.BlobStore
}

func NewCatalog(databases domain.DatabaseStore, backups domain.BackupStore, store domain.BlobStore) *Catalog {
	return &Catalog{databases: databases, backups: backups, store: store}
}

// ListByDatabase returns the database's backups ordered by creation
// time. The database must exist.
func (uc *Catalog) ListByDatabase(ctx context.Context, databaseID string) ([]domain.Backup, error) {
	if _, err := uc.databases.FindByID(ctx, databaseID); err != nil {
		return nil, err
	}
	return uc.backups.ListByDatabase(ctx, databaseID)
}

// OpenDownload returns the backup record and its artifact stream. The
// caller owns closing the stream.
func (uc *Catalog) OpenDownload(ctx context.Context, backupID string) (*domain.Backup, io.ReadCloser, error) {
	backup, err := uc.backups.FindByID(ctx, backupID)
	if err != nil {
		return nil, nil, err
	}

	stream, err := uc.store.Get(ctx, backup.Bucket, backup.Key)
	if err != nil {
		return nil, nil, err
	}
	return backup, stream, nil
}
