package domain

import (
	"context"
	"io"
	"time"
)

// BlobStore uploads and downloads backup artifacts by bucket and key.
// Put consumes the entire stream at the rate the store accepts it and
// returns the store's content digest. Implementations are stateless and
// safe for concurrent use.
type BlobStore interface {
	Put(ctx context.Context, bucket, key string, body io.Reader) (etag string, err error)
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// DatabaseStore persists DatabaseConnection records. TouchLastBackup is
// the only write the backup core performs.
type DatabaseStore interface {
	List(ctx context.Context) ([]DatabaseConnection, error)
	FindByID(ctx context.Context, id string) (*DatabaseConnection, error)
	Create(ctx context.Context, conn *DatabaseConnection) error
	Update(ctx context.Context, conn *DatabaseConnection) error
	Delete(ctx context.Context, id string) error
	TouchLastBackup(ctx context.Context, id string, at time.Time) error
}

// BackupStore persists Backup records.
type BackupStore interface {
	Create(ctx context.Context, b *Backup) error
	FindByID(ctx context.Context, id string) (*Backup, error)
	ListByDatabase(ctx context.Context, databaseID string) ([]Backup, error)
}
