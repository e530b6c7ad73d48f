package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	appconfig "github.com/semmidev/custos/internal/config"
	"github.com/semmidev/custos/internal/domain"
)

// GDriveStore implements domain.BlobStore on Google Drive. Drive has no
// buckets, so objects live in a single configured folder under the flat
// name "bucket/key"; the MD5 checksum stands in for the etag.
type GDriveStore struct {
	service  *drive.Service
	folderID string
}

func NewGDrive(ctx context.Context, cfg *appconfig.GDriveConfig) (*GDriveStore, error) {
	service, err := drive.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &GDriveStore{
		service:  service,
		folderID: cfg.FolderID,
	}, nil
}

// EnsureBucket is a no-op: the folder is provisioned out of band.
func (g *GDriveStore) EnsureBucket(ctx context.Context, bucket string) error {
	return nil
}

func (g *GDriveStore) Put(ctx context.Context, bucket, key string, body io.Reader) (string, error) {
	meta := &drive.File{
		Name:    objectName(bucket, key),
		Parents: []string{g.folderID},
	}

	file, err := g.service.Files.Create(meta).
		Media(body).
		Fields("id", "md5Checksum").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload to gdrive: %v: %w", err, domain.ErrStoreWrite)
	}

	return file.Md5Checksum, nil
}

func (g *GDriveStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	id, err := g.findID(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	resp, err := g.service.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download from gdrive: %v: %w", err, domain.ErrStoreRead)
	}
	return resp.Body, nil
}

func (g *GDriveStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := g.findID(ctx, bucket, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (g *GDriveStore) findID(ctx context.Context, bucket, key string) (string, error) {
	query := fmt.Sprintf("'%s' in parents and name='%s' and trashed=false",
		g.folderID, objectName(bucket, key))

	list, err := g.service.Files.List().
		Q(query).
		Fields("files(id)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("list gdrive files: %v: %w", err, domain.ErrStoreRead)
	}

	if len(list.Files) == 0 {
		return "", fmt.Errorf("object %s/%s: %w", bucket, key, domain.ErrNotFound)
	}
	return list.Files[0].Id, nil
}

func objectName(bucket, key string) string {
	return bucket + "/" + key
}
