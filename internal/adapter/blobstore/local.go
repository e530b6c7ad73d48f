package blobstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/semmidev/custos/internal/domain"
)

// LocalStore implements domain.BlobStore on the filesystem. Meant for
// development and tests; the etag is the MD5 of the written bytes, which
// matches what S3 returns for single-part uploads.
type LocalStore struct {
	basePath string
}

func NewLocal(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

func (l *LocalStore) EnsureBucket(ctx context.Context, bucket string) error {
	if err := os.MkdirAll(filepath.Join(l.basePath, bucket), 0755); err != nil {
		return fmt.Errorf("failed to create bucket directory: %w", err)
	}
	return nil
}

func (l *LocalStore) Put(ctx context.Context, bucket, key string, body io.Reader) (string, error) {
	path := l.objectPath(bucket, key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("%v: %w", err, domain.ErrStoreWrite)
	}

	dest, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, domain.ErrStoreWrite)
	}
	defer dest.Close()

	hash := md5.New()
	if _, err := io.Copy(io.MultiWriter(dest, hash), body); err != nil {
		return "", fmt.Errorf("%v: %w", err, domain.ErrStoreWrite)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

func (l *LocalStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	file, err := os.Open(l.objectPath(bucket, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("object %s/%s: %w", bucket, key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%v: %w", err, domain.ErrStoreRead)
	}
	return file, nil
}

func (l *LocalStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := os.Stat(l.objectPath(bucket, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%v: %w", err, domain.ErrStoreRead)
	}
	return true, nil
}

func (l *LocalStore) objectPath(bucket, key string) string {
	return filepath.Join(l.basePath, bucket, filepath.FromSlash(key))
}
