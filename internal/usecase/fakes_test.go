package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/semmidev/custos/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}

type memDatabases struct {
	mu    sync.Mutex
	conns map[string]*domain.DatabaseConnection
}

func newMemDatabases(conns ...*domain.DatabaseConnection) *memDatabases {
	m := &memDatabases{conns: make(map[string]*domain.DatabaseConnection)}
	for _, c := range conns {
		m.conns[c.ID] = c
	}
	return m
}

func (m *memDatabases) List(ctx context.Context) ([]domain.DatabaseConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.DatabaseConnection
	for _, c := range m.conns {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memDatabases) FindByID(ctx context.Context, id string) (*domain.DatabaseConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conns[id]
	if !ok {
		return nil, fmt.Errorf("database %s: %w", id, domain.ErrNotFound)
	}
	copied := *c
	return &copied, nil
}

func (m *memDatabases) Create(ctx context.Context, conn *domain.DatabaseConnection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[conn.ID] = conn
	return nil
}

func (m *memDatabases) Update(ctx context.Context, conn *domain.DatabaseConnection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conns[conn.ID]; !ok {
		return fmt.Errorf("database %s: %w", conn.ID, domain.ErrNotFound)
	}
	m.conns[conn.ID] = conn
	return nil
}

func (m *memDatabases) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conns[id]; !ok {
		return fmt.Errorf("database %s: %w", id, domain.ErrNotFound)
	}
	delete(m.conns, id)
	return nil
}

func (m *memDatabases) TouchLastBackup(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conns[id]
	if !ok {
		return fmt.Errorf("database %s: %w", id, domain.ErrNotFound)
	}
	c.LastBackupAt = &at
	return nil
}

func (m *memDatabases) lastBackup(id string) *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conns[id].LastBackupAt
}

type memBackups struct {
	mu        sync.Mutex
	backups   map[string]*domain.Backup
	createErr error
}

func newMemBackups() *memBackups {
	return &memBackups{backups: make(map[string]*domain.Backup)}
}

func (m *memBackups) Create(ctx context.Context, b *domain.Backup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.backups[b.ID] = b
	return nil
}

func (m *memBackups) FindByID(ctx context.Context, id string) (*domain.Backup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.backups[id]
	if !ok {
		return nil, fmt.Errorf("backup %s: %w", id, domain.ErrNotFound)
	}
	copied := *b
	return &copied, nil
}

func (m *memBackups) ListByDatabase(ctx context.Context, databaseID string) ([]domain.Backup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Backup
	for _, b := range m.backups {
		if b.DatabaseID == databaseID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memBackups) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.backups)
}

type memBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{objects: make(map[string][]byte)}
}

func (m *memBlobStore) Put(ctx context.Context, bucket, key string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, domain.ErrStoreWrite)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return "", m.putErr
	}
	m.objects[bucket+"/"+key] = data
	return fmt.Sprintf("etag-%d", len(data)), nil
}

func (m *memBlobStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("object %s/%s: %w", bucket, key, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBlobStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[bucket+"/"+key]
	return ok, nil
}

func (m *memBlobStore) object(bucket, key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[bucket+"/"+key]
}

// fakeProcess stands in for a running tool. Its stdout replays a fixed
// payload; stdin collects what the pipeline feeds it.
type fakeProcess struct {
	stdout   io.ReadCloser
	stdin    *closableBuffer
	waitErr  error
	killed   bool
	waitedCh chan struct{}
	waitOnce sync.Once
}

func newFakeProcess(output []byte, waitErr error) *fakeProcess {
	return &fakeProcess{
		stdout:   io.NopCloser(bytes.NewReader(output)),
		stdin:    &closableBuffer{},
		waitErr:  waitErr,
		waitedCh: make(chan struct{}),
	}
}

func (p *fakeProcess) Stdout() io.ReadCloser { return p.stdout }
func (p *fakeProcess) Stdin() io.WriteCloser { return p.stdin }
func (p *fakeProcess) Kill()                 { p.killed = true }

func (p *fakeProcess) Wait() error {
	p.waitOnce.Do(func() { close(p.waitedCh) })
	return p.waitErr
}

// blockingReader holds its reader until the channel closes, then EOFs.
type blockingReader struct {
	ch <-chan struct{}
}

func (r blockingReader) Read(p []byte) (int, error) {
	<-r.ch
	return 0, io.EOF
}

func (r blockingReader) Close() error { return nil }

type closableBuffer struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (b *closableBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *closableBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *closableBuffer) bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Bytes()
}

type fakeRunner struct {
	mu          sync.Mutex
	dumpProc    *fakeProcess
	dumpErr     error
	restoreProc *fakeProcess
	restores    []*fakeProcess
	restoreErr  error
	dumps       int
	makeDump    func() *fakeProcess
}

func (r *fakeRunner) StartDump(ctx context.Context, conn domain.DatabaseConnection) (Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dumps++
	if r.dumpErr != nil {
		return nil, r.dumpErr
	}
	if r.makeDump != nil {
		return r.makeDump(), nil
	}
	return r.dumpProc, nil
}

func (r *fakeRunner) StartRestore(ctx context.Context, target domain.RestoreTarget) (Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.restoreErr != nil {
		return nil, r.restoreErr
	}
	proc := r.restoreProc
	if proc == nil {
		proc = newFakeProcess(nil, nil)
	}
	r.restores = append(r.restores, proc)
	return proc, nil
}

func (r *fakeRunner) dumpCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dumps
}
