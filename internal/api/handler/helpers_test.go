package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/semmidev/custos/internal/domain"
	"github.com/semmidev/custos/internal/usecase"
)

func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParams injects chi URL parameters into the request context so
// handlers can be exercised without a full router.
func withChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withChiURLParam(r *http.Request, key, value string) *http.Request {
	return withChiURLParams(r, map[string]string{key: value})
}

func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// fakeDatabaseStore implements domain.DatabaseStore over a map.
type fakeDatabaseStore struct {
	conns     map[string]*domain.DatabaseConnection
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	deleted   []string
}

func newFakeDatabaseStore(conns ...*domain.DatabaseConnection) *fakeDatabaseStore {
	s := &fakeDatabaseStore{conns: make(map[string]*domain.DatabaseConnection)}
	for _, c := range conns {
		s.conns[c.ID] = c
	}
	return s
}

func (s *fakeDatabaseStore) List(ctx context.Context) ([]domain.DatabaseConnection, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.DatabaseConnection, 0, len(s.conns))
	for _, c := range s.conns {
		out = append(out, *c)
	}
	return out, nil
}

func (s *fakeDatabaseStore) FindByID(ctx context.Context, id string) (*domain.DatabaseConnection, error) {
	c, ok := s.conns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *fakeDatabaseStore) Create(ctx context.Context, conn *domain.DatabaseConnection) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.conns[conn.ID] = conn
	return nil
}

func (s *fakeDatabaseStore) Update(ctx context.Context, conn *domain.DatabaseConnection) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.conns[conn.ID]; !ok {
		return domain.ErrNotFound
	}
	s.conns[conn.ID] = conn
	return nil
}

func (s *fakeDatabaseStore) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.conns, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeDatabaseStore) TouchLastBackup(ctx context.Context, id string, at time.Time) error {
	c, ok := s.conns[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.LastBackupAt = &at
	return nil
}

// fakeCatalog implements Catalog with canned responses.
type fakeCatalog struct {
	backups  []domain.Backup
	listErr  error
	download *domain.Backup
	content  string
	openErr  error
}

func (c *fakeCatalog) ListByDatabase(ctx context.Context, databaseID string) ([]domain.Backup, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.backups, nil
}

func (c *fakeCatalog) OpenDownload(ctx context.Context, backupID string) (*domain.Backup, io.ReadCloser, error) {
	if c.openErr != nil {
		return nil, nil, c.openErr
	}
	return c.download, io.NopCloser(bytes.NewBufferString(c.content)), nil
}

type fakeDump struct {
	backup *domain.Backup
	err    error
	calls  []string
	opts   usecase.DumpOptions
}

func (d *fakeDump) Execute(ctx context.Context, databaseID string, opts usecase.DumpOptions) (*domain.Backup, error) {
	d.calls = append(d.calls, databaseID)
	d.opts = opts
	if d.err != nil {
		return nil, d.err
	}
	return d.backup, nil
}

type fakeRestore struct {
	err     error
	targets []domain.RestoreTarget
}

func (r *fakeRestore) Execute(ctx context.Context, databaseID, backupID string, target domain.RestoreTarget) error {
	r.targets = append(r.targets, target)
	return r.err
}
