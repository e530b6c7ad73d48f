package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/semmidev/custos/internal/api/request"
	"github.com/semmidev/custos/internal/api/response"
	"github.com/semmidev/custos/internal/domain"
	"github.com/semmidev/custos/internal/usecase"
)

type Catalog interface {
	ListByDatabase(ctx context.Context, databaseID string) ([]domain.Backup, error)
	OpenDownload(ctx context.Context, backupID string) (*domain.Backup, io.ReadCloser, error)
}

type DumpTrigger interface {
	Execute(ctx context.Context, databaseID string, opts usecase.DumpOptions) (*domain.Backup, error)
}

type RestoreTrigger interface {
	Execute(ctx context.Context, databaseID, backupID string, target domain.RestoreTarget) error
}

// Backup handles listing, on-demand dumps, restores and downloads.
type Backup struct {
	catalog Catalog
	dump    DumpTrigger
	restore RestoreTrigger
}

func NewBackup(catalog Catalog, dump DumpTrigger, restore RestoreTrigger) *Backup {
	return &Backup{catalog: catalog, dump: dump, restore: restore}
}

type backupView struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	ETag      string    `json:"etag"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Backup) List(w http.ResponseWriter, r *http.Request) {
	databaseID, err := request.RequireID(chi.URLParam(r, "databaseID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	backups, err := h.catalog.ListByDatabase(r.Context(), databaseID)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	views := make([]backupView, 0, len(backups))
	for _, b := range backups {
		views = append(views, backupView{ID: b.ID, Key: b.Key, ETag: b.ETag, CreatedAt: b.CreatedAt})
	}
	response.WriteJSON(w, http.StatusOK, views)
}

// Trigger starts an on-demand dump, bypassing the interval policy.
func (h *Backup) Trigger(w http.ResponseWriter, r *http.Request) {
	databaseID, err := request.RequireID(chi.URLParam(r, "databaseID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	backup, err := h.dump.Execute(r.Context(), databaseID, usecase.DumpOptions{Force: true})
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, backupView{
		ID:        backup.ID,
		Key:       backup.Key,
		ETag:      backup.ETag,
		CreatedAt: backup.CreatedAt,
	})
}

func (h *Backup) RestorePostgres(w http.ResponseWriter, r *http.Request) {
	databaseID, err := request.RequireID(chi.URLParam(r, "databaseID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	backupID, err := request.RequireID(chi.URLParam(r, "backupID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.RestorePostgres
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	target := domain.RestoreTarget{
		Host:         req.NewDbHost,
		Port:         req.NewDbPort,
		Username:     req.NewDbUserName,
		Password:     req.NewDbPassword,
		DatabaseName: req.NewDbName,
	}

	if err := h.restore.Execute(r.Context(), databaseID, backupID, target); err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "database restored successfully"})
}

func (h *Backup) Download(w http.ResponseWriter, r *http.Request) {
	backupID, err := request.RequireID(chi.URLParam(r, "backupID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	backup, stream, err := h.catalog.OpenDownload(r.Context(), backupID)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="backup-%s.backup"`, backup.ID))
	w.Header().Set("Content-Type", "application/octet-stream")
	io.Copy(w, stream)
}
