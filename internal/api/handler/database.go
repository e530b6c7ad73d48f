package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/semmidev/custos/internal/api/request"
	"github.com/semmidev/custos/internal/api/response"
	"github.com/semmidev/custos/internal/domain"
)

// Database handles the connection-record CRUD. Passwords are accepted on
// write and never echoed back.
type Database struct {
	store domain.DatabaseStore
}

func NewDatabase(store domain.DatabaseStore) *Database {
	return &Database{store: store}
}

type databaseView struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	Host           string     `json:"host"`
	Port           int        `json:"port"`
	Username       string     `json:"username"`
	DatabaseName   string     `json:"databaseName"`
	BackupInterval string     `json:"backupInterval"`
	LastBackupAt   *time.Time `json:"lastBackup"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func viewOf(conn *domain.DatabaseConnection) databaseView {
	return databaseView{
		ID:             conn.ID,
		Name:           conn.Name,
		Type:           string(conn.Engine),
		Host:           conn.Host,
		Port:           conn.Port,
		Username:       conn.Username,
		DatabaseName:   conn.DatabaseName,
		BackupInterval: string(conn.Interval),
		LastBackupAt:   conn.LastBackupAt,
		CreatedAt:      conn.CreatedAt,
		UpdatedAt:      conn.UpdatedAt,
	}
}

func (h *Database) List(w http.ResponseWriter, r *http.Request) {
	conns, err := h.store.List(r.Context())
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	views := make([]databaseView, 0, len(conns))
	for i := range conns {
		views = append(views, viewOf(&conns[i]))
	}
	response.WriteJSON(w, http.StatusOK, views)
}

func (h *Database) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, viewOf(conn))
}

func (h *Database) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateDatabase
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	conn := &domain.DatabaseConnection{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Engine:       domain.Engine(req.Type),
		Host:         req.Host,
		Port:         req.Port,
		Username:     req.Username,
		Password:     req.Password,
		DatabaseName: req.DatabaseName,
		Interval:     domain.Interval(req.BackupInterval),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.Create(r.Context(), conn); err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, viewOf(conn))
}

func (h *Database) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateDatabase
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	applyUpdate(conn, &req)
	conn.UpdatedAt = time.Now().UTC()

	if err := h.store.Update(r.Context(), conn); err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, viewOf(conn))
}

func (h *Database) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "database deleted"})
}

func applyUpdate(conn *domain.DatabaseConnection, req *request.UpdateDatabase) {
	if req.Name != nil {
		conn.Name = *req.Name
	}
	if req.Type != nil {
		conn.Engine = domain.Engine(*req.Type)
	}
	if req.Host != nil {
		conn.Host = *req.Host
	}
	if req.Port != nil {
		conn.Port = *req.Port
	}
	if req.Username != nil {
		conn.Username = *req.Username
	}
	if req.Password != nil {
		conn.Password = *req.Password
	}
	if req.DatabaseName != nil {
		conn.DatabaseName = *req.DatabaseName
	}
	if req.BackupInterval != nil {
		conn.Interval = domain.Interval(*req.BackupInterval)
	}
}
