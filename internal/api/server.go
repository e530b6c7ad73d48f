package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/semmidev/custos/internal/api/handler"
	"github.com/semmidev/custos/internal/domain"
	"github.com/semmidev/custos/internal/usecase"
)

// Server is the HTTP surface: database CRUD plus backup list, trigger,
// restore and download.
type Server struct {
	router chi.Router
	logger usecase.Logger
}

func NewServer(
	logger usecase.Logger,
	databases domain.DatabaseStore,
	catalog handler.Catalog,
	dump handler.DumpTrigger,
	restore handler.RestoreTrigger,
) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: logger,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	db := handler.NewDatabase(databases)
	s.router.Route("/databases", func(r chi.Router) {
		r.Get("/", db.List)
		r.Post("/", db.Create)
		r.Get("/{id}", db.Get)
		r.Put("/{id}", db.Update)
		r.Delete("/{id}", db.Delete)
	})

	backup := handler.NewBackup(catalog, dump, restore)
	s.router.Route("/backups", func(r chi.Router) {
		r.Get("/download/{backupID}", backup.Download)
		r.Get("/{databaseID}", backup.List)
		r.Post("/{databaseID}", backup.Trigger)
		r.Post("/{databaseID}/{backupID}/restore/postgres", backup.RestorePostgres)
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Infof("%s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}
