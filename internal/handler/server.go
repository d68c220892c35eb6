// Package handler implements the HTTP handlers for the event catalog API.
// Handlers are methods on Server, split into resource files (health.go,
// event.go, export.go) that share the same struct and its dependencies.
// Register mounts them on a chi router; routes are listed in openapi.yaml.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/event-catalog/internal/domain"
)

// EventServicer defines the lifecycle operations the event handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type EventServicer interface {
	Create(ctx context.Context, in domain.EventInput) (int64, error)
	Update(ctx context.Context, id int64, up domain.EventUpdate) (domain.Event, error)
	UpdateImage(ctx context.Context, id int64, image []byte) error
	Delete(ctx context.Context, id int64) error
}

// SearchServicer defines the read operations the handlers depend on.
type SearchServicer interface {
	Search(ctx context.Context, c domain.SearchCriteria) ([]domain.Event, error)
	GetByTag(ctx context.Context, name string) ([]domain.Event, error)
	GetByID(ctx context.Context, id int64) (domain.Event, error)
	ListAll(ctx context.Context) ([]domain.Event, error)
	ListAuthoredBy(ctx context.Context, authorID int64) ([]domain.Event, error)
	ListTagsForEvent(ctx context.Context, id int64) ([]domain.Tag, error)
	ListLocations(ctx context.Context) ([]string, error)
	ListClubs(ctx context.Context) ([]string, error)
}

// ExportServicer defines the business operations the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Server holds the dependencies of every API handler.
type Server struct {
	events EventServicer
	search SearchServicer
	export ExportServicer
	log    *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger discards the internal-error log lines.
func NewServer(events EventServicer, search SearchServicer, export ExportServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{events: events, search: search, export: export, log: log}
}

// Register mounts every API route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.GetHealth)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", s.ListEvents)
		r.Post("/", s.CreateEvent)
		r.Get("/locations", s.ListLocations)
		r.Get("/clubs", s.ListClubs)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetEvent)
			r.Put("/", s.UpdateEvent)
			r.Delete("/", s.DeleteEvent)
			r.Put("/image", s.PutEventImage)
			r.Delete("/image", s.DeleteEventImage)
			r.Get("/tags", s.ListEventTags)
		})
	})

	r.Get("/tags/{name}/events", s.ListEventsByTag)
	r.Get("/users/{id}/events", s.ListEventsByAuthor)
	r.Get("/export", s.GetExport)
}
