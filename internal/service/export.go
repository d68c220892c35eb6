package service

import (
	"context"
	"fmt"

	"github.com/pkordes/event-catalog/internal/domain"
	"github.com/pkordes/event-catalog/internal/repo"
)

// ExportService assembles a flat export of every event with its tags.
type ExportService struct {
	store repo.Store
}

// NewExportService constructs an ExportService backed by the provided store.
func NewExportService(store repo.Store) *ExportService {
	return &ExportService{store: store}
}

// Export returns one ExportRow per event ordered by event id.
// An empty catalog yields an empty, non-nil slice.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	events, err := s.store.Repos().Events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, domain.NewExportRow(e))
	}
	return rows, nil
}
