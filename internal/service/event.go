// Package service contains the business logic for the event catalog.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkordes/event-catalog/internal/cache"
	"github.com/pkordes/event-catalog/internal/domain"
	"github.com/pkordes/event-catalog/internal/metrics"
	"github.com/pkordes/event-catalog/internal/repo"
)

// ImageValidator decides whether an image payload can be accepted.
type ImageValidator interface {
	IsDecodable(b []byte) bool
	// Format names the detected image format, for logging.
	Format(b []byte) string
}

// EventService implements the event lifecycle: create, update, image
// replacement and delete. Each write runs in one transaction.
type EventService struct {
	store   repo.Store
	images  ImageValidator
	facets  cache.Facets
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewEventService constructs an EventService. facets, m and log may be nil.
func NewEventService(store repo.Store, images ImageValidator, facets cache.Facets, m *metrics.Metrics, log *slog.Logger) *EventService {
	return &EventService{store: store, images: images, facets: facets, metrics: m, log: orDiscard(log)}
}

// Create validates in and persists it with its tags. Checks run in a fixed
// order and the first failure is returned: title, location, schedule, author
// (domain.ErrNotFound), publication flag, image (domain.ErrBadFormat).
// Unknown tag names are dropped.
func (s *EventService) Create(ctx context.Context, in domain.EventInput) (id int64, err error) {
	defer func() { s.metrics.ObserveWrite("create", err) }()

	v, err := domain.ValidateEventInput(in)
	if err != nil {
		return 0, err
	}

	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		exists, err := r.Users.Exists(ctx, v.AuthorID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.NewFieldError("author_id", domain.ErrNotFound)
		}

		if v.IsPublished, err = domain.ValidatePublished(in.IsPublished); err != nil {
			return err
		}
		if err := s.checkImage(v.Image); err != nil {
			return err
		}

		id, err = r.Events.Insert(ctx, v.Event())
		if err != nil {
			return err
		}

		tagIDs, err := ResolveTags(ctx, r.Tags, in.Tags)
		if err != nil {
			return err
		}
		return r.Events.ReplaceTags(ctx, id, tagIDs)
	})
	if err != nil {
		return 0, fmt.Errorf("service.EventService.Create: %w", err)
	}

	s.log.InfoContext(ctx, "event created", "event_id", id, "author_id", v.AuthorID)
	s.invalidateFacets(ctx)
	return id, nil
}

// Update applies up to an existing event and returns the stored result.
//
// Title and location are validated as in Create. Description, extended
// description, club and the tag set are always replaced. Image and
// IsPublished are applied when supplied. The schedule is applied only when
// both bounds are supplied and valid; otherwise the stored schedule is kept
// and no error is returned.
//
// Returns domain.ErrNotFound if the event does not exist.
func (s *EventService) Update(ctx context.Context, id int64, up domain.EventUpdate) (result domain.Event, err error) {
	defer func() { s.metrics.ObserveWrite("update", err) }()

	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		e, err := r.Events.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := domain.ValidateTitle(up.Title); err != nil {
			return err
		}
		if err := domain.ValidateLocation(up.Location); err != nil {
			return err
		}

		e.Title = up.Title
		e.Location = up.Location
		e.Description = up.Description
		e.ExtendedDescription = up.ExtendedDescription
		e.Club = up.Club

		if up.Image != nil {
			if err := s.checkImage(up.Image); err != nil {
				return err
			}
			e.Image = up.Image
		}
		if up.IsPublished != nil {
			e.IsPublished = *up.IsPublished
		}
		if up.StartTime != "" && up.EndTime != "" {
			start, end, err := domain.ValidateSchedule(up.StartTime, up.EndTime)
			if err == nil {
				e.StartTime, e.EndTime = start, end
			} else {
				s.log.DebugContext(ctx, "schedule left unchanged", "event_id", id, "reason", err.Error())
			}
		}

		if err := r.Events.Update(ctx, e); err != nil {
			return err
		}

		tagIDs, err := ResolveTags(ctx, r.Tags, up.Tags)
		if err != nil {
			return err
		}
		if err := r.Events.ReplaceTags(ctx, id, tagIDs); err != nil {
			return err
		}

		result, err = r.Events.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Update: %w", err)
	}

	s.log.InfoContext(ctx, "event updated", "event_id", id)
	s.invalidateFacets(ctx)
	return result, nil
}

// UpdateImage replaces the image of an event. A nil image clears it; a
// non-nil one must be decodable. The event's existence is checked first, so
// an unknown id is domain.ErrNotFound whatever the payload.
func (s *EventService) UpdateImage(ctx context.Context, id int64, image []byte) (err error) {
	defer func() { s.metrics.ObserveWrite("update_image", err) }()

	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := r.Events.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.checkImage(image); err != nil {
			return err
		}
		return r.Events.SetImage(ctx, id, image)
	})
	if err != nil {
		return fmt.Errorf("service.EventService.UpdateImage: %w", err)
	}

	if image == nil {
		s.log.InfoContext(ctx, "event image cleared", "event_id", id)
	} else {
		s.log.InfoContext(ctx, "event image updated", "event_id", id, "format", s.images.Format(image), "bytes", len(image))
	}
	return nil
}

// Delete removes an event and its tag links.
// Returns domain.ErrNotFound if the event does not exist.
func (s *EventService) Delete(ctx context.Context, id int64) (err error) {
	defer func() { s.metrics.ObserveWrite("delete", err) }()

	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		return r.Events.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("service.EventService.Delete: %w", err)
	}

	s.log.InfoContext(ctx, "event deleted", "event_id", id)
	s.invalidateFacets(ctx)
	return nil
}

// checkImage accepts a nil image and rejects undecodable payloads.
func (s *EventService) checkImage(b []byte) error {
	if b == nil {
		return nil
	}
	if !s.images.IsDecodable(b) {
		return domain.NewFieldError("image", domain.ErrBadFormat)
	}
	return nil
}

// invalidateFacets hides the cached facet lists. Failures are logged only:
// the write has already committed and the entries expire on their own.
func (s *EventService) invalidateFacets(ctx context.Context) {
	if s.facets == nil {
		return
	}
	if err := s.facets.Invalidate(ctx); err != nil {
		s.log.WarnContext(ctx, "facet cache invalidation failed", "error", err)
	}
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return log
}
