package repo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/event-catalog/internal/domain"
	"github.com/pkordes/event-catalog/internal/query"
)

// EventRepo defines the persistence operations for Events and the event_tags
// join table. Every read returns events with their Tags populated.
type EventRepo interface {
	// GetByID retrieves a single event by primary key.
	// Returns domain.ErrNotFound if no event with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Event, error)

	// Find returns the events matching every predicate in where, ordered by
	// the ORDER BY terms in orderBy. An empty where matches all events.
	Find(ctx context.Context, where query.Conjunction, orderBy []string) ([]domain.Event, error)

	// List returns all events ordered by id.
	List(ctx context.Context) ([]domain.Event, error)

	// ListByAuthor returns the events written by authorID, ordered by id.
	ListByAuthor(ctx context.Context, authorID int64) ([]domain.Event, error)

	// ListByTag returns the events linked to tagID in storage order.
	ListByTag(ctx context.Context, tagID int64) ([]domain.Event, error)

	// Insert stores a new event and returns its storage-assigned id.
	// Tags and LikeCount on e are ignored.
	Insert(ctx context.Context, e domain.Event) (int64, error)

	// Update overwrites the mutable columns of an existing event.
	// Returns domain.ErrNotFound if no event with that ID exists.
	Update(ctx context.Context, e domain.Event) error

	// SetImage replaces the image of an event. A nil image clears it.
	// Returns domain.ErrNotFound if no event with that ID exists.
	SetImage(ctx context.Context, id int64, image []byte) error

	// Delete removes an event; its tag links go with it via ON DELETE CASCADE.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// ReplaceTags makes tagIDs the complete tag set of an event.
	ReplaceTags(ctx context.Context, eventID int64, tagIDs []int64) error

	// DistinctLocations returns every non-empty location once, sorted
	// case-insensitively.
	DistinctLocations(ctx context.Context) ([]string, error)

	// DistinctClubs is DistinctLocations for the club column.
	DistinctClubs(ctx context.Context) ([]string, error)

	// TagsForEvents returns the tags of each event in eventIDs, keyed by event
	// id and ordered by tag name. Events without tags are absent from the map.
	TagsForEvents(ctx context.Context, eventIDs []int64) (map[int64][]domain.Tag, error)
}

// eventColumns is the select list shared by every event read, in scanEvent order.
var eventColumns = []string{
	"e.id", "e.title", "e.description", "e.extended_description", "e.location",
	"e.start_time", "e.end_time", "e.author_id", "e.is_published", "e.club",
	"e.like_count", "e.image", "e.created_at", "e.updated_at",
}

// pgEventRepo is the Postgres implementation of EventRepo.
type pgEventRepo struct {
	db db
}

// NewEventRepo constructs an EventRepo backed by the provided db connection.
func NewEventRepo(db db) EventRepo {
	return &pgEventRepo{db: db}
}

func selectEvents() sq.SelectBuilder {
	return psql.Select(eventColumns...).From("events e")
}

// GetByID retrieves an event by primary key.
func (r *pgEventRepo) GetByID(ctx context.Context, id int64) (domain.Event, error) {
	q, args, err := selectEvents().Where(sq.Eq{"e.id": id}).ToSql()
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.GetByID: build: %w", err)
	}

	e, err := scanEvent(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.GetByID: %w", err)
	}

	events, err := r.withTags(ctx, []domain.Event{e})
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.GetByID: %w", err)
	}
	return events[0], nil
}

// Find runs the conjunction of where against the events table.
func (r *pgEventRepo) Find(ctx context.Context, where query.Conjunction, orderBy []string) ([]domain.Event, error) {
	b := selectEvents()
	if !where.Empty() {
		b = b.Where(where)
	}
	b = b.OrderBy(orderBy...)

	events, err := r.queryEvents(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.Find: %w", err)
	}
	return events, nil
}

// List returns all events ordered by id.
func (r *pgEventRepo) List(ctx context.Context) ([]domain.Event, error) {
	events, err := r.queryEvents(ctx, selectEvents().OrderBy("e.id ASC"))
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.List: %w", err)
	}
	return events, nil
}

// ListByAuthor returns one author's events ordered by id.
func (r *pgEventRepo) ListByAuthor(ctx context.Context, authorID int64) ([]domain.Event, error) {
	b := selectEvents().Where(sq.Eq{"e.author_id": authorID}).OrderBy("e.id ASC")

	events, err := r.queryEvents(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.ListByAuthor: %w", err)
	}
	return events, nil
}

// ListByTag returns the events linked to a tag. No ORDER BY is applied.
func (r *pgEventRepo) ListByTag(ctx context.Context, tagID int64) ([]domain.Event, error) {
	b := selectEvents().
		Join("event_tags et ON et.event_id = e.id").
		Where(sq.Eq{"et.tag_id": tagID})

	events, err := r.queryEvents(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.ListByTag: %w", err)
	}
	return events, nil
}

// Insert stores a new event row and returns its id.
func (r *pgEventRepo) Insert(ctx context.Context, e domain.Event) (int64, error) {
	q, args, err := psql.Insert("events").
		Columns("title", "description", "extended_description", "location",
			"start_time", "end_time", "author_id", "is_published", "club", "image").
		Values(e.Title, e.Description, e.ExtendedDescription, e.Location,
			e.StartTime, e.EndTime, e.AuthorID, e.IsPublished, e.Club, e.Image).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("repo.EventRepo.Insert: build: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, q, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("repo.EventRepo.Insert: %w", err)
	}
	return id, nil
}

// Update overwrites every mutable column of an event and bumps updated_at.
// like_count is owned by the interest collaborator and is never written here.
func (r *pgEventRepo) Update(ctx context.Context, e domain.Event) error {
	q, args, err := psql.Update("events").
		Set("title", e.Title).
		Set("description", e.Description).
		Set("extended_description", e.ExtendedDescription).
		Set("location", e.Location).
		Set("start_time", e.StartTime).
		Set("end_time", e.EndTime).
		Set("is_published", e.IsPublished).
		Set("club", e.Club).
		Set("image", e.Image).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("repo.EventRepo.Update: build: %w", err)
	}

	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("repo.EventRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.EventRepo.Update: %w", domain.ErrNotFound)
	}
	return nil
}

// SetImage replaces or clears the image column.
func (r *pgEventRepo) SetImage(ctx context.Context, id int64, image []byte) error {
	const q = `UPDATE events SET image = $1, updated_at = now() WHERE id = $2`

	tag, err := r.db.Exec(ctx, q, image, id)
	if err != nil {
		return fmt.Errorf("repo.EventRepo.SetImage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.EventRepo.SetImage: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes an event by primary key.
func (r *pgEventRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM events WHERE id = $1`

	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("repo.EventRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.EventRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// ReplaceTags deletes every link of the event, then inserts one per tag id.
// Call it inside a transaction so readers never see the empty middle state.
func (r *pgEventRepo) ReplaceTags(ctx context.Context, eventID int64, tagIDs []int64) error {
	const del = `DELETE FROM event_tags WHERE event_id = $1`

	if _, err := r.db.Exec(ctx, del, eventID); err != nil {
		return fmt.Errorf("repo.EventRepo.ReplaceTags: delete: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	ins := psql.Insert("event_tags").Columns("event_id", "tag_id")
	for _, tagID := range tagIDs {
		ins = ins.Values(eventID, tagID)
	}
	q, args, err := ins.Suffix("ON CONFLICT (event_id, tag_id) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("repo.EventRepo.ReplaceTags: build: %w", err)
	}

	if _, err := r.db.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("repo.EventRepo.ReplaceTags: insert: %w", err)
	}
	return nil
}

// DistinctLocations lists the non-empty locations.
func (r *pgEventRepo) DistinctLocations(ctx context.Context) ([]string, error) {
	// SELECT DISTINCT cannot ORDER BY an expression outside its select list,
	// hence the subquery.
	const q = `
		SELECT location
		FROM (SELECT DISTINCT location FROM events WHERE location <> '') l
		ORDER BY lower(location), location`

	values, err := r.queryStrings(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.DistinctLocations: %w", err)
	}
	return values, nil
}

// DistinctClubs lists the non-empty clubs.
func (r *pgEventRepo) DistinctClubs(ctx context.Context) ([]string, error) {
	const q = `
		SELECT club
		FROM (SELECT DISTINCT club FROM events WHERE club <> '') c
		ORDER BY lower(club), club`

	values, err := r.queryStrings(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.DistinctClubs: %w", err)
	}
	return values, nil
}

// TagsForEvents loads the tags of many events in one round trip.
func (r *pgEventRepo) TagsForEvents(ctx context.Context, eventIDs []int64) (map[int64][]domain.Tag, error) {
	const q = `
		SELECT et.event_id, t.id, t.name
		FROM event_tags et
		JOIN tags t ON t.id = et.tag_id
		WHERE et.event_id = ANY($1)
		ORDER BY et.event_id, t.name`

	out := make(map[int64][]domain.Tag)
	if len(eventIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, q, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.TagsForEvents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			eventID int64
			t       domain.Tag
		)
		if err := rows.Scan(&eventID, &t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("repo.EventRepo.TagsForEvents: scan: %w", err)
		}
		out[eventID] = append(out[eventID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.EventRepo.TagsForEvents: rows: %w", err)
	}
	return out, nil
}

// queryEvents runs a select built from selectEvents and attaches tags.
func (r *pgEventRepo) queryEvents(ctx context.Context, b sq.SelectBuilder) ([]domain.Event, error) {
	q, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	rows.Close()

	return r.withTags(ctx, events)
}

// withTags fills in the Tags field of each event. Events with no links get an
// empty, non-nil slice so they encode as [] rather than null.
func (r *pgEventRepo) withTags(ctx context.Context, events []domain.Event) ([]domain.Event, error) {
	if len(events) == 0 {
		return events, nil
	}

	ids := make([]int64, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}

	tags, err := r.TagsForEvents(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Tags = tags[events[i].ID]
		if events[i].Tags == nil {
			events[i].Tags = []domain.Tag{}
		}
	}
	return events, nil
}

func (r *pgEventRepo) queryStrings(ctx context.Context, q string) ([]string, error) {
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return values, nil
}

// scanEvent maps a single row selected with eventColumns into a domain.Event.
func scanEvent(s scanner) (domain.Event, error) {
	var e domain.Event
	err := s.Scan(
		&e.ID, &e.Title, &e.Description, &e.ExtendedDescription, &e.Location,
		&e.StartTime, &e.EndTime, &e.AuthorID, &e.IsPublished, &e.Club,
		&e.LikeCount, &e.Image, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, err
	}
	return e, nil
}
