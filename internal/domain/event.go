// Package domain contains the core data types for the event catalog.
// It has zero external dependencies and is imported by every other
// internal package (query, repo, service, handler).
package domain

import "time"

// Event is a scheduled, authored, taggable record with a publish flag and an
// optional image. ID is assigned by storage and never changes.
type Event struct {
	ID                  int64     `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	ExtendedDescription string    `json:"extended_description"`
	Location            string    `json:"location"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	AuthorID            int64     `json:"author_id"`
	IsPublished         bool      `json:"is_published"`
	Club                string    `json:"club"`
	LikeCount           int       `json:"like_count"`
	Image               []byte    `json:"image,omitempty"`
	Tags                []Tag     `json:"tags"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// EventInput is the raw field record for creating an event.
// StartTime and EndTime are "YYYY-MM-DD HH:MM:SS" strings; an empty string
// means the value was not supplied. A nil IsPublished likewise means absent.
type EventInput struct {
	Title               string
	Description         string
	ExtendedDescription string
	Location            string
	StartTime           string
	EndTime             string
	AuthorID            int64
	IsPublished         *bool
	Club                string
	Image               []byte
	Tags                []string
}

// EventUpdate is the raw field record for updating an event.
// Description, ExtendedDescription, Club and Tags are always replaced.
// Image and IsPublished are applied only when non-nil. The schedule is applied
// only when both bounds are present and valid.
type EventUpdate struct {
	Title               string
	Description         string
	ExtendedDescription string
	Location            string
	Club                string
	Tags                []string
	Image               []byte
	IsPublished         *bool
	StartTime           string
	EndTime             string
}

// ValidatedEvent is the output of ValidateEventInput: every field has passed
// the pure checks and the schedule has been parsed.
type ValidatedEvent struct {
	Title               string
	Description         string
	ExtendedDescription string
	Location            string
	StartTime           time.Time
	EndTime             time.Time
	AuthorID            int64
	IsPublished         bool
	Club                string
	Image               []byte
}

// Event converts the validated values into an Event ready to insert.
func (v ValidatedEvent) Event() Event {
	return Event{
		Title:               v.Title,
		Description:         v.Description,
		ExtendedDescription: v.ExtendedDescription,
		Location:            v.Location,
		StartTime:           v.StartTime,
		EndTime:             v.EndTime,
		AuthorID:            v.AuthorID,
		IsPublished:         v.IsPublished,
		Club:                v.Club,
		Image:               v.Image,
	}
}
