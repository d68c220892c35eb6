// Package query turns search criteria into independent SQL predicates and a
// sort order. Predicates are squirrel.Sqlizer values over the events table
// aliased as "e"; the repo layer conjoins them once and runs the query.
package query

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Predicate is one independent filter condition. Each implementation renders
// to SQL on its own, so it can be tested without the others.
type Predicate interface {
	sq.Sqlizer
	// Name identifies the predicate in logs and tests.
	Name() string
}

// Conjunction ANDs a list of predicates. An empty list renders to no SQL and
// must not be passed to a WHERE clause; use Empty to check.
type Conjunction []Predicate

// ToSql renders the conjunction as "(p1 AND p2 ...)".
func (c Conjunction) ToSql() (string, []any, error) {
	and := make(sq.And, len(c))
	for i, p := range c {
		and[i] = p
	}
	return and.ToSql()
}

// Empty reports whether there is nothing to filter on.
func (c Conjunction) Empty() bool { return len(c) == 0 }

// Keyword matches events whose title or club has a word starting with Term,
// case-insensitively. A word starts either at the beginning of the column or
// after a space.
type Keyword struct{ Term string }

func (Keyword) Name() string { return "keyword" }

func (k Keyword) ToSql() (string, []any, error) {
	first := k.Term + "%"
	later := "% " + k.Term + "%"
	return sq.Or{
		sq.ILike{"e.title": later},
		sq.ILike{"e.club": later},
		sq.ILike{"e.title": first},
		sq.ILike{"e.club": first},
	}.ToSql()
}

// HasTag restricts results to events linked to TagID through event_tags.
type HasTag struct{ TagID int64 }

func (HasTag) Name() string { return "tag" }

func (h HasTag) ToSql() (string, []any, error) {
	return sq.Expr("e.id IN (SELECT et.event_id FROM event_tags et WHERE et.tag_id = ?)", h.TagID).ToSql()
}

// LocationContains is a case-insensitive substring match on location.
type LocationContains struct{ Value string }

func (LocationContains) Name() string { return "location" }

func (l LocationContains) ToSql() (string, []any, error) {
	return sq.ILike{"e.location": "%" + l.Value + "%"}.ToSql()
}

// ClubContains is a case-insensitive substring match on club.
type ClubContains struct{ Value string }

func (ClubContains) Name() string { return "club" }

func (c ClubContains) ToSql() (string, []any, error) {
	return sq.ILike{"e.club": "%" + c.Value + "%"}.ToSql()
}

// WithinTimes matches events that start no earlier than From and end no later
// than To. It is a containment test, not an overlap test.
type WithinTimes struct{ From, To time.Time }

func (WithinTimes) Name() string { return "within_times" }

func (w WithinTimes) ToSql() (string, []any, error) {
	return sq.And{
		sq.GtOrEq{"e.start_time": w.From},
		sq.LtOrEq{"e.end_time": w.To},
	}.ToSql()
}

// WithinDates is WithinTimes at calendar-day granularity: time-of-day on both
// the bounds and the event is ignored.
type WithinDates struct{ From, To time.Time }

func (WithinDates) Name() string { return "within_dates" }

func (w WithinDates) ToSql() (string, []any, error) {
	return sq.And{
		sq.Expr("e.start_time::date >= ?::date", w.From),
		sq.Expr("e.end_time::date <= ?::date", w.To),
	}.ToSql()
}

// StartsAt matches events whose start_time equals At exactly.
type StartsAt struct{ At time.Time }

func (StartsAt) Name() string { return "starts_at" }

func (s StartsAt) ToSql() (string, []any, error) {
	return sq.Eq{"e.start_time": s.At}.ToSql()
}

// StartsOn matches events whose start_time falls on the calendar day of Day.
type StartsOn struct{ Day time.Time }

func (StartsOn) Name() string { return "starts_on" }

func (s StartsOn) ToSql() (string, []any, error) {
	return sq.Expr("e.start_time::date = ?::date", s.Day).ToSql()
}
