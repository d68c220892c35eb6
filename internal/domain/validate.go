package domain

import (
	"time"
	"unicode/utf8"
)

// MaxFieldLength is the longest title or location accepted, in characters.
const MaxFieldLength = 255

// TimestampLayout is the wire format for event start and end times.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the bare-date form accepted by the date-range filter.
const DateLayout = "2006-01-02"

// ValidateTitle rejects empty titles and titles longer than MaxFieldLength.
func ValidateTitle(s string) error {
	return validateText("title", s)
}

// ValidateLocation applies the same rules as ValidateTitle.
func ValidateLocation(s string) error {
	return validateText("location", s)
}

func validateText(field, s string) error {
	if s == "" {
		return fieldErr(field, ErrEmptyField)
	}
	if utf8.RuneCountInString(s) > MaxFieldLength {
		return fieldErr(field, ErrTooLong)
	}
	return nil
}

// ValidateSchedule parses start and end as TimestampLayout and checks that end
// is not before start. Both times are returned in UTC.
func ValidateSchedule(start, end string) (time.Time, time.Time, error) {
	if start == "" {
		return time.Time{}, time.Time{}, fieldErr("start_time", ErrEmptyField)
	}
	startAt, err := time.Parse(TimestampLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fieldErr("start_time", ErrBadFormat)
	}
	if end == "" {
		return time.Time{}, time.Time{}, fieldErr("end_time", ErrEmptyField)
	}
	endAt, err := time.Parse(TimestampLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fieldErr("end_time", ErrBadFormat)
	}
	if endAt.Before(startAt) {
		return time.Time{}, time.Time{}, fieldErr("end_time", ErrInvalidRange)
	}
	return startAt, endAt, nil
}

// ValidateEventInput runs the storage-free checks that precede the author
// lookup, in order: title, location, schedule. It stops at the first failure.
// The publication flag is checked by ValidatePublished once the author is
// known to exist, and the image by the image validator after that.
func ValidateEventInput(in EventInput) (ValidatedEvent, error) {
	if err := ValidateTitle(in.Title); err != nil {
		return ValidatedEvent{}, err
	}
	if err := ValidateLocation(in.Location); err != nil {
		return ValidatedEvent{}, err
	}
	start, end, err := ValidateSchedule(in.StartTime, in.EndTime)
	if err != nil {
		return ValidatedEvent{}, err
	}

	return ValidatedEvent{
		Title:               in.Title,
		Description:         in.Description,
		ExtendedDescription: in.ExtendedDescription,
		Location:            in.Location,
		StartTime:           start,
		EndTime:             end,
		AuthorID:            in.AuthorID,
		Club:                in.Club,
		Image:               in.Image,
	}, nil
}

// ValidatePublished requires the publication flag to be supplied.
func ValidatePublished(p *bool) (bool, error) {
	if p == nil {
		return false, fieldErr("is_published", ErrEmptyField)
	}
	return *p, nil
}
