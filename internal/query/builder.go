package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/event-catalog/internal/domain"
)

// Build translates criteria into the list of predicates that apply to them.
// Predicates for absent criteria are omitted, not rendered as "always true".
//
// The tag filter is the caller's job to resolve: pass the resolved tag, or nil
// when the criteria have no tag filter. A tag filter naming an unknown tag
// must short-circuit to an empty result before Build is called.
//
// Returns domain.ErrBadFormat if a date bound cannot be parsed.
func Build(c domain.SearchCriteria, tag *domain.Tag) (Conjunction, error) {
	var preds Conjunction

	if c.Keyword != "" {
		preds = append(preds, Keyword{Term: c.Keyword})
	}
	if tag != nil {
		preds = append(preds, HasTag{TagID: tag.ID})
	}
	if domain.FilterApplies(c.Location) {
		preds = append(preds, LocationContains{Value: c.Location})
	}
	if domain.FilterApplies(c.Club) {
		preds = append(preds, ClubContains{Value: c.Club})
	}

	datePred, err := dateRange(c.StartTime, c.EndTime)
	if err != nil {
		return nil, fmt.Errorf("query.Build: %w", err)
	}
	if datePred != nil {
		preds = append(preds, datePred)
	}

	return preds, nil
}

// dateRange picks the date predicate for the supplied bounds.
// A bound carries a time of day when it contains a space.
// An end bound without a start bound is not supported and yields no predicate.
func dateRange(start, end string) (Predicate, error) {
	switch {
	case start != "" && end != "":
		if hasTimeOfDay(start) && hasTimeOfDay(end) {
			from, err := parseBound("start_time", domain.TimestampLayout, start)
			if err != nil {
				return nil, err
			}
			to, err := parseBound("end_time", domain.TimestampLayout, end)
			if err != nil {
				return nil, err
			}
			return WithinTimes{From: from, To: to}, nil
		}
		from, err := parseBound("start_time", domain.DateLayout, start)
		if err != nil {
			return nil, err
		}
		to, err := parseBound("end_time", domain.DateLayout, end)
		if err != nil {
			return nil, err
		}
		return WithinDates{From: from, To: to}, nil

	case start != "":
		if hasTimeOfDay(start) {
			at, err := parseBound("start_time", domain.TimestampLayout, start)
			if err != nil {
				return nil, err
			}
			return StartsAt{At: at}, nil
		}
		day, err := parseBound("start_time", domain.DateLayout, start)
		if err != nil {
			return nil, err
		}
		return StartsOn{Day: day}, nil
	}

	return nil, nil
}

func hasTimeOfDay(s string) bool {
	return strings.Contains(s, " ")
}

func parseBound(field, layout, value string) (time.Time, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, domain.NewFieldError(field, domain.ErrBadFormat)
	}
	return t, nil
}
