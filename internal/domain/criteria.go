package domain

// SearchCriteria carries the optional search, filter and sort parameters.
// Every field is optional; an empty string means "not supplied".
type SearchCriteria struct {
	Keyword   string
	TagName   string
	Location  string
	Club      string
	StartTime string
	EndTime   string
	SortBy    string
}

// HasTagFilter reports whether the criteria restrict results to one tag.
func (c SearchCriteria) HasTagFilter() bool {
	return FilterApplies(c.TagName)
}

// FilterApplies reports whether a tag, location or club filter value
// restricts the result set. Empty values and AllSentinel do not.
func FilterApplies(v string) bool {
	return v != "" && v != AllSentinel
}
