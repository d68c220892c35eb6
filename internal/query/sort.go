package query

// Sort is an ordering strategy applied as the final stage of a search.
type Sort string

const (
	SortDefault      Sort = "default"
	SortAlphabetical Sort = "alphabetical"
	SortStartTime    Sort = "start_time"
	SortTrending     Sort = "trending"
)

// ParseSort maps a sort key to a strategy. Unknown and empty keys fall back to
// SortDefault. "start time" is accepted as a spelling of "start_time".
func ParseSort(key string) Sort {
	switch key {
	case "alphabetical":
		return SortAlphabetical
	case "start_time", "start time":
		return SortStartTime
	case "trending":
		return SortTrending
	}
	return SortDefault
}

// OrderBy returns the ORDER BY terms for the strategy. Every strategy ends
// with e.id ASC so equal keys come back in a stable order.
func (s Sort) OrderBy() []string {
	switch s {
	case SortAlphabetical:
		return []string{"lower(e.title) ASC", "e.id ASC"}
	case SortStartTime:
		return []string{"e.start_time ASC", "e.id ASC"}
	case SortTrending:
		return []string{"e.like_count DESC", "e.id ASC"}
	}
	return []string{"e.id ASC"}
}
