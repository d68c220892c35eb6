package domain

// Tag is a named label that can be attached to many events.
// Tags are created and deleted by a separate collaborator; the catalog only
// resolves them by exact Name.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AllSentinel is the filter value clients send to mean "no restriction" for
// the tag, location and club filters.
const AllSentinel = "All"
