package domain

// ExportRow is a single row in the full-catalog export: one flat,
// denormalized row per event. Times use TimestampLayout.
//
// Tags holds the event's tag names, ordered alphabetically.
// Callers that need a joined string (e.g. CSV) should join with "|".
type ExportRow struct {
	EventID     int64    `json:"event_id"`
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Club        string   `json:"club"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	AuthorID    int64    `json:"author_id"`
	IsPublished bool     `json:"is_published"`
	LikeCount   int      `json:"like_count"`
	HasImage    bool     `json:"has_image"`
	Tags        []string `json:"tags"`
}

// NewExportRow flattens an event. Free-text descriptions and the image bytes
// are left out; HasImage records whether an image is present.
func NewExportRow(e Event) ExportRow {
	tags := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		tags = append(tags, t.Name)
	}
	return ExportRow{
		EventID:     e.ID,
		Title:       e.Title,
		Location:    e.Location,
		Club:        e.Club,
		StartTime:   e.StartTime.Format(TimestampLayout),
		EndTime:     e.EndTime.Format(TimestampLayout),
		AuthorID:    e.AuthorID,
		IsPublished: e.IsPublished,
		LikeCount:   e.LikeCount,
		HasImage:    len(e.Image) > 0,
		Tags:        tags,
	}
}
