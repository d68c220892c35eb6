package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/event-catalog/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"event_id", "title", "location", "club", "start_time", "end_time",
	"author_id", "is_published", "like_count", "has_image", "tags",
}

// GetExport handles GET /export.
// It returns one flat row per event.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid query parameter format"))
		return
	}
	if format != nil && *format != "csv" && *format != "json" {
		writeJSON(w, http.StatusBadRequest, requestBody("format must be csv or json"))
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.fail(w, r, err, "not found")
		return
	}

	if format != nil && *format == "csv" {
		writeCSV(w, rows)
		return
	}
	if rows == nil {
		rows = []domain.ExportRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// writeCSV encodes rows as CSV.
// Tags within a row are pipe-separated ("|") to keep each event on a single CSV line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(rowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// rowToCSVRecord encodes a domain.ExportRow as a flat string slice.
func rowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		strconv.FormatInt(r.EventID, 10),
		r.Title,
		r.Location,
		r.Club,
		r.StartTime,
		r.EndTime,
		strconv.FormatInt(r.AuthorID, 10),
		strconv.FormatBool(r.IsPublished),
		strconv.Itoa(r.LikeCount),
		strconv.FormatBool(r.HasImage),
		strings.Join(r.Tags, "|"),
	}
}
