package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/event-catalog/internal/domain"
)

// eventRequest is the JSON body of POST /events and PUT /events/{id}.
// Times use domain.TimestampLayout. Image is base64 in JSON.
type eventRequest struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	ExtendedDescription string   `json:"extended_description"`
	Location            string   `json:"location"`
	StartTime           string   `json:"start_time"`
	EndTime             string   `json:"end_time"`
	AuthorID            int64    `json:"author_id"`
	IsPublished         *bool    `json:"is_published"`
	Club                string   `json:"club"`
	Image               []byte   `json:"image"`
	Tags                []string `json:"tags"`
}

// eventResponse is the JSON representation of an event.
type eventResponse struct {
	ID                  int64        `json:"id"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	ExtendedDescription string       `json:"extended_description"`
	Location            string       `json:"location"`
	StartTime           string       `json:"start_time"`
	EndTime             string       `json:"end_time"`
	AuthorID            int64        `json:"author_id"`
	IsPublished         bool         `json:"is_published"`
	Club                string       `json:"club"`
	LikeCount           int          `json:"like_count"`
	Image               []byte       `json:"image,omitempty"`
	Tags                []domain.Tag `json:"tags"`
}

type createdResponse struct {
	ID int64 `json:"id"`
}

// searchParams mirrors the query parameters of GET /events.
type searchParams struct {
	Keyword   *string
	Tag       *string
	Location  *string
	Club      *string
	StartTime *string
	EndTime   *string
	SortBy    *string
}

func toEventResponse(e domain.Event) eventResponse {
	tags := e.Tags
	if tags == nil {
		tags = []domain.Tag{}
	}
	return eventResponse{
		ID:                  e.ID,
		Title:               e.Title,
		Description:         e.Description,
		ExtendedDescription: e.ExtendedDescription,
		Location:            e.Location,
		StartTime:           e.StartTime.Format(domain.TimestampLayout),
		EndTime:             e.EndTime.Format(domain.TimestampLayout),
		AuthorID:            e.AuthorID,
		IsPublished:         e.IsPublished,
		Club:                e.Club,
		LikeCount:           e.LikeCount,
		Image:               e.Image,
		Tags:                tags,
	}
}

func toEventList(events []domain.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}

// ListEvents handles GET /events.
// With no query parameters it lists every event in storage order; otherwise
// the parameters become search criteria.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	var p searchParams
	q := r.URL.Query()
	for name, dest := range map[string]**string{
		"keyword":    &p.Keyword,
		"tag":        &p.Tag,
		"location":   &p.Location,
		"club":       &p.Club,
		"start_time": &p.StartTime,
		"end_time":   &p.EndTime,
		"sort_by":    &p.SortBy,
	} {
		if err := runtime.BindQueryParameter("form", true, false, name, q, dest); err != nil {
			writeJSON(w, http.StatusBadRequest, requestBody(fmt.Sprintf("invalid query parameter %s", name)))
			return
		}
	}

	c := domain.SearchCriteria{
		Keyword:   deref(p.Keyword),
		TagName:   deref(p.Tag),
		Location:  deref(p.Location),
		Club:      deref(p.Club),
		StartTime: deref(p.StartTime),
		EndTime:   deref(p.EndTime),
		SortBy:    deref(p.SortBy),
	}

	var (
		events []domain.Event
		err    error
	)
	if c == (domain.SearchCriteria{}) {
		events, err = s.search.ListAll(r.Context())
	} else {
		events, err = s.search.Search(r.Context(), c)
	}
	if err != nil {
		s.fail(w, r, err, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, toEventList(events))
}

// CreateEvent handles POST /events.
// It returns 201 with the new id and a Location header.
func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !s.decode(w, r, &req) {
		return
	}

	id, err := s.events.Create(r.Context(), domain.EventInput{
		Title:               req.Title,
		Description:         req.Description,
		ExtendedDescription: req.ExtendedDescription,
		Location:            req.Location,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		AuthorID:            req.AuthorID,
		IsPublished:         req.IsPublished,
		Club:                req.Club,
		Image:               req.Image,
		Tags:                req.Tags,
	})
	if err != nil {
		s.fail(w, r, err, "event not found")
		return
	}

	w.Header().Set("Location", "/events/"+strconv.FormatInt(id, 10))
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

// GetEvent handles GET /events/{id}.
func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := s.search.GetByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(e))
}

// UpdateEvent handles PUT /events/{id}.
// Omitted image and is_published leave those fields unchanged; the schedule
// is replaced only when both bounds are present and valid.
func (s *Server) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req eventRequest
	if !s.decode(w, r, &req) {
		return
	}

	e, err := s.events.Update(r.Context(), id, domain.EventUpdate{
		Title:               req.Title,
		Description:         req.Description,
		ExtendedDescription: req.ExtendedDescription,
		Location:            req.Location,
		Club:                req.Club,
		Tags:                req.Tags,
		Image:               req.Image,
		IsPublished:         req.IsPublished,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
	})
	if err != nil {
		s.fail(w, r, err, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(e))
}

// DeleteEvent handles DELETE /events/{id}.
func (s *Server) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.events.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err, "event not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutEventImage handles PUT /events/{id}/image. The body is the raw image.
func (s *Server) PutEventImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.fail(w, r, err, "event not found")
		return
	}
	if len(body) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(domain.NewFieldError("image", domain.ErrEmptyField)))
		return
	}
	if err := s.events.UpdateImage(r.Context(), id, body); err != nil {
		s.fail(w, r, err, "event not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEventImage handles DELETE /events/{id}/image.
func (s *Server) DeleteEventImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.events.UpdateImage(r.Context(), id, nil); err != nil {
		s.fail(w, r, err, "event not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEventTags handles GET /events/{id}/tags.
func (s *Server) ListEventTags(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tags, err := s.search.ListTagsForEvent(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "event not found")
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

// ListLocations handles GET /events/locations.
func (s *Server) ListLocations(w http.ResponseWriter, r *http.Request) {
	values, err := s.search.ListLocations(r.Context())
	if err != nil {
		s.fail(w, r, err, "not found")
		return
	}
	writeJSON(w, http.StatusOK, values)
}

// ListClubs handles GET /events/clubs.
func (s *Server) ListClubs(w http.ResponseWriter, r *http.Request) {
	values, err := s.search.ListClubs(r.Context())
	if err != nil {
		s.fail(w, r, err, "not found")
		return
	}
	writeJSON(w, http.StatusOK, values)
}

// ListEventsByTag handles GET /tags/{name}/events.
// An unknown tag name is a 404; the search filter on GET /events instead
// treats it as an empty result.
func (s *Server) ListEventsByTag(w http.ResponseWriter, r *http.Request) {
	var name string
	err := runtime.BindStyledParameterWithOptions("simple", "name", chi.URLParam(r, "name"), &name,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid tag name"))
		return
	}
	events, err := s.search.GetByTag(r.Context(), name)
	if err != nil {
		s.fail(w, r, err, "tag not found")
		return
	}
	writeJSON(w, http.StatusOK, toEventList(events))
}

// ListEventsByAuthor handles GET /users/{id}/events.
func (s *Server) ListEventsByAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	events, err := s.search.ListAuthoredBy(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, toEventList(events))
}

// pathID binds the {id} path parameter. On failure it writes a 400 and
// returns false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("id must be an integer"))
		return 0, false
	}
	return id, true
}

// decode reads a JSON body into dst. On failure it writes the error response
// (413 for an oversized body, 400 otherwise) and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.fail(w, r, err, "")
		return false
	}
	writeJSON(w, http.StatusBadRequest, requestBody("malformed JSON body"))
	return false
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
