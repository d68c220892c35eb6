package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/event-catalog/internal/domain"
	"github.com/pkordes/event-catalog/internal/handler"
)

// mockEventServicer is a test double for handler.EventServicer.
// Set only the method fields your test needs.
type mockEventServicer struct {
	create      func(ctx context.Context, in domain.EventInput) (int64, error)
	update      func(ctx context.Context, id int64, up domain.EventUpdate) (domain.Event, error)
	updateImage func(ctx context.Context, id int64, image []byte) error
	delete      func(ctx context.Context, id int64) error
}

func (m *mockEventServicer) Create(ctx context.Context, in domain.EventInput) (int64, error) {
	return m.create(ctx, in)
}
func (m *mockEventServicer) Update(ctx context.Context, id int64, up domain.EventUpdate) (domain.Event, error) {
	return m.update(ctx, id, up)
}
func (m *mockEventServicer) UpdateImage(ctx context.Context, id int64, image []byte) error {
	return m.updateImage(ctx, id, image)
}
func (m *mockEventServicer) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

// compile-time check: mockEventServicer must satisfy handler.EventServicer.
var _ handler.EventServicer = (*mockEventServicer)(nil)

// mockSearchServicer is a test double for handler.SearchServicer.
type mockSearchServicer struct {
	search           func(ctx context.Context, c domain.SearchCriteria) ([]domain.Event, error)
	getByTag         func(ctx context.Context, name string) ([]domain.Event, error)
	getByID          func(ctx context.Context, id int64) (domain.Event, error)
	listAll          func(ctx context.Context) ([]domain.Event, error)
	listAuthoredBy   func(ctx context.Context, authorID int64) ([]domain.Event, error)
	listTagsForEvent func(ctx context.Context, id int64) ([]domain.Tag, error)
	listLocations    func(ctx context.Context) ([]string, error)
	listClubs        func(ctx context.Context) ([]string, error)
}

func (m *mockSearchServicer) Search(ctx context.Context, c domain.SearchCriteria) ([]domain.Event, error) {
	return m.search(ctx, c)
}
func (m *mockSearchServicer) GetByTag(ctx context.Context, name string) ([]domain.Event, error) {
	return m.getByTag(ctx, name)
}
func (m *mockSearchServicer) GetByID(ctx context.Context, id int64) (domain.Event, error) {
	return m.getByID(ctx, id)
}
func (m *mockSearchServicer) ListAll(ctx context.Context) ([]domain.Event, error) {
	return m.listAll(ctx)
}
func (m *mockSearchServicer) ListAuthoredBy(ctx context.Context, authorID int64) ([]domain.Event, error) {
	return m.listAuthoredBy(ctx, authorID)
}
func (m *mockSearchServicer) ListTagsForEvent(ctx context.Context, id int64) ([]domain.Tag, error) {
	return m.listTagsForEvent(ctx, id)
}
func (m *mockSearchServicer) ListLocations(ctx context.Context) ([]string, error) {
	return m.listLocations(ctx)
}
func (m *mockSearchServicer) ListClubs(ctx context.Context) ([]string, error) {
	return m.listClubs(ctx)
}

var _ handler.SearchServicer = (*mockSearchServicer)(nil)

// mockExportServicer is a test double for handler.ExportServicer.
type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into a chi router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(events handler.EventServicer, search handler.SearchServicer, export handler.ExportServicer) http.Handler {
	r := chi.NewRouter()
	handler.NewServer(events, search, export, nil).Register(r)
	return r
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body *bytes.Buffer) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}
