package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versemark/versemark-server/internal/domain"
	"github.com/versemark/versemark-server/internal/event"
	"github.com/versemark/versemark-server/internal/ratelimit"
	"github.com/versemark/versemark-server/internal/service"
	"github.com/versemark/versemark-server/internal/settings"
	"github.com/versemark/versemark-server/internal/sse"
	"github.com/versemark/versemark-server/internal/store/sqlite"
	"github.com/versemark/versemark-server/internal/validation"
)

// testEnvelope mirrors Envelope with a typed payload.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type testServer struct {
	*Server
	api humatest.TestAPI

	mu     sync.Mutex
	events []event.Event
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithOptions(t, Options{Version: "test"})
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	bus := event.NewBus(logger)
	manager := sse.NewManager(logger)
	t.Cleanup(manager.Attach(bus))

	svc := service.NewBookmarkService(st, settings.NewMemory(), bus, validation.New(), logger)
	s := NewServer(svc, st, manager, opts, logger)

	ts := &testServer{Server: s, api: humatest.Wrap(t, s.api)}
	t.Cleanup(bus.Subscribe("test", func(e event.Event) error {
		ts.mu.Lock()
		defer ts.mu.Unlock()
		ts.events = append(ts.events, e)
		return nil
	}))
	return ts
}

func (ts *testServer) eventCount() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.events)
}

func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	assert.Equal(t, envelopeVersion, env.V)
	return env
}

func (ts *testServer) createLabel(t *testing.T, name string) LabelResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/labels", map[string]any{"name": name})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decode[LabelResponse](t, resp.Body.Bytes()).Data
}

func (ts *testServer) createBookmark(t *testing.T, ref string, labelIDs ...int64) BookmarkResponse {
	t.Helper()
	body := map[string]any{"reference": ref}
	if labelIDs != nil {
		body["label_ids"] = labelIDs
	}
	resp := ts.api.Post("/api/v1/bookmarks", body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decode[BookmarkResponse](t, resp.Body.Bytes()).Data
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
	assert.Equal(t, "healthy", env.Data.Components["sse"].Status)
}

func TestRequestIDHeader(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	assert.True(t, strings.HasPrefix(resp.Header().Get(middleware.RequestIDHeader), "req-"))

	resp = ts.api.Get("/health", middleware.RequestIDHeader+": abc")
	assert.Equal(t, "abc", resp.Header().Get(middleware.RequestIDHeader))
}

func TestRateLimit_APIRoutes(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	t.Cleanup(limiter.Stop)
	ts := setupTestServerWithOptions(t, Options{Version: "test", RateLimiter: limiter})

	resp := ts.api.Get("/api/v1/labels")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/labels")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "RATE_LIMITED", env.Code)
	assert.NotEmpty(t, env.Message)

	// Health checks are outside /api/v1 and never limited.
	for range 3 {
		assert.Equal(t, http.StatusOK, ts.api.Get("/health").Code)
	}
}

func TestListLabels_VirtualFirst(t *testing.T) {
	ts := setupTestServer(t)
	ts.createLabel(t, "faith")
	ts.createLabel(t, "Hope")

	resp := ts.api.Get("/api/v1/labels")
	require.Equal(t, http.StatusOK, resp.Code)
	labels := decode[ListLabelsResponse](t, resp.Body.Bytes()).Data.Labels

	require.Len(t, labels, 4)
	assert.Equal(t, domain.LabelAllID, labels[0].ID)
	assert.True(t, labels[0].Virtual)
	assert.Equal(t, domain.LabelUnlabelledID, labels[1].ID)
	assert.Equal(t, "faith", labels[2].Name)
	assert.Equal(t, "Hope", labels[3].Name)

	resp = ts.api.Get("/api/v1/labels?assignable=true")
	labels = decode[ListLabelsResponse](t, resp.Body.Bytes()).Data.Labels
	require.Len(t, labels, 2)
	assert.False(t, labels[0].Virtual)
}

func TestLabelCRUD(t *testing.T) {
	ts := setupTestServer(t)
	l := ts.createLabel(t, "Faith")
	assert.Positive(t, l.ID)

	resp := ts.api.Put("/api/v1/labels/"+itoa(l.ID), map[string]any{"name": "Trust", "color": 7})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Trust", decode[LabelResponse](t, resp.Body.Bytes()).Data.Name)

	resp = ts.api.Get("/api/v1/labels/" + itoa(l.ID))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int32(7), decode[LabelResponse](t, resp.Body.Bytes()).Data.Color)

	resp = ts.api.Delete("/api/v1/labels/" + itoa(l.ID))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/labels/" + itoa(l.ID))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[any](t, resp.Body.Bytes()).Code)
}

func TestLabelErrors(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name   string
		do     func() int
		status int
	}{
		{"empty name", func() int {
			return ts.api.Post("/api/v1/labels", map[string]any{"name": ""}).Code
		}, http.StatusUnprocessableEntity},
		{"update virtual", func() int {
			return ts.api.Put("/api/v1/labels/-999", map[string]any{"name": "x"}).Code
		}, http.StatusUnprocessableEntity},
		{"update unsaved", func() int {
			return ts.api.Put("/api/v1/labels/0", map[string]any{"name": "x"}).Code
		}, http.StatusNotFound},
		{"delete virtual", func() int {
			return ts.api.Delete("/api/v1/labels/-998").Code
		}, http.StatusUnprocessableEntity},
		{"missing label", func() int {
			return ts.api.Put("/api/v1/labels/42", map[string]any{"name": "x"}).Code
		}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.do())
		})
	}
}

func TestVirtualLabelBookmarks(t *testing.T) {
	ts := setupTestServer(t)
	faith := ts.createLabel(t, "Faith")

	labelled := ts.createBookmark(t, "John.3.16", faith.ID)
	plain := ts.createBookmark(t, "Gen.1.1")

	ids := func(path string) []int64 {
		resp := ts.api.Get(path)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		var out []int64
		for _, b := range decode[ListBookmarksResponse](t, resp.Body.Bytes()).Data.Bookmarks {
			out = append(out, b.ID)
		}
		return out
	}

	assert.Equal(t, []int64{plain.ID, labelled.ID}, ids("/api/v1/labels/-999/bookmarks"))
	assert.Equal(t, []int64{plain.ID}, ids("/api/v1/labels/-998/bookmarks"))
	assert.Equal(t, []int64{labelled.ID}, ids("/api/v1/labels/"+itoa(faith.ID)+"/bookmarks"))
}

func TestSaveBookmark(t *testing.T) {
	ts := setupTestServer(t)
	faith := ts.createLabel(t, "Faith")

	b := ts.createBookmark(t, "gen.1.1-gen.1.3", faith.ID, domain.LabelAllID)
	assert.Equal(t, "Gen.1.1-Gen.1.3", b.Reference)
	assert.Equal(t, []int64{faith.ID}, b.LabelIDs)

	resp := ts.api.Post("/api/v1/bookmarks", map[string]any{
		"id":        b.ID,
		"reference": "Gen.1.2",
		"notes":     "light",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[BookmarkResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, b.ID, updated.ID)
	assert.Equal(t, "Gen.1.2", updated.Reference)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "light", *updated.Notes)
	assert.Equal(t, []int64{faith.ID}, updated.LabelIDs, "omitted label_ids keeps labels")

	resp = ts.api.Post("/api/v1/bookmarks", map[string]any{"reference": "Nope.1.1"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decode[any](t, resp.Body.Bytes()).Code)

	resp = ts.api.Post("/api/v1/bookmarks", map[string]any{"id": 999, "reference": "Gen.1.1"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBookmarkLabelPaths(t *testing.T) {
	ts := setupTestServer(t)
	a := ts.createLabel(t, "A")
	b := ts.createLabel(t, "B")
	c := ts.createLabel(t, "C")
	bm := ts.createBookmark(t, "Ps.23.1", a.ID, b.ID)

	resp := ts.api.Put("/api/v1/bookmarks/"+itoa(bm.ID)+"/labels", map[string]any{
		"label_ids": []int64{b.ID, c.ID, domain.LabelUnlabelledID},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	delta := decode[LabelDeltaResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, []int64{c.ID}, delta.Added)
	assert.Equal(t, []int64{a.ID}, delta.Removed)
	assert.ElementsMatch(t, []int64{b.ID, c.ID}, delta.LabelIDs)

	resp = ts.api.Put("/api/v1/bookmarks/"+itoa(bm.ID)+"/labels", map[string]any{"label_ids": []int64{0}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "UNPERSISTED_LABEL", decode[any](t, resp.Body.Bytes()).Code)

	resp = ts.api.Put("/api/v1/bookmarks/"+itoa(bm.ID)+"/label-ids", map[string]any{
		"label_ids": []int64{a.ID, domain.LabelAllID},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, []int64{a.ID}, decode[BookmarkResponse](t, resp.Body.Bytes()).Data.LabelIDs)

	resp = ts.api.Put("/api/v1/bookmarks/999/label-ids", map[string]any{"label_ids": []int64{a.ID}})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBookmarkNote(t *testing.T) {
	ts := setupTestServer(t)
	bm := ts.createBookmark(t, "Rom.8.28")

	resp := ts.api.Put("/api/v1/bookmarks/"+itoa(bm.ID)+"/note", map[string]any{"note": "all things"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NotNil(t, decode[BookmarkResponse](t, resp.Body.Bytes()).Data.Notes)

	resp = ts.api.Get("/api/v1/bookmarks?notes_only=true")
	assert.Len(t, decode[ListBookmarksResponse](t, resp.Body.Bytes()).Data.Bookmarks, 1)

	resp = ts.api.Put("/api/v1/bookmarks/"+itoa(bm.ID)+"/note", map[string]any{})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Nil(t, decode[BookmarkResponse](t, resp.Body.Bytes()).Data.Notes)

	resp = ts.api.Get("/api/v1/bookmarks?notes_only=true")
	assert.Empty(t, decode[ListBookmarksResponse](t, resp.Body.Bytes()).Data.Bookmarks)
}

func TestDeleteBookmarks(t *testing.T) {
	ts := setupTestServer(t)
	one := ts.createBookmark(t, "Gen.1.1")
	two := ts.createBookmark(t, "Gen.1.2")
	three := ts.createBookmark(t, "Gen.1.3")

	resp := ts.api.Delete("/api/v1/bookmarks/" + itoa(one.ID))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/bookmarks/" + itoa(one.ID))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Post("/api/v1/bookmarks/delete", map[string]any{"ids": []int64{two.ID, three.ID}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/bookmarks")
	assert.Empty(t, decode[ListBookmarksResponse](t, resp.Body.Bytes()).Data.Bookmarks)
}

func TestVerseToggle(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/verses/Gen.1.1-Gen.1.3/bookmark?document=KJV")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	first := decode[VerseBookmarkResponse](t, resp.Body.Bytes()).Data
	assert.True(t, first.Created)
	assert.Equal(t, "KJV", first.Bookmark.Document)

	resp = ts.api.Post("/api/v1/verses/Gen.1.1/bookmark")
	require.Equal(t, http.StatusOK, resp.Code)
	second := decode[VerseBookmarkResponse](t, resp.Body.Bytes()).Data
	assert.False(t, second.Created)
	assert.Equal(t, first.Bookmark.ID, second.Bookmark.ID)

	resp = ts.api.Get("/api/v1/verses/Gen.1.2/bookmarks")
	assert.Len(t, decode[ListBookmarksResponse](t, resp.Body.Bytes()).Data.Bookmarks, 1)

	resp = ts.api.Delete("/api/v1/verses/Gen.1.1/bookmark")
	assert.True(t, decode[DeletedResponse](t, resp.Body.Bytes()).Data.Deleted)

	resp = ts.api.Delete("/api/v1/verses/Gen.1.1/bookmark")
	assert.False(t, decode[DeletedResponse](t, resp.Body.Bytes()).Data.Deleted)

	resp = ts.api.Get("/api/v1/verses/Gen.1.3-Gen.1.1/bookmarks")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSpeakLabelEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/labels/speak")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	first := decode[LabelResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, domain.SpeakLabelName, first.Name)

	resp = ts.api.Get("/api/v1/labels/speak")
	assert.Equal(t, first.ID, decode[LabelResponse](t, resp.Body.Bytes()).Data.ID)
}

func TestDoNotSyncSuppressesEvents(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/labels?do_not_sync=true", map[string]any{"name": "Quiet"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Zero(t, ts.eventCount())

	ts.createLabel(t, "Loud")
	assert.Equal(t, 1, ts.eventCount())
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
