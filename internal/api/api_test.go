package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meur/deckviewer/internal/app"
	"github.com/meur/deckviewer/internal/bulk"
	"github.com/meur/deckviewer/internal/decks"
	"github.com/meur/deckviewer/internal/deckurl"
	"github.com/meur/deckviewer/internal/models"
	"github.com/meur/deckviewer/internal/storage"
)

func newTestServer(t *testing.T, kv *storage.MemoryKV, opts app.Options) *Server {
	t.Helper()
	gw := storage.NewGateway(kv, storage.DefaultKeys(), zap.NewNop())
	factory := decks.NewFactory(deckurl.Default())
	proc := bulk.NewProcessor(factory, bulk.Options{RejectDuplicates: opts.RejectDuplicates}, zap.NewNop())
	session := app.New(gw, factory, proc, opts, zap.NewNop())
	require.NoError(t, session.Load(context.Background()))
	return New(session, Options{}, zap.NewNop())
}

func do(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &storage.MemoryKV{}, app.Options{})
	rec := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAddAndListDecks(t *testing.T) {
	srv := newTestServer(t, &storage.MemoryKV{}, app.Options{})

	rec := do(t, srv, http.MethodPost, "/api/decks", addDeckRequest{Code: " ABC ", PlayerName: "Ann"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[deckResponse](t, rec)
	assert.Equal(t, "ABC", created.Code)
	assert.Equal(t, deckurl.Default().View("ABC"), created.ImageURL)
	assert.Equal(t, deckurl.Default().Confirm("ABC"), created.ConfirmURL)
	assert.Nil(t, created.DeckName)

	rec = do(t, srv, http.MethodPost, "/api/decks", addDeckRequest{Code: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decode[errorResponse](t, rec)
	assert.Equal(t, "VALIDATION_ERROR", string(errResp.Kind))

	rec = do(t, srv, http.MethodPost, "/api/decks", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/decks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[deckListResponse](t, rec)
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Decks, 1)
	assert.Equal(t, created.ID, list.Decks[0].ID)

	rec = do(t, srv, http.MethodGet, "/api/decks/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, srv, http.MethodGet, "/api/decks/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDuplicateConflict(t *testing.T) {
	srv := newTestServer(t, &storage.MemoryKV{}, app.Options{RejectDuplicates: true})

	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/decks", addDeckRequest{Code: "X"}).Code)
	rec := do(t, srv, http.MethodPost, "/api/decks", addDeckRequest{Code: "X"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBulkAdd(t *testing.T) {
	srv := newTestServer(t, &storage.MemoryKV{}, app.Options{})

	rec := do(t, srv, http.MethodPost, "/api/decks/bulk", bulkRequest{Text: "田中\tABC\n\n佐藤\tDEF\tMyDeck\nGHI\n,"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[bulkResponse](t, rec)
	assert.Len(t, resp.Added, 3)
	assert.Equal(t, []string{"line 4: no deck code found"}, resp.Errors)
	assert.Equal(t, "partial", resp.Outcome)
	assert.Equal(t, "3 added. 1 failed.", resp.Message)

	rec = do(t, srv, http.MethodGet, "/api/state", nil)
	state := decode[stateResponse](t, rec)
	assert.Equal(t, "3 added. 1 failed.", state.UI.Error)
	assert.Equal(t, 3, state.Total)

	rec = do(t, srv, http.MethodPost, "/api/decks/bulk", bulkRequest{Text: "\n  \n"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateRemoveClear(t *testing.T) {
	kv := &storage.MemoryKV{}
	srv := newTestServer(t, kv, app.Options{})
	created := decode[deckResponse](t, do(t, srv, http.MethodPost, "/api/decks", addDeckRequest{Code: "A", DeckName: "Old"}))

	name := "Lugia"
	rec := do(t, srv, http.MethodPatch, "/api/decks/"+created.ID, updateDeckRequest{DeckName: &name})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lugia", *decode[deckResponse](t, rec).DeckName)

	rec = do(t, srv, http.MethodPatch, "/api/decks/"+created.ID, updateDeckRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, srv, http.MethodPatch, "/api/decks/missing", updateDeckRequest{DeckName: &name})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/summary", nil)
	assert.Equal(t, []models.DeckNameSummaryItem{{DeckName: "Lugia", Count: 1, Percentage: 100}},
		decode[[]models.DeckNameSummaryItem](t, rec))

	kv.FailWrites = assert.AnError
	rec = do(t, srv, http.MethodDelete, "/api/decks/"+created.ID, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "STORAGE_ERROR", string(decode[errorResponse](t, rec).Kind))
	kv.FailWrites = nil

	rec = do(t, srv, http.MethodDelete, "/api/decks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "removed in memory despite the failed save")

	do(t, srv, http.MethodPost, "/api/decks", addDeckRequest{Code: "B"})
	rec = do(t, srv, http.MethodDelete, "/api/decks", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, decode[deckListResponse](t, do(t, srv, http.MethodGet, "/api/decks", nil)).Total)
}

func TestQuotaExceeded(t *testing.T) {
	kv := &storage.MemoryKV{Quota: 16}
	srv := newTestServer(t, kv, app.Options{})

	rec := do(t, srv, http.MethodPost, "/api/decks", addDeckRequest{Code: "ABC"})
	assert.Equal(t, http.StatusInsufficientStorage, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "QUOTA_EXCEEDED", string(resp.Kind))
	assert.NotNil(t, resp.Data)
}

func TestViewFilterAndModal(t *testing.T) {
	srv := newTestServer(t, &storage.MemoryKV{}, app.Options{})
	bulkResp := decode[bulkResponse](t, do(t, srv, http.MethodPost, "/api/decks/bulk",
		bulkRequest{Text: "Ann A1 X\nBen B1 Y\nCat C1 Z"}))
	require.Len(t, bulkResp.Added, 3)

	rec := do(t, srv, http.MethodPost, "/api/modal/open", openModalRequest{ID: bulkResp.Added[0].ID})
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode[modalResponse](t, rec)
	require.True(t, m.Open)
	assert.Equal(t, 0, m.Image.Index)

	rec = do(t, srv, http.MethodPost, "/api/modal/navigate", navigateRequest{Direction: "prev"})
	assert.Equal(t, "C1", decode[modalResponse](t, rec).Image.DeckCode)

	rec = do(t, srv, http.MethodPost, "/api/modal/navigate", navigateRequest{Direction: "up"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/modal/key", keyRequest{Key: "ArrowDown"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPatch, "/api/modal", editModalRequest{Field: "deckName", Value: "Gardevoir"})
	require.Equal(t, http.StatusOK, rec.Code)
	m = decode[modalResponse](t, rec)
	assert.Equal(t, "A1", m.Image.DeckCode)
	assert.Equal(t, "Gardevoir", *m.Image.DeckName)

	rec = do(t, srv, http.MethodPatch, "/api/modal", editModalRequest{Field: "code", Value: "Z"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	filter := "cat"
	rec = do(t, srv, http.MethodPut, "/api/view", viewRequest{Filter: &filter})
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[stateResponse](t, rec)
	assert.Equal(t, "cat", state.Filter)
	require.NotNil(t, state.Modal)
	assert.Equal(t, "C1", state.Modal.DeckCode, "clamped onto the only visible deck")

	list := decode[deckListResponse](t, do(t, srv, http.MethodGet, "/api/decks", nil))
	assert.Equal(t, 1, list.Shown)
	assert.Equal(t, 3, list.Total)
	all := decode[deckListResponse](t, do(t, srv, http.MethodGet, "/api/decks?all=true", nil))
	assert.Equal(t, 3, all.Shown)

	rec = do(t, srv, http.MethodPut, "/api/view", viewRequest{
		Filter: new(string),
		Deck:   &decks.DeckSelection{Name: "Y"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	state = decode[stateResponse](t, rec)
	require.NotNil(t, state.Deck)
	assert.Equal(t, "Y", state.Deck.Name)
	list = decode[deckListResponse](t, do(t, srv, http.MethodGet, "/api/decks", nil))
	require.Equal(t, 1, list.Shown)
	assert.Equal(t, "B1", list.Decks[0].Code)

	rec = do(t, srv, http.MethodPut, "/api/view", viewRequest{ClearDeck: true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[stateResponse](t, rec).Deck)

	bad := decks.SortOrder("size")
	rec = do(t, srv, http.MethodPut, "/api/view", viewRequest{Sort: &bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/modal", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, decode[modalResponse](t, do(t, srv, http.MethodGet, "/api/modal", nil)).Open)

	rec = do(t, srv, http.MethodPost, "/api/modal/open", openModalRequest{ID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettings(t *testing.T) {
	srv := newTestServer(t, &storage.MemoryKV{}, app.Options{})

	rec := do(t, srv, http.MethodGet, "/api/settings", nil)
	assert.Equal(t, models.DefaultViewSettings(), decode[models.ViewSettings](t, rec))

	rec = do(t, srv, http.MethodPut, "/api/settings", map[string]string{"viewMode": "list", "cardSize": "giant"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ViewSettings{
		ViewMode:  models.ViewModeList,
		CardSize:  models.CardSizeMedium,
		ActiveTab: models.TabDeckList,
	}, decode[models.ViewSettings](t, rec))
}

func TestFormAndDismiss(t *testing.T) {
	srv := newTestServer(t, &storage.MemoryKV{}, app.Options{})

	rec := do(t, srv, http.MethodPut, "/api/form", app.FormState{BulkInput: "A\nB", BulkMode: true})
	require.Equal(t, http.StatusOK, rec.Code)

	do(t, srv, http.MethodPost, "/api/decks", addDeckRequest{})
	state := decode[stateResponse](t, do(t, srv, http.MethodGet, "/api/state", nil))
	assert.NotEmpty(t, state.UI.Error)
	assert.Equal(t, "A\nB", state.Form.BulkInput)

	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/api/state/error", nil).Code)
	state = decode[stateResponse](t, do(t, srv, http.MethodGet, "/api/state", nil))
	assert.Empty(t, state.UI.Error)
}

func TestSummaryChart(t *testing.T) {
	srv := newTestServer(t, &storage.MemoryKV{}, app.Options{})
	do(t, srv, http.MethodPost, "/api/decks", addDeckRequest{Code: "A", DeckName: "Lugia"})

	rec := do(t, srv, http.MethodGet, "/api/summary/chart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Lugia")
}
