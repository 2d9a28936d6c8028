package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meur/deckviewer/internal/apperr"
	"github.com/meur/deckviewer/internal/models"
)

func strp(s string) *string { return &s }

func sampleDecks() []models.DeckRecord {
	return []models.DeckRecord{
		{
			ID:         "1740830400000-a1b2c3d4",
			Code:       "ABC123",
			PlayerName: strp("田中"),
			DeckName:   strp("Lugia VSTAR"),
			ImageURL:   "https://www.pokemon-card.com/deck/deckView.php/deckID/ABC123",
			AddedAt:    time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC),
		},
		{
			ID:       "1740830400001-e5f6a7b8",
			Code:     "DEF456",
			ImageURL: "https://www.pokemon-card.com/deck/deckView.php/deckID/DEF456",
			AddedAt:  time.Date(2025, 3, 1, 21, 0, 0, 0, time.FixedZone("JST", 9*3600)),
		},
	}
}

func TestGateway_RoundTrip(t *testing.T) {
	g := NewGateway(&MemoryKV{}, DefaultKeys(), zap.NewNop())
	ctx := context.Background()

	want := sampleDecks()
	require.NoError(t, g.SaveDecks(ctx, want))

	got, err := g.LoadDecks(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGateway_RoundTripSQLite(t *testing.T) {
	g := NewGateway(newTestStore(t, 0), DefaultKeys(), zap.NewNop())
	ctx := context.Background()

	want := sampleDecks()
	require.NoError(t, g.SaveDecks(ctx, want))
	got, err := g.LoadDecks(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGateway_StoredShape(t *testing.T) {
	kv := &MemoryKV{}
	g := NewGateway(kv, DefaultKeys(), nil)
	ctx := context.Background()

	require.NoError(t, g.SaveDecks(ctx, sampleDecks()[1:]))

	raw, ok, err := kv.Get(ctx, DefaultDeckListKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{
		"id": "1740830400001-e5f6a7b8",
		"code": "DEF456",
		"imageUrl": "https://www.pokemon-card.com/deck/deckView.php/deckID/DEF456",
		"addedAt": "2025-03-01T12:00:00Z"
	}]`, raw)
}

func TestGateway_LoadBrowserBlob(t *testing.T) {
	kv := &MemoryKV{}
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, DefaultDeckListKey,
		`[{"id":"1-0.5","code":"X1","playerName":"Ash","imageUrl":"u","addedAt":"2025-01-02T03:04:05.678Z"}]`))

	got, err := NewGateway(kv, DefaultKeys(), nil).LoadDecks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ash", *got[0].PlayerName)
	assert.Nil(t, got[0].DeckName)
	assert.True(t, got[0].AddedAt.Equal(time.Date(2025, 1, 2, 3, 4, 5, 678000000, time.UTC)))
}

func TestGateway_LoadMissing(t *testing.T) {
	got, err := NewGateway(&MemoryKV{}, DefaultKeys(), nil).LoadDecks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGateway_LoadErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		kv   func() *MemoryKV
		kind apperr.Kind
	}{
		{
			name: "corrupt json",
			kv: func() *MemoryKV {
				kv := &MemoryKV{}
				kv.Set(ctx, DefaultDeckListKey, "{not json")
				return kv
			},
			kind: apperr.KindParse,
		},
		{
			name: "not a list",
			kv: func() *MemoryKV {
				kv := &MemoryKV{}
				kv.Set(ctx, DefaultDeckListKey, `{"id":"1","code":"A"}`)
				return kv
			},
			kind: apperr.KindParse,
		},
		{
			name: "read failure",
			kv: func() *MemoryKV {
				return &MemoryKV{FailReads: errors.New("disabled")}
			},
			kind: apperr.KindStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewGateway(tt.kv(), DefaultKeys(), zap.NewNop()).LoadDecks(ctx)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, tt.kind), "got %v", err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestGateway_LoadDropsInvalidEntries(t *testing.T) {
	kv := &MemoryKV{}
	ctx := context.Background()
	kv.Set(ctx, DefaultDeckListKey, `[
		{"id":"1","code":"A","deckName":"  ","imageUrl":"u","addedAt":"2025-01-01T00:00:00Z"},
		{"id":"2","code":"","imageUrl":"u","addedAt":"2025-01-01T00:00:00Z"},
		{"id":"1","code":"B","imageUrl":"u","addedAt":"2025-01-01T00:00:00Z"},
		{"id":"3","code":"C","imageUrl":"u","addedAt":"yesterday"},
		{"id":"4","code":"D","imageUrl":"u","addedAt":"2025-01-02T00:00:00Z"}
	]`)

	got, err := NewGateway(kv, DefaultKeys(), nil).LoadDecks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Code)
	assert.Nil(t, got[0].DeckName)
	assert.Equal(t, "D", got[1].Code)
}

func TestGateway_BadTimestampDoesNotWipeList(t *testing.T) {
	kv := &MemoryKV{}
	ctx := context.Background()
	kv.Set(ctx, DefaultDeckListKey, `[
		{"id":"1","code":"A","imageUrl":"u","addedAt":"not a time"},
		{"id":"2","code":"B","imageUrl":"u","addedAt":"2025-01-01T00:00:00Z"}
	]`)
	g := NewGateway(kv, DefaultKeys(), nil)

	got, err := g.LoadDecks(ctx)
	require.NoError(t, err)
	require.NoError(t, g.SaveDecks(ctx, got))

	got, err = g.LoadDecks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Code)
}

func TestGateway_Clear(t *testing.T) {
	ctx := context.Background()

	for name, kv := range map[string]KV{
		"memory": &MemoryKV{},
		"sqlite": newTestStore(t, 0),
	} {
		t.Run(name, func(t *testing.T) {
			g := NewGateway(kv, DefaultKeys(), nil)
			require.NoError(t, g.SaveDecks(ctx, sampleDecks()))
			require.NoError(t, g.SaveViewSettings(ctx, models.ViewSettings{ViewMode: models.ViewModeList}))

			require.NoError(t, g.Clear(ctx))
			require.NoError(t, g.Clear(ctx))

			for _, key := range []string{DefaultDeckListKey, DefaultViewSettingsKey} {
				_, ok, err := kv.Get(ctx, key)
				require.NoError(t, err)
				assert.False(t, ok, key)
			}
			decks, err := g.LoadDecks(ctx)
			require.NoError(t, err)
			assert.Empty(t, decks)
		})
	}

	err := NewGateway(&MemoryKV{FailWrites: errors.New("disabled")}, DefaultKeys(), nil).Clear(ctx)
	assert.True(t, apperr.Is(err, apperr.KindStorage), "got %v", err)
}

func TestGateway_SaveErrors(t *testing.T) {
	ctx := context.Background()

	err := NewGateway(&MemoryKV{Quota: 10}, DefaultKeys(), nil).SaveDecks(ctx, sampleDecks())
	assert.True(t, apperr.Is(err, apperr.KindQuota), "got %v", err)

	err = NewGateway(&MemoryKV{FailWrites: errors.New("disabled")}, DefaultKeys(), nil).SaveDecks(ctx, sampleDecks())
	assert.True(t, apperr.Is(err, apperr.KindStorage), "got %v", err)

	err = NewGateway(newTestStore(t, 64), DefaultKeys(), nil).SaveDecks(ctx, sampleDecks())
	assert.True(t, apperr.Is(err, apperr.KindQuota), "got %v", err)
}

func TestGateway_SaveEmptyList(t *testing.T) {
	kv := &MemoryKV{}
	g := NewGateway(kv, DefaultKeys(), nil)
	ctx := context.Background()

	require.NoError(t, g.SaveDecks(ctx, nil))
	raw, _, _ := kv.Get(ctx, DefaultDeckListKey)
	assert.Equal(t, "[]", raw)
}

func TestGateway_ViewSettings(t *testing.T) {
	kv := &MemoryKV{}
	g := NewGateway(kv, DefaultKeys(), nil)
	ctx := context.Background()

	got, err := g.LoadViewSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultViewSettings(), got)

	want := models.ViewSettings{ViewMode: models.ViewModeList, CardSize: models.CardSizeLarge, ActiveTab: models.TabSummary}
	require.NoError(t, g.SaveViewSettings(ctx, want))
	got, err = g.LoadViewSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Deck list and settings live under different keys.
	_, ok, _ := kv.Get(ctx, DefaultDeckListKey)
	assert.False(t, ok)
}

func TestGateway_ViewSettingsPerFieldDefaults(t *testing.T) {
	kv := &MemoryKV{}
	ctx := context.Background()
	kv.Set(ctx, DefaultViewSettingsKey, `{"viewMode":"list","cardSize":"huge"}`)

	got, err := NewGateway(kv, DefaultKeys(), nil).LoadViewSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ViewModeList, got.ViewMode)
	assert.Equal(t, models.CardSizeMedium, got.CardSize)
	assert.Equal(t, models.TabDeckList, got.ActiveTab)

	kv.Set(ctx, DefaultViewSettingsKey, `[]`)
	got, err = NewGateway(kv, DefaultKeys(), nil).LoadViewSettings(ctx)
	assert.True(t, apperr.Is(err, apperr.KindParse))
	assert.Equal(t, models.DefaultViewSettings(), got)
}
