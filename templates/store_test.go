package templates

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Soypete/streambuddy/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	doc := `
templates:
  - game: valorant
    keywords: [" Crosshair ", ""]
    response: "cyan"
    priority: 3
  - keywords: [jadwal]
    response: "malam"
    active: false
`
	ts, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, ts, 2)

	assert.Equal(t, types.GameContext("valorant"), ts[0].Game)
	assert.Equal(t, []string{"crosshair"}, ts[0].Keywords)
	assert.True(t, ts[0].Active)
	assert.Equal(t, 0, ts[0].Position)

	assert.Equal(t, General, ts[1].Game)
	assert.False(t, ts[1].Active)
	assert.Equal(t, 1, ts[1].Position)
	assert.NotEqual(t, ts[0].ID, ts[1].ID)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "bad yaml", doc: "templates: [:"},
		{name: "no response", doc: "templates:\n  - keywords: [a]\n"},
		{name: "no keywords", doc: "templates:\n  - response: hi\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("templates:\n  - keywords: [seed]\n    response: di discord\n"), 0o600))

	ts, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, ts, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	store := NewStaticStore(Defaults())
	ts, err := store.ActiveTemplates(context.Background(), "mobile_legends")
	require.NoError(t, err)
	require.NotEmpty(t, ts)
	for i := 1; i < len(ts); i++ {
		assert.GreaterOrEqual(t, ts[i-1].Priority, ts[i].Priority)
	}
}

func TestStaticStore_SkipsInactive(t *testing.T) {
	store := NewStaticStore([]types.ResponseTemplate{
		{Game: "minecraft", Keywords: []string{"seed"}, Response: "a", Active: false},
		{Game: "minecraft", Keywords: []string{"seed"}, Response: "b", Active: true},
	})
	ts, err := store.ActiveTemplates(context.Background(), "minecraft")
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, "b", ts[0].Response)
}

func TestMemoryCache(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := NewMemoryCache(2, func() time.Time { return now })
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	v, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok, "entry expires at its ttl")

	require.NoError(t, c.Set(ctx, "b", "2", time.Hour))
	require.NoError(t, c.Set(ctx, "c", "3", time.Hour))
	require.NoError(t, c.Set(ctx, "d", "4", time.Hour))
	assert.Equal(t, 2, c.Len())
	_, ok, _ = c.Get(ctx, "b")
	assert.False(t, ok, "oldest entry is evicted")
}

func TestNewMemoryCache_InvalidSize(t *testing.T) {
	_, err := NewMemoryCache(0, nil)
	assert.Error(t, err)
}
