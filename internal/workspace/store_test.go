package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestLoadDocMissingReturnsEmpty(t *testing.T) {
	store := newTestStore(t)
	doc := store.LoadDoc("does_not_exist")
	require.NotNil(t, doc)
	assert.Empty(t, doc)
}

func TestLoadDocCorruptReturnsEmpty(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.DocPath(DocPhysique), []byte("{oops"), 0o644))
	doc := store.LoadDoc(DocPhysique)
	require.NotNil(t, doc)
	assert.Empty(t, doc)
}

func TestSaveDocRoundtrip(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveDoc(DocPhysique, map[string]any{
		"needs": map[string]any{"hunger": 0.4},
	}))
	doc := store.LoadDoc(DocPhysique)
	needs, ok := doc["needs"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 0.4, needs["hunger"].(float64), 1e-9)
}

func TestSaveRawDocRejectsInvalidJSON(t *testing.T) {
	store := newTestStore(t)
	require.Error(t, store.SaveRawDoc(DocSocial, []byte("not json")))
	require.NoError(t, store.SaveRawDoc(DocSocial, []byte(`{"entities": []}`)))
}

func TestLineLogAppendAndTail(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendLine(LogChanges, map[string]any{"seq": i}))
	}
	all := store.ReadLines(LogChanges)
	require.Len(t, all, 5)

	tail := store.TailLines(LogChanges, 2)
	require.Len(t, tail, 2)
	assert.InDelta(t, 3, tail[0]["seq"].(float64), 1e-9)
	assert.InDelta(t, 4, tail[1]["seq"].(float64), 1e-9)
}

func TestReadLinesSkipsCorruptLines(t *testing.T) {
	store := newTestStore(t)
	raw := "{\"ok\": 1}\nnot json\n{\"ok\": 2}\n"
	require.NoError(t, os.WriteFile(store.LogPath(LogDreams), []byte(raw), 0o644))
	lines := store.ReadLines(LogDreams)
	require.Len(t, lines, 2)
}

func TestWriteLinesRewritesLog(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AppendLine(LogProposals, map[string]any{"id": "p1"}))
	require.NoError(t, store.AppendLine(LogProposals, map[string]any{"id": "p2"}))
	require.NoError(t, store.WriteLines(LogProposals, []map[string]any{{"id": "p2"}}))

	lines := store.ReadLines(LogProposals)
	require.Len(t, lines, 1)
	assert.Equal(t, "p2", lines[0]["id"])
}

func TestNextEntityID(t *testing.T) {
	store := newTestStore(t)
	assert.Equal(t, "npc_1", store.NextEntityID())

	require.NoError(t, store.SaveDoc(DocSocial, map[string]any{
		"entities": []any{
			map[string]any{"id": "npc_2"},
			map[string]any{"id": "npc_7"},
			map[string]any{"id": "custom"},
		},
	}))
	assert.Equal(t, "npc_8", store.NextEntityID())
}

func TestAddSocialEntity(t *testing.T) {
	store := newTestStore(t)
	entity, err := store.AddSocialEntity(map[string]any{"name": "Mira"})
	require.NoError(t, err)
	assert.Equal(t, "npc_1", entity["id"])
	assert.InDelta(t, defaultBond, entity["bond"].(float64), 1e-9)

	second, err := store.AddSocialEntity(map[string]any{"name": "Toma", "bond": 80.0})
	require.NoError(t, err)
	assert.Equal(t, "npc_2", second["id"])
	assert.InDelta(t, 80.0, second["bond"].(float64), 1e-9)

	doc := store.LoadDoc(DocSocial)
	entities, ok := doc["entities"].([]any)
	require.True(t, ok)
	assert.Len(t, entities, 2)
}

func TestListDir(t *testing.T) {
	store := newTestStore(t)
	assert.Nil(t, store.ListDir("backups"))

	dir := filepath.Join(store.Root(), "backups")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0o644))

	assert.Equal(t, []string{"a.json", "b.json"}, store.ListDir("backups"))
}
