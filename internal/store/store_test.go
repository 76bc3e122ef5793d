package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltsoft/stitch/internal/content"
	"github.com/quiltsoft/stitch/internal/resolve"
	"github.com/quiltsoft/stitch/internal/value"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func decodeTestDocument(t *testing.T) (*content.Document, *resolve.Report) {
	t.Helper()
	data := []byte(`{
		"total": 2, "skip": 0, "limit": 100,
		"items": [
			{
				"sys": {"id": "e1", "type": "Entry", "locale": "en-US", "contentType": {"sys": {"id": "post"}}},
				"fields": {
					"title": "Hello",
					"hero": {"sys": {"type": "Link", "linkType": "Asset", "id": "a1"}}
				}
			},
			{
				"sys": {"id": "a1", "type": "Asset", "locale": "en-US"},
				"fields": {
					"title": "Cat",
					"file": {"url": "//img/cat.png", "fileName": "cat.png", "contentType": "image/png", "details": {"size": 10}}
				}
			}
		]
	}`)
	dc := content.NewDecodeContext(resolve.NewEngine(), nil, "en-US")
	doc, report, err := content.DecodeDocument(data, dc)
	require.NoError(t, err)
	return doc, report
}

func TestOpen_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshots.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, s2.Close())
}

func TestWriteSnapshot_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	doc, report := decodeTestDocument(t)

	token := NewRunToken()
	run, err := s.WriteSnapshot(ctx, token, "testdata/doc.json", doc, report)
	require.NoError(t, err)
	assert.Equal(t, token, run.Token)
	assert.Equal(t, 1, run.EntryCount)
	assert.Equal(t, 1, run.AssetCount)
	assert.Equal(t, 0, run.Unresolved)

	got, err := s.ReadRun(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "testdata/doc.json", got.Source)
	assert.NotEmpty(t, got.CreatedAt)

	entities, err := s.ReadEntities(ctx, token)
	require.NoError(t, err)
	require.Len(t, entities, 2)

	// Decode order: assets before entries.
	asset := entities[0]
	assert.Equal(t, "Asset", asset.Kind)
	assert.Equal(t, "a1", asset.ID)
	file, ok := asset.Fields["file"].(value.FileMeta)
	require.True(t, ok, "stored canonical fields re-decode through the domain types")
	assert.Equal(t, "cat.png", file.FileName)

	entry := entities[1]
	assert.Equal(t, "Entry", entry.Kind)
	assert.Equal(t, "post", entry.ContentType)
	assert.Equal(t, "en-US", entry.Locale)
	link, ok := entry.Fields["hero"].(value.Link)
	require.True(t, ok, "stored link placeholders survive the round trip")
	assert.Equal(t, "a1", link.TargetID)
}

func TestWriteSnapshot_UnresolvedCountPersisted(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	data := []byte(`{
		"total": 1,
		"items": [{
			"sys": {"id": "e1", "type": "Entry", "contentType": {"sys": {"id": "post"}}},
			"fields": {"author": {"sys": {"type": "Link", "linkType": "Entry", "id": "ghost"}}}
		}]
	}`)
	dc := content.NewDecodeContext(resolve.NewEngine(), nil, "")
	doc, report, err := content.DecodeDocument(data, dc)
	require.NoError(t, err)

	run, err := s.WriteSnapshot(ctx, NewRunToken(), "doc.json", doc, report)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Unresolved)
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	doc, report := decodeTestDocument(t)

	first := NewRunToken()
	second := NewRunToken()
	_, err := s.WriteSnapshot(ctx, first, "one.json", doc, report)
	require.NoError(t, err)
	_, err = s.WriteSnapshot(ctx, second, "two.json", doc, report)
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].Token, "UUIDv7 tokens list newest first")
	assert.Equal(t, first, runs[1].Token)
}

func TestListRuns_EmptyStore(t *testing.T) {
	s := openTestStore(t)
	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NotNil(t, runs, "empty slice, not nil")
}

func TestNewRunToken_Sortable(t *testing.T) {
	a := NewRunToken()
	b := NewRunToken()
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b, "UUIDv7 tokens sort by creation time")
}
