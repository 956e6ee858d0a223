package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkarpinos/shorty/internal/link"
	"github.com/bkarpinos/shorty/internal/storage"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRegistry(t *testing.T) (*Registry, storage.Store) {
	t.Helper()
	store, err := storage.NewJSONStorage(t.TempDir()+"/shorty.json", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return New(store, WithClock(func() time.Time { return t0 })), store
}

func TestCreateThenFind(t *testing.T) {
	r, _ := newRegistry(t)

	created, err := r.Create(link.Candidate{LongURL: "https://example.com/page", Shortcode: "abc123", Validity: 30})
	require.NoError(t, err)

	found, err := r.Find("abc123")
	require.NoError(t, err)
	assert.Equal(t, created, found)
	assert.Equal(t, "https://example.com/page", found.LongURL)
	assert.Equal(t, 30, found.Validity)
	assert.Equal(t, 0, found.Clicks)
	assert.True(t, found.CreatedAt.Equal(t0))
}

func TestFindMissing(t *testing.T) {
	r, _ := newRegistry(t)

	_, err := r.Find("nope")
	assert.ErrorIs(t, err, link.ErrNotFound)
}

func TestCreateDuplicateLeavesRegistryUnchanged(t *testing.T) {
	r, _ := newRegistry(t)

	_, err := r.Create(link.Candidate{LongURL: "https://a.example", Shortcode: "dup", Validity: 10})
	require.NoError(t, err)
	_, err = r.Create(link.Candidate{LongURL: "https://b.example", Shortcode: "other", Validity: 10})
	require.NoError(t, err)

	before, err := r.List()
	require.NoError(t, err)

	_, err = r.Create(link.Candidate{LongURL: "https://c.example", Shortcode: "dup", Validity: 99})
	assert.ErrorIs(t, err, link.ErrDuplicateShortcode)

	after, err := r.List()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestListMostRecentFirstAndIdempotent(t *testing.T) {
	r, _ := newRegistry(t)

	for _, code := range []string{"first", "second", "third"} {
		_, err := r.Create(link.Candidate{LongURL: "https://example.com/" + code, Shortcode: code, Validity: 5})
		require.NoError(t, err)
	}

	first, err := r.List()
	require.NoError(t, err)
	second, err := r.List()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, "third", first[0].Shortcode)
	assert.Equal(t, "second", first[1].Shortcode)
	assert.Equal(t, "first", first[2].Shortcode)
}

func TestRecordClick(t *testing.T) {
	r, store := newRegistry(t)

	_, err := r.Create(link.Candidate{LongURL: "https://example.com", Shortcode: "clicky", Validity: 5})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		l, err := r.RecordClick("clicky")
		require.NoError(t, err)
		assert.Equal(t, i, l.Clicks)
	}

	// Persisted, not just in memory
	reread := New(store)
	l, err := reread.Find("clicky")
	require.NoError(t, err)
	assert.Equal(t, 3, l.Clicks)

	_, err = r.RecordClick("missing")
	assert.ErrorIs(t, err, link.ErrNotFound)
}

func TestListReturnsCopies(t *testing.T) {
	r, _ := newRegistry(t)

	_, err := r.Create(link.Candidate{LongURL: "https://example.com", Shortcode: "own", Validity: 5})
	require.NoError(t, err)

	links, err := r.List()
	require.NoError(t, err)
	links[0].Clicks = 100

	l, err := r.Find("own")
	require.NoError(t, err)
	assert.Equal(t, 0, l.Clicks)
}

func TestShortcodes(t *testing.T) {
	r, _ := newRegistry(t)

	codes, err := r.Shortcodes()
	require.NoError(t, err)
	assert.Empty(t, codes)

	_, err = r.Create(link.Candidate{LongURL: "https://example.com", Shortcode: "one", Validity: 5})
	require.NoError(t, err)

	codes, err = r.Shortcodes()
	require.NoError(t, err)
	assert.Contains(t, codes, "one")
}

func TestCorruptSequenceReadsAsEmpty(t *testing.T) {
	r, store := newRegistry(t)
	require.NoError(t, store.Save(storage.KeyShortenedURLs, map[string]int{"broken": 1}))

	links, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, links)

	_, err = r.Create(link.Candidate{LongURL: "https://example.com", Shortcode: "fresh", Validity: 5})
	require.NoError(t, err)
}
