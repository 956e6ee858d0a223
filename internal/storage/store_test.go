package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// backends opens every Store implementation over a fresh temp dir
func backends() map[string]func(t *testing.T, dir string) Store {
	open := func(driver string) func(t *testing.T, dir string) Store {
		return func(t *testing.T, dir string) Store {
			t.Helper()
			s, err := Open(driver, dir, "", nil)
			require.NoError(t, err)
			return s
		}
	}
	return map[string]func(t *testing.T, dir string) Store{
		DriverJSON: open(DriverJSON),
		DriverSQL:  open(DriverSQL),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t, t.TempDir())
			defer s.Close()

			in := []record{{Name: "b", Count: 2}, {Name: "a", Count: 1}}
			require.NoError(t, s.Save(KeyShortenedURLs, in))

			out, err := Get(s, KeyShortenedURLs, []record{})
			require.NoError(t, err)
			assert.Equal(t, in, out)

			// Overwrite replaces the prior value
			require.NoError(t, s.Save(KeyShortenedURLs, []record{{Name: "c"}}))
			out, err = Get(s, KeyShortenedURLs, []record{})
			require.NoError(t, err)
			assert.Equal(t, []record{{Name: "c"}}, out)
		})
	}
}

func TestStoreAbsentKeyYieldsDefault(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t, t.TempDir())
			defer s.Close()

			def := &record{Name: "default"}
			got, err := Get(s, KeyAuthDetails, def)
			require.NoError(t, err)
			assert.Same(t, def, got)
		})
	}
}

func TestStoreUndecodableValueYieldsDefault(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t, t.TempDir())
			defer s.Close()

			require.NoError(t, s.Save(KeyShortenedURLs, "not a list"))

			got, err := Get(s, KeyShortenedURLs, []record{})
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()

			s := open(t, dir)
			require.NoError(t, s.Save(KeyAuthDetails, record{Name: "kept", Count: 7}))
			require.NoError(t, s.Close())

			reopened := open(t, dir)
			defer reopened.Close()

			got, err := Get(reopened, KeyAuthDetails, record{})
			require.NoError(t, err)
			assert.Equal(t, record{Name: "kept", Count: 7}, got)
		})
	}
}

func TestStoreNullValue(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t, t.TempDir())
			defer s.Close()

			require.NoError(t, s.Save(KeyAuthDetails, nil))

			got, err := Get[*record](s, KeyAuthDetails, nil)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestJSONStorageCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shorty.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s, err := NewJSONStorage(path, nil)
	require.NoError(t, err)
	defer s.Close()

	got, err := Get(s, KeyShortenedURLs, []record{})
	require.NoError(t, err)
	assert.Empty(t, got)

	// The next save rewrites a valid file
	require.NoError(t, s.Save(KeyShortenedURLs, []record{{Name: "x"}}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"shortenedUrls"`)
}

func TestJSONStorageReloadsExternalWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shorty.json")

	s, err := NewJSONStorage(path, nil)
	require.NoError(t, err)
	defer s.Close()
	if s.watcher == nil {
		t.Skip("fsnotify unavailable")
	}

	require.NoError(t, os.WriteFile(path, []byte(`{"authDetails":{"name":"other tab","count":3}}`), 0644))

	assert.Eventually(t, func() bool {
		got, err := Get(s, KeyAuthDetails, record{})
		return err == nil && got.Name == "other tab"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("redis", t.TempDir(), "", nil)
	assert.Error(t, err)
}
