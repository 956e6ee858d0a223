package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	c, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, c.StorageDir)
	assert.Equal(t, "json", c.StorageDriver)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, "http://localhost:8080", c.BaseURL)
	assert.Equal(t, time.Second, c.RegistrationDelay)
}

func TestLoadGeneratesSessionSecretOnce(t *testing.T) {
	dir := t.TempDir()

	first, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, first.SessionSecret, 26)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), first.File)

	second, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, first.SessionSecret, second.SessionSecret)

	// Each config directory gets its own secret
	other, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionSecret, other.SessionSecret)

	// A configured secret is used as is and not written out
	envDir := t.TempDir()
	t.Setenv("SHORTY_SESSION_SECRET", "from-env")
	c, err := Load(envDir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.SessionSecret)
	assert.NoFileExists(t, filepath.Join(envDir, "config.yaml"))
}

func TestSetStorageDirKeepsGeneratedSecret(t *testing.T) {
	dir := t.TempDir()

	c, err := Load(dir)
	require.NoError(t, err)

	target := t.TempDir()
	_, err = SetStorageDir(dir, target)
	require.NoError(t, err)

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, target, reloaded.StorageDir)
	assert.Equal(t, c.SessionSecret, reloaded.SessionSecret)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	storageDir := filepath.Join(t.TempDir(), "data")
	content := "port: 9090\nstorage_driver: sql\nstorage_dir: " + storageDir + "\nnot_found_url: https://example.com/missing\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	t.Setenv("SHORTY_SESSION_SECRET", "from-env")
	t.Setenv("SHORTY_REGISTRATION_DELAY", "0s")

	c, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Port)
	assert.Equal(t, "sql", c.StorageDriver)
	assert.Equal(t, storageDir, c.StorageDir)
	assert.Equal(t, "http://localhost:9090", c.BaseURL)
	assert.Equal(t, "https://example.com/missing", c.NotFoundURL)
	assert.Equal(t, "from-env", c.SessionSecret)
	assert.Equal(t, time.Duration(0), c.RegistrationDelay)
	assert.DirExists(t, storageDir)
	assert.EqualValues(t, 9090, c.Settings()["port"])
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("SHORTY_PORT", "70000")
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestSetStorageDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "links")

	got, err := SetStorageDir(dir, target)
	require.NoError(t, err)
	assert.Equal(t, target, got)
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))

	// Overwrites an existing file too
	other := filepath.Join(t.TempDir(), "elsewhere")
	_, err = SetStorageDir(dir, other)
	require.NoError(t, err)

	c, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, other, c.StorageDir)
}
