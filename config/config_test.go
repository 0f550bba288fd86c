package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope", DefaultFileName))
	require.NoError(t, err)

	assert.Equal(t, "https://api.pkghub.io", cfg.URL)
	assert.True(t, cfg.SSLVerify)
	assert.Empty(t, cfg.Token)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)

	want := &Config{
		URL:       "https://hub.internal.example.com",
		Token:     "tok-secret",
		SSLVerify: false,
	}
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSave_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, Save(path, &Config{URL: "https://api.pkghub.io", Token: "tok"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(),
		"config file may hold a token and must not be group or world readable")
}

func TestSave_NilConfig(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), DefaultFileName), nil)
	assert.Error(t, err)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("token: tok-only\nssl_verify: true\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-only", cfg.Token)
	assert.Equal(t, "https://api.pkghub.io", cfg.URL, "unset fields keep their defaults")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("url: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
