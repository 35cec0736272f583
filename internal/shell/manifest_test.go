package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `
name: step-counter
version: v5
assets:
  - ./
  - ./index.html
  - ./manifest.json
  - ./icon-192.png
  - ./icon-512.png
  - ./output.css
  - /fonts/*.woff2
`

func TestParseManifestNormalizesAssets(t *testing.T) {
	m, err := ParseManifest([]byte(testManifest))
	require.NoError(t, err)

	assert.Equal(t, []string{"/", "/index.html", "/manifest.json", "/icon-192.png", "/icon-512.png", "/output.css"}, m.Precache())
	assert.True(t, m.Matches("/output.css"))
	assert.True(t, m.Matches("/fonts/inter.woff2"))
	assert.False(t, m.Matches("/fonts/sub/inter.woff2"))
	assert.False(t, m.Matches("/api/steps"))
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"./":           "/",
		".":            "/",
		"./index.html": "/index.html",
		"app.js":       "/app.js",
		"/already":     "/already",
		".well-known":  "/.well-known",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, NormalizePath(in))
		})
	}
}

func TestCacheNameTracksVersionAndAssets(t *testing.T) {
	base, err := ParseManifest([]byte("name: shell\nversion: v1\nassets: [/, /a.css]\n"))
	require.NoError(t, err)
	same, err := ParseManifest([]byte("name: shell\nversion: v1\nassets: [./, ./a.css]\n"))
	require.NoError(t, err)
	bumped, err := ParseManifest([]byte("name: shell\nversion: v2\nassets: [/, /a.css]\n"))
	require.NoError(t, err)
	grown, err := ParseManifest([]byte("name: shell\nversion: v1\nassets: [/, /a.css, /b.js]\n"))
	require.NoError(t, err)

	assert.Regexp(t, `^shell-v1-[0-9a-f]{8}$`, base.CacheName())
	assert.Equal(t, base.CacheName(), same.CacheName())
	assert.NotEqual(t, base.CacheName(), bumped.CacheName())
	assert.NotEqual(t, base.CacheName(), grown.CacheName())
}

func TestParseManifestRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"no name":    "assets: [/]\n",
		"no assets":  "name: shell\n",
		"slash name": "name: a/b\nassets: [/]\n",
		"bad yaml":   "name: [\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shell.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testManifest), 0o600))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "step-counter", m.Name)

	_, err = LoadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
