package yaml_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/preview"
	"github.com/fwojciec/preview/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
debounce: 350ms
mode: hidden
strict: true
addr: "127.0.0.1:8080"
hashtags: false
tag_base: /t/
log_level: debug
`)
	cfg, err := yaml.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 350*time.Millisecond, cfg.Debounce)
	assert.Equal(t, preview.ModeHidden, cfg.PreviewMode())
	assert.True(t, cfg.Strict)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.False(t, cfg.Hashtags)
	assert.Equal(t, "/t/", cfg.TagBase)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Left out of the file.
	assert.True(t, cfg.Sanitize)
	assert.True(t, cfg.Math)
}

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{"", "# nothing here\n", "debounce: 0s\n"} {
		cfg, err := yaml.Parse([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, preview.DefaultConfig(), cfg, "document %q", doc)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{"unknown key", "colour: red\n", "field colour not found"},
		{"bad duration", "debounce: soon\n", "parse"},
		{"bad mode", "mode: fullscreen\n", `mode "fullscreen"`},
		{"bad level", "log_level: loud\n", `log_level "loud"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := yaml.Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := yaml.LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
