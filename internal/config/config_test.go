package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nikomatsakis/borrowck/internal/config"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte(`
workers = 4
timeout = "1m30s"
log_level = "debug"
color = false
dump_regions = true
`))
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, 90*time.Second, cfg.Timeout)
	require.Equal(t, "debug", cfg.LogLevel)
	require.False(t, cfg.Color)
	require.True(t, cfg.DumpRegions)
	require.False(t, cfg.Debug)
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"negative workers", "workers = -1", "workers must not be negative"},
		{"bad timeout", `timeout = "soon"`, `timeout "soon"`},
		{"bad level", `log_level = "loud"`, `unknown log_level "loud"`},
		{"not toml", "workers = = 1", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.Parse([]byte(tt.doc))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("workers = 2\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Workers)

	_, err = config.Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}
