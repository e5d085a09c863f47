package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-cvbuilder/cv"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().Server, cfg.Server)
	assert.Equal(t, DriverFS, cfg.Storage.Driver)
	assert.Equal(t, "dublin", cfg.Templates.Default)
	assert.Equal(t, "A4", cfg.PDF.Page.PageSize)
	assert.Nil(t, cfg.PDF.Page.Landscape)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cvbuilder.yaml")
	yaml := `
server:
  addr: ":9090"
storage:
  driver: sqlite
  dsn: "file::memory:?cache=shared"
autosave:
  delay: 3s
pdf:
  engine: wkhtmltopdf
  page:
    landscape: true
    margin_top: 20mm
templates:
  default: cork
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CVBUILDER_SERVER_ADDR", ":7070")
	t.Setenv("CVBUILDER_AUTOSAVE_MAX_FAILURES", "9")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 3*time.Second, cfg.Autosave.Delay)
	assert.Equal(t, 9, cfg.Autosave.MaxFailures)
	assert.Equal(t, EngineWKHTMLTOPDF, cfg.PDF.Engine)
	require.NotNil(t, cfg.PDF.Page.Landscape)
	assert.True(t, *cfg.PDF.Page.Landscape)
	assert.Equal(t, "20mm", cfg.PDF.Page.MarginTop)
	assert.Equal(t, "12mm", cfg.PDF.Page.MarginBottom)
	assert.Equal(t, "cork", cfg.Templates.Default)
}

func TestLoadOptionOverrides(t *testing.T) {
	cfg, err := Load("", func(v *viper.Viper) error {
		v.Set("storage.driver", DriverMemory)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }},
		{"unknown engine", func(c *Config) { c.PDF.Engine = "prince" }},
		{"unknown template", func(c *Config) { c.Templates.Default = "galway" }},
		{"unknown executor", func(c *Config) { c.Templates.Executor = "jet" }},
		{"max below base delay", func(c *Config) { c.Autosave.MaxDelay = time.Second }},
		{"bad margin", func(c *Config) { c.PDF.Page.MarginTop = "wide" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, cv.KindValidation, cv.KindFromError(err))
		})
	}
	require.NoError(t, Defaults().Validate())
}
