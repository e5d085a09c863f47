// Package config loads cvbuilder settings from defaults, an optional YAML
// file and CVBUILDER_ environment variables, in increasing priority.
//
// Nested keys map to environment variables by replacing dots with
// underscores: storage.driver is read from CVBUILDER_STORAGE_DRIVER.
package config

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	errorslib "github.com/goliatone/go-errors"
	"github.com/spf13/viper"

	cvpdf "github.com/goliatone/go-cvbuilder/adapters/pdf"
	"github.com/goliatone/go-cvbuilder/layout"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CVBUILDER"

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFS       = "fs"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// PDF engines.
const (
	EngineChromium    = "chromium"
	EngineWKHTMLTOPDF = "wkhtmltopdf"
)

// Page template executors.
const (
	ExecutorHTML   = "html"
	ExecutorPongo2 = "pongo2"
)

// Config holds cvbuilder settings.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Autosave  AutosaveConfig  `mapstructure:"autosave"`
	PDF       PDFConfig       `mapstructure:"pdf"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	BasePath     string        `mapstructure:"base_path"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"`
	AllowOrigins string        `mapstructure:"allow_origins"`
	AccessLog    bool          `mapstructure:"access_log"`
}

// StorageConfig selects the document persistence. Root is used by the fs
// driver, DSN by sqlite and postgres.
type StorageConfig struct {
	Driver     string `mapstructure:"driver"`
	Root       string `mapstructure:"root"`
	DSN        string `mapstructure:"dsn"`
	DocumentID string `mapstructure:"document_id"`
}

// AutosaveConfig holds debounce and retry settings.
type AutosaveConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Delay       time.Duration `mapstructure:"delay"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	MaxFailures int           `mapstructure:"max_failures"`
	SaveTimeout time.Duration `mapstructure:"save_timeout"`
}

// PDFConfig selects and tunes the HTML to PDF engine.
type PDFConfig struct {
	Engine       string            `mapstructure:"engine"`
	BrowserPath  string            `mapstructure:"browser_path"`
	Command      string            `mapstructure:"command"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	MaxHTMLBytes int64             `mapstructure:"max_html_bytes"`
	Page         cvpdf.PageOptions `mapstructure:"page"`
}

// TemplatesConfig selects the default layout and the page executor.
// PageDir, when set, is where the pongo2 executor loads cv.html from.
type TemplatesConfig struct {
	Default  string `mapstructure:"default"`
	Executor string `mapstructure:"executor"`
	PageDir  string `mapstructure:"page_dir"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			BasePath:     "/api/cv",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			BodyLimit:    1 << 20,
			AccessLog:    true,
		},
		Storage: StorageConfig{
			Driver:     DriverFS,
			Root:       "./data",
			DocumentID: "default",
		},
		Autosave: AutosaveConfig{
			Enabled:     true,
			Delay:       1500 * time.Millisecond,
			BaseDelay:   2 * time.Second,
			MaxDelay:    time.Minute,
			MaxFailures: 5,
			SaveTimeout: 10 * time.Second,
		},
		PDF: PDFConfig{
			Engine:       EngineChromium,
			Timeout:      30 * time.Second,
			MaxHTMLBytes: cvpdf.DefaultMaxHTMLBytes,
			Page: cvpdf.PageOptions{
				PageSize:     cvpdf.DefaultPageOptions.PageSize,
				MarginTop:    cvpdf.DefaultPageOptions.MarginTop,
				MarginBottom: cvpdf.DefaultPageOptions.MarginBottom,
				MarginLeft:   cvpdf.DefaultPageOptions.MarginLeft,
				MarginRight:  cvpdf.DefaultPageOptions.MarginRight,
			},
		},
		Templates: TemplatesConfig{
			Default:  layout.DefaultTemplate,
			Executor: ExecutorHTML,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Option customizes the viper instance before the config is decoded, for
// example to bind command line flags.
type Option func(v *viper.Viper) error

// Load reads the configuration. path may be empty.
func Load(path string, opts ...Option) (Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errorslib.Wrap(err, errorslib.CategoryBadInput, fmt.Sprintf("read config %s", path)).
				WithTextCode("CONFIG_READ")
		}
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(v); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errorslib.Wrap(err, errorslib.CategoryBadInput, "decode config").
			WithTextCode("CONFIG_DECODE")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides are seen by
// Unmarshal. Optional page flags are file-only.
func setDefaults(v *viper.Viper, d Config) {
	defaults := map[string]any{
		"server.addr":          d.Server.Addr,
		"server.base_path":     d.Server.BasePath,
		"server.read_timeout":  d.Server.ReadTimeout,
		"server.write_timeout": d.Server.WriteTimeout,
		"server.body_limit":    d.Server.BodyLimit,
		"server.allow_origins": d.Server.AllowOrigins,
		"server.access_log":    d.Server.AccessLog,

		"storage.driver":      d.Storage.Driver,
		"storage.root":        d.Storage.Root,
		"storage.dsn":         d.Storage.DSN,
		"storage.document_id": d.Storage.DocumentID,

		"autosave.enabled":      d.Autosave.Enabled,
		"autosave.delay":        d.Autosave.Delay,
		"autosave.base_delay":   d.Autosave.BaseDelay,
		"autosave.max_delay":    d.Autosave.MaxDelay,
		"autosave.max_failures": d.Autosave.MaxFailures,
		"autosave.save_timeout": d.Autosave.SaveTimeout,

		"pdf.engine":             d.PDF.Engine,
		"pdf.browser_path":       d.PDF.BrowserPath,
		"pdf.command":            d.PDF.Command,
		"pdf.timeout":            d.PDF.Timeout,
		"pdf.max_html_bytes":     d.PDF.MaxHTMLBytes,
		"pdf.page.page_size":     d.PDF.Page.PageSize,
		"pdf.page.margin_top":    d.PDF.Page.MarginTop,
		"pdf.page.margin_bottom": d.PDF.Page.MarginBottom,
		"pdf.page.margin_left":   d.PDF.Page.MarginLeft,
		"pdf.page.margin_right":  d.PDF.Page.MarginRight,
		"pdf.page.base_url":      d.PDF.Page.BaseURL,

		"templates.default":  d.Templates.Default,
		"templates.executor": d.Templates.Executor,
		"templates.page_dir": d.Templates.PageDir,

		"log.level": d.Log.Level,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Validate reports settings that cannot be served.
func (c Config) Validate() error {
	errs := validation.Errors{
		"server": validation.ValidateStruct(&c.Server,
			validation.Field(&c.Server.Addr, validation.Required),
			validation.Field(&c.Server.BodyLimit, validation.Min(0)),
		),
		"storage": validation.ValidateStruct(&c.Storage,
			validation.Field(&c.Storage.Driver, validation.Required,
				validation.In(DriverMemory, DriverFS, DriverSQLite, DriverPostgres)),
			validation.Field(&c.Storage.Root,
				validation.When(c.Storage.Driver == DriverFS, validation.Required)),
			validation.Field(&c.Storage.DSN,
				validation.When(c.Storage.Driver == DriverSQLite || c.Storage.Driver == DriverPostgres, validation.Required)),
			validation.Field(&c.Storage.DocumentID, validation.Required),
		),
		"autosave": validation.ValidateStruct(&c.Autosave,
			validation.Field(&c.Autosave.Delay, validation.Min(time.Duration(0))),
			validation.Field(&c.Autosave.BaseDelay, validation.Min(time.Duration(0))),
			validation.Field(&c.Autosave.MaxDelay, validation.Min(c.Autosave.BaseDelay)),
			validation.Field(&c.Autosave.MaxFailures, validation.Min(0)),
		),
		"pdf": validation.ValidateStruct(&c.PDF,
			validation.Field(&c.PDF.Engine, validation.Required, validation.In(EngineChromium, EngineWKHTMLTOPDF)),
			validation.Field(&c.PDF.Timeout, validation.Min(time.Duration(0))),
		),
		"templates": validation.ValidateStruct(&c.Templates,
			validation.Field(&c.Templates.Default, validation.Required, validation.By(knownTemplate)),
			validation.Field(&c.Templates.Executor, validation.Required, validation.In(ExecutorHTML, ExecutorPongo2)),
		),
		"log": validation.ValidateStruct(&c.Log,
			validation.Field(&c.Log.Level, validation.In("debug", "info", "warn", "error")),
		),
	}
	if err := errs.Filter(); err != nil {
		return errorslib.FromOzzoValidation(err, "invalid configuration").WithTextCode("CONFIG_INVALID")
	}
	if err := c.PDF.Page.Validate(); err != nil {
		return err
	}
	return nil
}

var templates = layout.NewRegistry()

func knownTemplate(value any) error {
	id, _ := value.(string)
	if id == "" {
		return nil
	}
	if _, err := templates.Resolve(id); err != nil {
		return validation.NewError("validation_template", fmt.Sprintf("unknown template %q", id))
	}
	return nil
}
