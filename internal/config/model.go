// internal/config/model.go
//
// Typed configuration model for stencil.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                           – dotenv values,
//   • `conf/global.yaml`                        – primary static file,
//   • `STENCIL_`-prefixed environment overrides – highest precedence.
//
// Defaults() seeds every field before unmarshal, so a YAML file only needs
// the keys it wants to change.  Validation happens immediately after
// unmarshal; the app fails fast on a bad mode, engine, or capacity.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • Durations accept Go syntax ("15s", "2m").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

import (
	"path/filepath"
	"time"

	"github.com/yanizio/stencil/internal/minify"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"min=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"min=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"  validate:"min=0"`
}

//
// Render section
//

// Render controls the template registry and the page cache.
type Render struct {
	Mode          string   `koanf:"mode"            validate:"oneof=development production"`
	TemplateDir   string   `koanf:"template_dir"    validate:"required"`
	Extensions    []string `koanf:"extensions"      validate:"min=1,dive,required"`
	Engine        string   `koanf:"engine"          validate:"oneof=html handlebars"`
	CacheCapacity int      `koanf:"cache_capacity"  validate:"min=0"`
	Minify        string   `koanf:"minify"          validate:"oneof=auto always never"`
	PromoteOnRead bool     `koanf:"promote_on_read"`
}

// Dev reports development mode: reload on, minify auto-off.
func (r Render) Dev() bool { return r.Mode == "development" }

// MinifyMode converts the validated string.
func (r Render) MinifyMode() minify.Mode {
	m, _ := minify.ParseMode(r.Minify)
	return m
}

//
// Log section
//

// Log configures the zap file sink.
type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	Dir   string `koanf:"dir"   validate:"required"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or STENCIL_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // STENCIL_ROOT or discovered parent
}

// Abs resolves p against Root unless it is already absolute.
func (p Paths) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Root, rel)
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP   HTTP   `koanf:"http"`
	Render Render `koanf:"render"`
	Log    Log    `koanf:"log"`
	Paths  Paths  `koanf:"-"` // not loaded from config files
}

// defaultExtensions is applied after unmarshal.  Seeding the slice before
// would let mapstructure merge a shorter YAML list into it element-wise.
var defaultExtensions = []string{".html", ".hbs"}

// Defaults returns the baseline every layer overrides.
func Defaults() Config {
	return Config{
		HTTP: HTTP{
			ListenAddr:   ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Render: Render{
			Mode:          "production",
			TemplateDir:   "templates",
			Engine:        "handlebars",
			CacheCapacity: 64,
			Minify:        "auto",
		},
		Log: Log{
			Level: "info",
			Dir:   "logs",
		},
	}
}
