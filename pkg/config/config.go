// Package config loads the fractalview configuration file.
//
// The file is TOML, by default at ~/.config/fractalview/config.toml. Every
// key is optional; missing keys keep the values from [Default]. Unknown keys
// are rejected so that typos do not pass silently.
//
//	[render]
//	width = 1024
//	max_iterations = 500
//	centre = "-0.75+0.1i"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/dimension"
	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/fractal"
	"github.com/matzehuels/fractalview/pkg/raster"
)

// Backend names.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the full configuration.
type Config struct {
	Render    Render    `toml:"render"`
	Colours   Colours   `toml:"colours"`
	Refine    Refine    `toml:"refine"`
	Dimension Dimension `toml:"dimension"`
	Cache     Cache     `toml:"cache"`
	Views     Views     `toml:"views"`
	Server    Server    `toml:"server"`
}

// Render holds the initial view and output settings.
type Render struct {
	Width         int         `toml:"width"`
	Height        int         `toml:"height"`
	MaxIterations int         `toml:"max_iterations"`
	Power         float64     `toml:"power"`
	ChunkSize     int         `toml:"chunk_size"`
	Zoom          float64     `toml:"zoom"`
	Centre        cplx.Number `toml:"centre"`
	Mode          string      `toml:"mode"` // "blend" or "palette"
	Histogram     bool        `toml:"histogram"`
}

// Colours is the colour scheme as hex strings.
type Colours struct {
	Outer string `toml:"outer"`
	Edge  string `toml:"edge"`
	Inner string `toml:"inner"`
}

// Refine configures successive refinement.
type Refine struct {
	StartStride int      `toml:"start_stride"`
	Delay       Duration `toml:"delay"`
}

// Dimension configures the box-counting estimator.
type Dimension struct {
	InitialSize int `toml:"initial_size"`
}

// Cache selects the artifact cache backend.
type Cache struct {
	Backend       string `toml:"backend"` // "none", "file" or "redis"
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// Views selects the saved-view store.
type Views struct {
	Backend  string `toml:"backend"` // "file" or "mongo"
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Server configures `fractalview serve`.
type Server struct {
	Addr string `toml:"addr"`
	// Origins are the host patterns allowed to open /ws/refine from a
	// browser, e.g. "localhost:*". Same-origin requests are always allowed.
	Origins []string `toml:"origins"`
}

// Duration is a time.Duration written as a string such as "50ms".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	outer, edge, inner := raster.DefaultScheme().Hex()
	return Config{
		Render: Render{
			Width:         800,
			Height:        600,
			MaxIterations: fractal.DefaultMaxIterations,
			Power:         fractal.DefaultPower,
			ChunkSize:     fractal.DefaultChunkSize,
			Zoom:          fractal.DefaultZoom,
			Mode:          "blend",
		},
		Colours:   Colours{Outer: outer, Edge: edge, Inner: inner},
		Refine:    Refine{StartStride: fractal.DefaultStartStride},
		Dimension: Dimension{InitialSize: dimension.DefaultInitialSize},
		Cache:     Cache{Backend: BackendFile},
		Views:     Views{Backend: BackendFile, Database: "fractalview"},
		Server:    Server{Addr: ":8080"},
	}
}

// Dir returns ~/.config/fractalview.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "fractalview"), nil
}

// Load reads the configuration at path over the defaults. An empty path
// reads the default location, where a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "load config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := errors.ValidateDimensions(c.Render.Width, c.Render.Height); err != nil {
		return err
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	if _, err := c.Scheme(); err != nil {
		return err
	}
	if err := errors.ValidatePowerOfTwo("refine start stride", c.Refine.StartStride, 1); err != nil {
		return err
	}
	if c.Refine.Delay.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidParams, "refine delay must not be negative")
	}
	if _, err := dimension.Sizes(c.Dimension.InitialSize); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidParams, "cache backend redis needs redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidParams, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Views.Backend {
	case BackendFile:
	case BackendMongo:
		if c.Views.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidParams, "view backend mongo needs mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidParams, "unknown view backend %q", c.Views.Backend)
	}
	return nil
}

// Params returns the initial Mandelbrot parameters.
func (c Config) Params() fractal.Params {
	p := fractal.DefaultParams()
	p.MaxIterations = c.Render.MaxIterations
	p.Power = c.Render.Power
	p.ChunkSize = c.Render.ChunkSize
	p.Zoom = c.Render.Zoom
	p.Centre = c.Render.Centre
	return p
}

// Scheme parses the configured colours.
func (c Config) Scheme() (raster.Scheme, error) {
	return raster.ParseScheme(c.Colours.Outer, c.Colours.Edge, c.Colours.Inner)
}

// Mode parses the configured colouring mode.
func (c Config) Mode() (raster.Mode, error) {
	return raster.ParseMode(c.Render.Mode)
}
