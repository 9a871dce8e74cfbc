// Package config loads tankview settings from a TOML file with environment
// overrides.
//
// The default location is ~/.config/tankview/config.toml. A missing default
// file is not an error; the built-in defaults apply. Environment variables
// override the file:
//
//	TANKVIEW_API_URL     api.url
//	TANKVIEW_REDIS_ADDR  redis.addr
//	TANKVIEW_MONGO_URI   cache.mongo_uri
package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/render/tank/layout"
	"github.com/stlplant/tankview/pkg/render/tank/sink"
)

// Environment variables read by [Load].
const (
	EnvAPIURL    = "TANKVIEW_API_URL"
	EnvRedisAddr = "TANKVIEW_REDIS_ADDR"
	EnvMongoURI  = "TANKVIEW_MONGO_URI"
)

// Store and cache backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the full settings tree.
type Config struct {
	ThemesFile string          `toml:"themes_file"`
	API        APIConfig       `toml:"api"`
	Render     RenderConfig    `toml:"render"`
	Selection  SelectionConfig `toml:"selection"`
	Cache      CacheConfig     `toml:"cache"`
	Redis      RedisConfig     `toml:"redis"`
	Server     ServerConfig    `toml:"server"`
}

type APIConfig struct {
	URL           string   `toml:"url"`
	Timeout       Duration `toml:"timeout"`
	RetryAttempts int      `toml:"retry_attempts"`
	RetryDelay    Duration `toml:"retry_delay"`
	CacheTTL      Duration `toml:"cache_ttl"`
}

type RenderConfig struct {
	Preset      string `toml:"preset"`
	Theme       string `toml:"theme"`
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	Format      string `toml:"format"`
	Grid        bool   `toml:"grid"`
	EditButtons bool   `toml:"edit_buttons"`
}

type SelectionConfig struct {
	Store string   `toml:"store"`
	Dir   string   `toml:"dir"`
	Key   string   `toml:"key"`
	TTL   Duration `toml:"ttl"`
}

type CacheConfig struct {
	Backend         string   `toml:"backend"`
	Dir             string   `toml:"dir"`
	TTL             Duration `toml:"ttl"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Duration is a time.Duration written as a Go duration string ("5s").
type Duration struct{ time.Duration }

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		API: APIConfig{
			URL:           "http://localhost:8000",
			Timeout:       Duration{30 * time.Second},
			RetryAttempts: 3,
			RetryDelay:    Duration{500 * time.Millisecond},
			CacheTTL:      Duration{time.Minute},
		},
		Render: RenderConfig{
			Preset:      layout.PresetDetailed,
			Width:       800,
			Height:      500,
			Format:      sink.FormatPNG,
			Grid:        true,
			EditButtons: true,
		},
		Selection: SelectionConfig{Store: BackendFile},
		Cache: CacheConfig{
			Backend:         BackendFile,
			TTL:             Duration{24 * time.Hour},
			MongoDatabase:   "tankview",
			MongoCollection: "cache",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
		},
	}
}

// DefaultPath returns ~/.config/tankview/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "get home dir")
	}
	return filepath.Join(home, ".config", "tankview", "config.toml"), nil
}

// Load reads the file at path over [Default], applies environment overrides
// and validates the result. An empty path reads [DefaultPath] if it exists.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	case os.IsNotExist(err):
		if explicit {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
	default:
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.API.URL = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Redis.Addr = v
	}
	if v, ok := lookup(EnvMongoURI); ok && v != "" {
		c.Cache.MongoURI = v
	}
}

var (
	selectionStores = []string{BackendMemory, BackendFile, BackendRedis}
	cacheBackends   = []string{BackendNone, BackendFile, BackendRedis, BackendMongo}
	renderFormats   = []string{
		sink.FormatPNG, sink.FormatJPEG, sink.FormatGIF, sink.FormatTIFF, sink.FormatBMP,
		sink.FormatSVG, sink.FormatJSON, sink.FormatMsgpack,
	}
)

// Validate checks values that cannot be repaired with defaults.
func (c Config) Validate() error {
	if c.API.URL != "" {
		if err := errors.ValidateURL(c.API.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "api.url")
		}
	}
	if c.API.RetryAttempts < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "api.retry_attempts must not be negative")
	}
	if _, err := layout.Preset(c.Render.Preset); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.preset")
	}
	if c.Render.Width < 0 || c.Render.Height < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render size must not be negative")
	}
	if !slices.Contains(renderFormats, sink.NormalizeFormat(c.Render.Format)) {
		return errors.New(errors.ErrCodeInvalidConfig, "render.format: unsupported format %q", c.Render.Format)
	}
	if !slices.Contains(selectionStores, c.Selection.Store) {
		return errors.New(errors.ErrCodeInvalidConfig, "selection.store must be one of %v, got %q", selectionStores, c.Selection.Store)
	}
	if !slices.Contains(cacheBackends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be one of %v, got %q", cacheBackends, c.Cache.Backend)
	}
	if c.Selection.Store == BackendRedis && c.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "selection.store = redis needs redis.addr or %s", EnvRedisAddr)
	}
	if c.Cache.Backend == BackendRedis && c.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend = redis needs redis.addr or %s", EnvRedisAddr)
	}
	if c.Cache.Backend == BackendMongo && c.Cache.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend = mongo needs cache.mongo_uri or %s", EnvMongoURI)
	}
	return nil
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	return enc.Encode(c)
}

// Init writes the default settings to path, or [DefaultPath] when empty, and
// returns the path written. An existing file is kept unless force is set.
func Init(path string, force bool) (string, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return "", err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil && !force {
		return path, errors.New(errors.ErrCodeConflict, "%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return path, errors.Wrap(errors.ErrCodeInternal, err, "create config dir")
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return path, errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	if err := Default().Write(f); err != nil {
		f.Close()
		return path, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return path, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return path, nil
}
