// Package config loads NoteBoard settings from defaults, an optional YAML
// file, a .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFile   = "noteboard.yaml"
	DefaultAPIURL = "https://noteboard-backend.onrender.com"

	EnvAPIURL    = "NOTEBOARD_API_URL"
	EnvDiscover  = "NOTEBOARD_DISCOVER"
	EnvWidth     = "NOTEBOARD_WIDTH"
	EnvHeight    = "NOTEBOARD_HEIGHT"
	EnvTimeout   = "NOTEBOARD_TIMEOUT"
	EnvRateLimit = "NOTEBOARD_RATE_LIMIT"
	EnvRadius    = "NOTEBOARD_BRUSH_RADIUS"
	EnvLogLevel  = "LOG_LEVEL"
)

// Config holds every runtime setting.
type Config struct {
	// APIURL is the drawing store root. Ignored when Discover finds a backend.
	APIURL   string `yaml:"api_url"`
	Discover bool   `yaml:"discover"`

	// Width and Height pin the surface and therefore the export resolution.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	BrushRadius float64       `yaml:"brush_radius"`
	Timeout     time.Duration `yaml:"timeout"`
	RateLimit   float64       `yaml:"rate_limit"`
	LogLevel    string        `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:      DefaultAPIURL,
		Width:       1024,
		Height:      600,
		BrushRadius: 5,
		Timeout:     15 * time.Second,
		RateLimit:   5,
		LogLevel:    "warn",
	}
}

// Load builds the configuration. An explicit path must exist; with an empty
// path DefaultFile is read when present. The result is not validated, so
// command line overrides can still be applied; call Validate afterwards.
func Load(path string) (Config, error) {
	cfg := Default()

	file, explicit := path, path != ""
	if !explicit {
		file = DefaultFile
	}
	if err := cfg.readFile(file); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup(EnvAPIURL); ok {
		c.APIURL = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = strings.ToLower(v)
	}

	var errs []error
	if v, ok := lookup(EnvDiscover); ok {
		b, err := strconv.ParseBool(v)
		errs = append(errs, envErr(EnvDiscover, err))
		c.Discover = b
	}
	if v, ok := lookup(EnvWidth); ok {
		n, err := strconv.Atoi(v)
		errs = append(errs, envErr(EnvWidth, err))
		c.Width = n
	}
	if v, ok := lookup(EnvHeight); ok {
		n, err := strconv.Atoi(v)
		errs = append(errs, envErr(EnvHeight, err))
		c.Height = n
	}
	if v, ok := lookup(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		errs = append(errs, envErr(EnvTimeout, err))
		c.Timeout = d
	}
	if v, ok := lookup(EnvRateLimit); ok {
		f, err := strconv.ParseFloat(v, 64)
		errs = append(errs, envErr(EnvRateLimit, err))
		c.RateLimit = f
	}
	if v, ok := lookup(EnvRadius); ok {
		f, err := strconv.ParseFloat(v, 64)
		errs = append(errs, envErr(EnvRadius, err))
		c.BrushRadius = f
	}
	return errors.Join(errs...)
}

// Validate rejects settings the whiteboard cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("surface size %dx%d must be positive", c.Width, c.Height))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout %s must be positive", c.Timeout))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("rate limit %g must be positive", c.RateLimit))
	}
	if c.BrushRadius <= 0 {
		errs = append(errs, fmt.Errorf("brush radius %g must be positive", c.BrushRadius))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.APIURL == "" {
		if !c.Discover {
			errs = append(errs, errors.New("api url is required unless discovery is enabled"))
		}
	} else if u, err := url.Parse(c.APIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("api url %q must be an http(s) url", c.APIURL))
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level, falling back to warn.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func envErr(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", key, err)
}
