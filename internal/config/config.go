// Package config reads server settings from flags, falling back to
// environment variables and then to defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Addr          string
	AllowOrigins  string
	DataDir       string
	InMemory      bool
	MatchInterval time.Duration
	Clock         time.Duration
	LogLevel      string
}

func Default() Config {
	return Config{
		Addr:          ":3000",
		AllowOrigins:  "http://localhost:5173",
		DataDir:       "data",
		InMemory:      false,
		MatchInterval: time.Second,
		Clock:         10 * time.Minute,
		LogLevel:      "info",
	}
}

// Load parses args (without the program name). Each flag defaults to its
// CHESS_* environment variable when set.
func Load(args []string) (Config, error) {
	def := Default()
	fs := flag.NewFlagSet("chess-server", flag.ContinueOnError)

	cfg := Config{}
	fs.StringVar(&cfg.Addr, "addr", getenv("CHESS_ADDR", def.Addr), "listen address")
	fs.StringVar(&cfg.AllowOrigins, "allow-origins", getenv("CHESS_ALLOW_ORIGINS", def.AllowOrigins), "comma-separated CORS origins")
	fs.StringVar(&cfg.DataDir, "data-dir", getenv("CHESS_DATA_DIR", def.DataDir), "badger database directory")
	fs.BoolVar(&cfg.InMemory, "in-memory", getenb("CHESS_IN_MEMORY", def.InMemory), "keep games in memory only")
	fs.DurationVar(&cfg.MatchInterval, "match-interval", getenvDuration("CHESS_MATCH_INTERVAL", def.MatchInterval), "matchmaking poll interval")
	fs.DurationVar(&cfg.Clock, "clock", getenvDuration("CHESS_CLOCK", def.Clock), "initial time per side")
	fs.StringVar(&cfg.LogLevel, "log-level", getenv("CHESS_LOG_LEVEL", def.LogLevel), "trace, debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	if !c.InMemory && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("%w: data dir required unless in-memory", ErrInvalidConfig)
	}
	if c.MatchInterval <= 0 {
		return fmt.Errorf("%w: match interval must be positive", ErrInvalidConfig)
	}
	if c.Clock <= 0 {
		return fmt.Errorf("%w: clock must be positive", ErrInvalidConfig)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps LogLevel onto fiber's logger levels.
func (c Config) Level() (log.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info", "":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return log.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Warnf("ignoring %s=%q: not a duration", key, v)
	}
	return def
}
