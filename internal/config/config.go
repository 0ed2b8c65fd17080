// Package config reads process settings shared by the randomize and server
// commands from the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds process-level settings. Game settings live in the profile
// YAML under ConfigDir.
type Config struct {
	ConfigDir     string        `env:"RANDOMIZER_CONFIG_DIR"     envDefault:"configs"`
	DataDir       string        `env:"RANDOMIZER_DATA_DIR"       envDefault:"data"`
	Profile       string        `env:"RANDOMIZER_PROFILE"        envDefault:"default"`
	HTTPAddr      string        `env:"RANDOMIZER_HTTP_ADDR"      envDefault:":8080"`
	GRPCAddr      string        `env:"RANDOMIZER_GRPC_ADDR"      envDefault:":8081"`
	ArchivePath   string        `env:"RANDOMIZER_ARCHIVE_PATH"   envDefault:"runs.db"`
	WatchInterval time.Duration `env:"RANDOMIZER_WATCH_INTERVAL" envDefault:"2s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the environment configuration with defaults applied.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseFromArgs parses flags registered on fs against cfg's fields, so they
// win over the env values Load put there, and then checks the result.
func ParseFromArgs(cfg *Config, fs *flag.FlagSet, args []string) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate reports settings no command can run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ConfigDir) == "" {
		errs = append(errs, errors.New("config dir is required"))
	}
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data dir is required"))
	}
	if c.WatchInterval < 0 {
		errs = append(errs, fmt.Errorf("watch interval %s must not be negative", c.WatchInterval))
	}
	return errors.Join(errs...)
}

// BindCommon registers the flags every command shares. Call it after Load
// so env values become the flag defaults.
func (c *Config) BindCommon(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigDir, "config-dir", c.ConfigDir, "directory holding games/<profile>.yaml")
	fs.StringVar(&c.DataDir, "data-dir", c.DataDir, "directory holding the data tables")
	fs.StringVar(&c.Profile, "profile", c.Profile, "game profile name")
	fs.StringVar(&c.ArchivePath, "archive", c.ArchivePath, "sqlite run archive path (empty disables)")
}

// Exitf prints a formatted error and exits with status 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
