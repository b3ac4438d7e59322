// Package config loads poolup's layered configuration: embedded
// defaults, then the optional user file under the XDG config dir, then
// POOLUP_* environment variables. Later layers win.
package config

import (
	_ "embed"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	poolerrors "github.com/poolup/poolup/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix is the prefix for configuration environment variables.
// Nesting uses a double underscore: POOLUP_RUSTUP__DIST_SERVER.
const EnvPrefix = "POOLUP_"

// Config is the typed view over the loaded configuration.
type Config struct {
	Rustup RustupConfig `koanf:"rustup"`
	GC     GCConfig     `koanf:"gc"`
}

// RustupConfig configures the external installer collaborator.
type RustupConfig struct {
	// Version is the pinned rustup-init release to bootstrap.
	Version string `koanf:"version"`

	// DistServer is the release server base URL.
	DistServer string `koanf:"dist_server"`

	// Profile selects the default component set of a channel manifest.
	Profile string `koanf:"profile"`
}

// GCConfig configures the pool lock acquisition budget.
type GCConfig struct {
	LockTimeout string `koanf:"lock_timeout"`
	LockPoll    string `koanf:"lock_poll"`
}

// LockTimeoutDuration returns the parsed lock acquisition budget.
func (g GCConfig) LockTimeoutDuration() time.Duration {
	return parseDurationOr(g.LockTimeout, 3*time.Second)
}

// LockPollDuration returns the parsed poll interval between attempts.
func (g GCConfig) LockPollDuration() time.Duration {
	return parseDurationOr(g.LockPoll, 50*time.Millisecond)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// rawBytesProvider implements a koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Load builds the configuration from defaults, the optional user file
// at configFile (skipped when missing), and the environment.
func Load(configFile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, poolerrors.Wrap(err, poolerrors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User config file, if present
	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
				return nil, poolerrors.Wrapf(err, poolerrors.ErrConfigParse, "failed to load config from %s", configFile)
			}
		}
	}

	// 3. Environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", envToKey), nil); err != nil {
		return nil, poolerrors.Wrap(err, poolerrors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, poolerrors.Wrap(err, poolerrors.ErrConfigParse, "failed to unmarshal config")
	}
	return &cfg, nil
}

// envToKey maps POOLUP_RUSTUP__DIST_SERVER to rustup.dist_server.
func envToKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}
