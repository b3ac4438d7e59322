// Package paths provides centralized path handling for poolup.
// Every on-disk location — the sandboxed home, the pool of underlying
// toolchains, the named links into it, and the XDG config/state dirs —
// is derived here and nowhere else.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/poolup/poolup/pkg/errors"
)

// Environment variable names
const (
	// EnvHomeDir overrides the poolup home directory
	EnvHomeDir = "POOLUP_HOME"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Layout constants.
// IMPORTANT: these define the pool's on-disk structure and are NOT
// user-configurable; changing them breaks existing pools.
const (
	// DefaultHomeDir is the default poolup home, relative to the cwd
	DefaultHomeDir = "home"

	// PoolupDirName is the directory name for poolup-specific files
	PoolupDirName = "poolup"

	// RustupHomeDir holds the pool of underlying toolchains
	RustupHomeDir = "rustup_home"

	// LinksHomeDir holds the named links into the pool
	LinksHomeDir = "poolup_home"

	// CargoHomeDir is the cargo home used by the bootstrapped installer
	CargoHomeDir = "cargo_home"

	// ToolchainsDir is the subdirectory holding toolchains in both homes
	ToolchainsDir = "toolchains"

	// RustupBinName is the bootstrapped installer binary
	RustupBinName = "rustup"

	// GCLockName is the pool-scoped GC lock file
	GCLockName = "pool_gc.lock"

	// InFlightSuffix marks an uncommitted link transaction
	InFlightSuffix = ".tmp"

	// ConfigFileName is the optional user configuration file
	ConfigFileName = "poolup.toml"
)

// Paths provides centralized path management for poolup
type Paths interface {
	// HomeDir is the sandboxed root everything else lives under.
	HomeDir() string

	// RustupHome is the installer-facing home containing the pool.
	RustupHome() string

	// LinksHome is the user-facing home containing the named links.
	LinksHome() string

	// CargoHome is the cargo home handed to installer invocations.
	CargoHome() string

	// RustupBin is the bootstrapped installer binary.
	RustupBin() string

	// CargoBinDir holds the installer shim link.
	CargoBinDir() string

	// PoolDir is the pool root: one directory per underlying toolchain.
	PoolDir() string

	// LinksDir is the links root: one soft reference per toolchain name.
	LinksDir() string

	// GCLockPath is the pool-scoped lock file guarding scan+remove.
	GCLockPath() string

	// EntryPath is the pool entry directory for an identity.
	EntryPath(id string) string

	// LinkPath is the link location for a human-chosen name.
	LinkPath(name string) string

	// InFlightPath is the staged marker for a link, the suffix appended
	// (never substituted: link names may contain dots).
	InFlightPath(linkPath string) string

	// ConfigFilePath is the optional user config file under XDG config.
	ConfigFilePath() string
}

type paths struct {
	homeDir   string
	xdgConfig string
}

// New creates a Paths instance rooted at homeDir. An empty homeDir is
// resolved from POOLUP_HOME, falling back to ./home like the upstream
// sandbox layout.
func New(homeDir string) (Paths, error) {
	p := &paths{}

	if homeDir == "" {
		if env := os.Getenv(EnvHomeDir); env != "" {
			homeDir = env
		} else {
			homeDir = DefaultHomeDir
		}
	}
	homeDir = expandHome(homeDir)

	absHome, err := filepath.Abs(homeDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for home dir")
	}
	p.homeDir = absHome
	p.xdgConfig = filepath.Join(xdg.ConfigHome, PoolupDirName)

	return p, nil
}

// expandHome expands ~ to the user's home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	// ~something (not the user's home)
	return path
}

func (p *paths) HomeDir() string {
	return p.homeDir
}

func (p *paths) RustupHome() string {
	return filepath.Join(p.homeDir, RustupHomeDir)
}

func (p *paths) LinksHome() string {
	return filepath.Join(p.homeDir, LinksHomeDir)
}

func (p *paths) CargoHome() string {
	return filepath.Join(p.homeDir, CargoHomeDir)
}

func (p *paths) RustupBin() string {
	return filepath.Join(p.homeDir, RustupBinName)
}

func (p *paths) CargoBinDir() string {
	return filepath.Join(p.CargoHome(), "bin")
}

func (p *paths) PoolDir() string {
	return filepath.Join(p.RustupHome(), ToolchainsDir)
}

func (p *paths) LinksDir() string {
	return filepath.Join(p.LinksHome(), ToolchainsDir)
}

func (p *paths) GCLockPath() string {
	return filepath.Join(p.PoolDir(), GCLockName)
}

func (p *paths) EntryPath(id string) string {
	return filepath.Join(p.PoolDir(), id)
}

func (p *paths) LinkPath(name string) string {
	return filepath.Join(p.LinksDir(), name)
}

func (p *paths) InFlightPath(linkPath string) string {
	return linkPath + InFlightSuffix
}

func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.xdgConfig, ConfigFileName)
}
