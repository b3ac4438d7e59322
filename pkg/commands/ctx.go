// Package commands implements poolup's operations: sandbox setup,
// adding and removing toolchain links, component mutation, shim
// passthrough, identity queries, garbage collection and teardown. Each
// operation is a function over a Ctx bundling the collaborators, so
// tests swap in fakes without touching the wiring.
package commands

import (
	"github.com/poolup/poolup/pkg/config"
	"github.com/poolup/poolup/pkg/filesystem"
	"github.com/poolup/poolup/pkg/manifest"
	"github.com/poolup/poolup/pkg/paths"
	"github.com/poolup/poolup/pkg/platform"
	"github.com/poolup/poolup/pkg/pool"
	"github.com/poolup/poolup/pkg/rustup"
	"github.com/poolup/poolup/pkg/types"
)

// Ctx bundles the collaborators every operation works against.
type Ctx struct {
	Paths     paths.Paths
	FS        types.FS
	Config    *config.Config
	Installer types.Installer
	Resolver  types.Resolver
	Pool      *pool.Pool

	// Rustup is the concrete installer, kept for the operations that
	// need more than the Installer interface (bootstrap, shims). Nil
	// when tests wire a fake installer.
	Rustup *rustup.Rustup
}

// NewCtx builds the production wiring rooted at homeDir (empty means
// the POOLUP_HOME / ./home default).
func NewCtx(homeDir string) (*Ctx, error) {
	pth, err := paths.New(homeDir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(pth.ConfigFilePath())
	if err != nil {
		return nil, err
	}

	fs := filesystem.NewOS()
	ru := rustup.New(fs, pth, cfg.Rustup)

	return &Ctx{
		Paths:     pth,
		FS:        fs,
		Config:    cfg,
		Installer: ru,
		Resolver:  manifest.NewResolver(cfg.Rustup.DistServer, cfg.Rustup.Profile, platform.BuildTarget()),
		Pool: pool.New(fs, pth, ru,
			pool.WithLockBudget(cfg.GC.LockTimeoutDuration(), cfg.GC.LockPollDuration())),
		Rustup: ru,
	}, nil
}
