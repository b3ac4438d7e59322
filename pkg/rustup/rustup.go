// Package rustup wraps the pinned rustup binary poolup bootstraps into
// its sandbox. It implements the pool's Installer interface by shelling
// out with an explicit RUSTUP_HOME/CARGO_HOME, so the process
// environment is never mutated and the two homes (the pool-facing one
// and the link-facing one) can't bleed into each other.
package rustup

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/poolup/poolup/pkg/config"
	"github.com/poolup/poolup/pkg/errors"
	"github.com/poolup/poolup/pkg/logging"
	"github.com/poolup/poolup/pkg/paths"
	"github.com/poolup/poolup/pkg/types"
)

// commandTimeout bounds a single rustup invocation. Installs download
// full toolchains, so this is generous.
const commandTimeout = 15 * time.Minute

// Rustup drives the sandboxed rustup binary.
type Rustup struct {
	fs     types.FS
	paths  paths.Paths
	cfg    config.RustupConfig
	logger zerolog.Logger

	// runCmd is swapped out in tests to capture invocations.
	runCmd func(cmd *exec.Cmd) ([]byte, error)
}

var _ types.Installer = (*Rustup)(nil)

// New creates a Rustup bound to the sandbox layout in pth.
func New(fs types.FS, pth paths.Paths, cfg config.RustupConfig) *Rustup {
	return &Rustup{
		fs:     fs,
		paths:  pth,
		cfg:    cfg,
		logger: logging.GetLogger("rustup"),
		runCmd: func(cmd *exec.Cmd) ([]byte, error) { return cmd.CombinedOutput() },
	}
}

// Install installs the toolchain named by source into the pool home.
// The result lands at the pool directory under rustup's own name;
// relocating it onto an identity path is the caller's job.
func (r *Rustup) Install(source string) error {
	return r.run(r.paths.RustupHome(), "install", source)
}

// Uninstall removes the pool entry with the given on-disk name via
// rustup, so rustup's own bookkeeping stays consistent.
func (r *Rustup) Uninstall(name string) error {
	return r.run(r.paths.RustupHome(), "uninstall", name)
}

// EditComponents adds or removes components on a pool-home toolchain.
// Component names are passed through raw; rustup qualifies them with
// the host target itself.
func (r *Rustup) EditComponents(toolchain string, components []string, remove bool) error {
	verb := "add"
	if remove {
		verb = "remove"
	}
	args := append([]string{"component", verb, "--toolchain", toolchain}, components...)
	return r.run(r.paths.RustupHome(), args...)
}

// Run executes a rustup shim (cargo, rustc, ...) against the links
// home, so +name selectors resolve through poolup's links instead of
// the pool. Standard streams are inherited: this is the user-facing
// passthrough.
func (r *Rustup) Run(shim, toolchain string, args []string) error {
	if toolchain != "" {
		args = append([]string{"+" + toolchain}, args...)
	}

	cmd := exec.Command(r.paths.RustupBin(), args...)
	cmd.Env = append(os.Environ(),
		"RUSTUP_HOME="+r.paths.LinksHome(),
		"CARGO_HOME="+r.paths.CargoHome(),
		"RUSTUP_FORCE_ARG0="+shim,
	)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	r.logger.Debug().Str("shim", shim).Strs("args", args).Msg("running shim")
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, errors.ErrExternalTool, "shim %s failed", shim)
	}
	return nil
}

// run executes rustup with the given home and args, failing with the
// combined output attached when the exit status is non-zero.
func (r *Rustup) run(rustupHome string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.paths.RustupBin(), args...)
	cmd.Env = append(os.Environ(),
		"RUSTUP_HOME="+rustupHome,
		"CARGO_HOME="+r.paths.CargoHome(),
	)

	r.logger.Info().
		Str("rustup_home", rustupHome).
		Str("command", strings.Join(args, " ")).
		Msg("running rustup")

	output, err := r.runCmd(cmd)
	if err != nil {
		return errors.Wrapf(err, errors.ErrExternalTool,
			"rustup %s failed:\n%s", strings.Join(args, " "), strings.TrimSpace(string(output)))
	}
	return nil
}
