// Package pool implements the deduplicated toolchain pool: the
// link/pool data model, the staged-rename transaction protocol that
// binds a named link to a pool entry, the lock-guarded mark-and-sweep
// garbage collector, and the clone-and-edit component mutator.
//
// Pool entries are directories named by their content-derived identity
// (see pkg/identity) and are immutable once a link references them;
// links are relative symlinks living in their own root. Many links may
// share one entry, which is the whole point.
package pool

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/poolup/poolup/pkg/errors"
	"github.com/poolup/poolup/pkg/logging"
	"github.com/poolup/poolup/pkg/paths"
	"github.com/poolup/poolup/pkg/types"
)

// Pool coordinates every mutation of the toolchain pool.
type Pool struct {
	fs        types.FS
	paths     paths.Paths
	installer types.Installer

	lockTimeout time.Duration
	lockPoll    time.Duration

	logger zerolog.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithLockBudget sets the GC lock acquisition budget: total wait and
// poll interval between attempts.
func WithLockBudget(timeout, poll time.Duration) Option {
	return func(p *Pool) {
		if timeout > 0 {
			p.lockTimeout = timeout
		}
		if poll > 0 {
			p.lockPoll = poll
		}
	}
}

// New creates a Pool over the given filesystem and layout, delegating
// destructive entry removal and entry materialization to installer.
func New(fs types.FS, pth paths.Paths, installer types.Installer, opts ...Option) *Pool {
	p := &Pool{
		fs:          fs,
		paths:       pth,
		installer:   installer,
		lockTimeout: 3 * time.Second,
		lockPoll:    50 * time.Millisecond,
		logger:      logging.GetLogger("pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Target is a resolved link target.
type Target struct {
	// Path is the absolute pool entry path.
	Path string

	// ID is the entry's identity (its directory name).
	ID string
}

// EntryExists reports whether the pool entry for id is present.
func (p *Pool) EntryExists(id string) bool {
	_, err := p.fs.Stat(p.paths.EntryPath(id))
	return err == nil
}

// ResolveLink resolves a link name to its pool entry. A missing link
// is ErrLinkNotFound; a link whose target directory is gone is
// ErrLinkBroken (a corrupted pool, since completed operations never
// leave dangling links).
func (p *Pool) ResolveLink(name string) (*Target, error) {
	target, err := p.readLinkTarget(name)
	if err != nil {
		return nil, err
	}
	if _, err := p.fs.Stat(target.Path); err != nil {
		return nil, errors.Wrapf(err, errors.ErrLinkBroken,
			"link %s points at missing pool entry %s", name, target.ID)
	}
	return target, nil
}

// readLinkTarget reads a link without checking that the target still
// exists. Relative targets resolve against the links directory.
func (p *Pool) readLinkTarget(name string) (*Target, error) {
	linkPath := p.paths.LinkPath(name)
	raw, err := p.fs.Readlink(linkPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrLinkNotFound, "no toolchain link named %s", name)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read link %s", name)
	}

	abs := raw
	if !filepath.IsAbs(raw) {
		abs = filepath.Join(filepath.Dir(linkPath), raw)
	}
	return &Target{Path: filepath.Clean(abs), ID: filepath.Base(abs)}, nil
}

// RemoveLink deletes the link and returns the identity it pointed at,
// for use as a GC candidate. The entry itself is untouched here.
func (p *Pool) RemoveLink(name string) (string, error) {
	target, err := p.readLinkTarget(name)
	if err != nil {
		return "", err
	}
	if err := p.fs.Remove(p.paths.LinkPath(name)); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to remove link %s", name)
	}
	return target.ID, nil
}

// EnsureEntry materializes the pool entry for id, installing from
// source if it is not already present. The installer lands the result
// under its own naming; the rename onto the identity path is what
// makes the entry addressable, and happens only once the install has
// fully completed.
func (p *Pool) EnsureEntry(id, source string) error {
	if p.EntryExists(id) {
		p.logger.Info().Str("id", id).Msg("toolchain already in pool, skipping install")
		return nil
	}

	if err := p.fs.MkdirAll(p.paths.PoolDir(), 0755); err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "failed to create pool directory")
	}

	if err := p.installer.Install(source); err != nil {
		return err
	}

	installed := p.paths.EntryPath(source)
	if err := p.fs.Rename(installed, p.paths.EntryPath(id)); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess,
			"failed to move installed toolchain %s into the pool as %s", source, id)
	}
	return nil
}
