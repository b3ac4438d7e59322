package pool

import (
	"os"
	"path/filepath"

	"github.com/poolup/poolup/pkg/errors"
)

// Txn is a staged link transaction. Begin creates the in-flight marker
// (a symlink at <link>.tmp pointing at the new entry) and records the
// link's previous target; Commit atomically renames the marker onto
// the link. Until Commit, the visible link is untouched, so a crash
// leaves at worst a stale marker that the next transaction overwrites.
type Txn struct {
	pool *Pool

	name       string
	linkPath   string
	markerPath string

	prevID  string
	hasPrev bool

	committed bool
}

// Begin stages a transaction binding the link name to the pool entry
// id. The marker is created before anything else changes, and the
// current target (if any) is captured for post-commit GC.
func (p *Pool) Begin(name, id string) (*Txn, error) {
	linkPath := p.paths.LinkPath(name)
	markerPath := p.paths.InFlightPath(linkPath)

	if err := p.fs.MkdirAll(p.paths.LinksDir(), 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to create links directory")
	}

	// Relative target so the whole home directory stays relocatable.
	target, err := filepath.Rel(filepath.Dir(linkPath), p.paths.EntryPath(id))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "failed to relativize entry path for %s", id)
	}

	// A marker left behind by a crashed transaction is abandoned work;
	// replace it.
	if err := p.fs.Remove(markerPath); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrStaging, "failed to clear stale marker for %s", name)
	}
	if err := p.fs.Symlink(target, markerPath); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStaging, "failed to stage link %s", name)
	}

	t := &Txn{
		pool:       p,
		name:       name,
		linkPath:   linkPath,
		markerPath: markerPath,
	}
	if prev, err := p.readLinkTarget(name); err == nil {
		t.prevID = prev.ID
		t.hasPrev = true
	}

	p.logger.Debug().
		Str("link", name).
		Str("id", id).
		Str("prev", t.prevID).
		Msg("staged link transaction")
	return t, nil
}

// Commit publishes the staged link with a single atomic rename.
func (t *Txn) Commit() error {
	if err := t.pool.fs.Rename(t.markerPath, t.linkPath); err != nil {
		return errors.Wrapf(err, errors.ErrStaging, "failed to commit link %s", t.name)
	}
	t.committed = true
	return nil
}

// Abort removes the staged marker. Safe to defer alongside Commit: it
// is a no-op once the transaction has committed.
func (t *Txn) Abort() {
	if t.committed {
		return
	}
	if err := t.pool.fs.Remove(t.markerPath); err != nil && !os.IsNotExist(err) {
		t.pool.logger.Warn().Err(err).Str("link", t.name).Msg("failed to remove staged marker")
	}
}

// Previous returns the identity the link pointed at before this
// transaction, if it had one. The caller hands it to GC after Commit.
func (t *Txn) Previous() (string, bool) {
	return t.prevID, t.hasPrev
}
