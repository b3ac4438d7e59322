package pool

import (
	"path/filepath"

	"github.com/poolup/poolup/pkg/errors"
	"github.com/poolup/poolup/pkg/identity"
	"github.com/poolup/poolup/pkg/platform"
)

// Mutate adds or removes components on the named toolchain without
// disturbing other links sharing its entry. The current entry is never
// edited in place: a clone is staged under an in-flight name, the
// component edit runs on the clone, the clone is renamed onto its new
// identity, and only then does the link flip over. The old entry is
// handed to GC and survives iff something else still references it.
func (p *Pool) Mutate(name string, delta []string, remove bool) error {
	delta = dedupe(delta)
	if len(delta) == 0 {
		p.logger.Info().Str("link", name).Msg("empty component delta, nothing to do")
		return nil
	}

	current, err := p.ResolveLink(name)
	if err != nil {
		return err
	}

	tc, err := identity.FromDir(p.fs, current.Path)
	if err != nil {
		return err
	}

	// Identity math runs on target-qualified names, matching how the
	// installer records components on disk.
	qualified := make([]string, len(delta))
	for i, c := range delta {
		qualified[i] = platform.QualifyWithTarget(c)
	}

	next := tc.WithComponents(qualified, remove)
	nextID := next.ID()
	if nextID == current.ID {
		p.logger.Info().Str("link", name).Str("id", nextID).Msg("component set unchanged")
		return nil
	}

	txn, err := p.Begin(name, nextID)
	if err != nil {
		return err
	}
	defer txn.Abort()

	if !p.EntryExists(nextID) {
		if err := p.cloneAndEdit(current.Path, nextID, delta, remove); err != nil {
			return err
		}
	}

	if err := txn.Commit(); err != nil {
		return err
	}

	if prev, ok := txn.Previous(); ok {
		return p.GC([]string{prev})
	}
	return nil
}

// cloneAndEdit builds the pool entry for id by copying src and running
// the component edit on the copy. The clone carries the in-flight
// suffix until the edit succeeds, so a crashed edit leaves debris the
// sweep ignores rather than a corrupt addressable entry.
func (p *Pool) cloneAndEdit(src, id string, delta []string, remove bool) error {
	final := p.paths.EntryPath(id)
	staging := p.paths.InFlightPath(final)

	// Debris from an earlier crashed edit.
	if err := p.fs.RemoveAll(staging); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to clear stale clone %s", staging)
	}

	if err := copyDirAll(p.fs, src, staging, 0755); err != nil {
		return err
	}

	if err := p.installer.EditComponents(filepath.Base(staging), delta, remove); err != nil {
		return err
	}

	if err := p.fs.Rename(staging, final); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to publish edited toolchain as %s", id)
	}
	return nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
