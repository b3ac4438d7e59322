package pool

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/poolup/poolup/pkg/errors"
	"github.com/poolup/poolup/pkg/paths"
)

// GC removes unreferenced pool entries. With a nil candidate list it
// sweeps the whole pool; with a non-nil list it considers only the
// named identities. A non-nil empty list is a fast no-op that never
// touches the lock.
//
// The scan-and-remove runs under the pool lock so two collectors can't
// race each other, and link transactions stage their markers before GC
// could observe the links directory without them. Removal is
// best-effort: one failed uninstall is logged and joined into the
// returned error but never stops the sweep.
func (p *Pool) GC(candidates []string) error {
	if candidates != nil && len(candidates) == 0 {
		return nil
	}

	release, err := p.acquireLock()
	if err != nil {
		return err
	}
	defer release()

	referenced, err := p.referencedEntries()
	if err != nil {
		return err
	}

	if candidates == nil {
		candidates, err = p.allEntries()
		if err != nil {
			return err
		}
	}

	var errs []error
	seen := make(map[string]struct{}, len(candidates))
	for _, id := range candidates {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if _, live := referenced[id]; live {
			continue
		}
		if !p.EntryExists(id) {
			continue
		}

		p.logger.Info().Str("id", id).Msg("removing unreferenced pool entry")
		if err := p.installer.Uninstall(id); err != nil {
			p.logger.Error().Err(err).Str("id", id).Msg("failed to remove pool entry")
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// referencedEntries scans the links directory and returns the set of
// identities something still points at. Both committed links and
// in-flight markers count: a marker is a reference the moment it
// exists, which is what makes stage-then-GC safe.
func (p *Pool) referencedEntries() (map[string]struct{}, error) {
	referenced := make(map[string]struct{})

	entries, err := p.fs.ReadDir(p.paths.LinksDir())
	if err != nil {
		if os.IsNotExist(err) {
			return referenced, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to scan links directory")
	}

	for _, entry := range entries {
		target, err := p.readLinkTarget(entry.Name())
		if err != nil {
			// An unreadable link can't be followed, so it can't keep an
			// entry alive either.
			p.logger.Warn().Err(err).Str("link", entry.Name()).Msg("skipping unreadable link during gc scan")
			continue
		}
		referenced[target.ID] = struct{}{}
	}
	return referenced, nil
}

// allEntries lists every pool entry identity, skipping the lock file
// and in-flight clones still being edited.
func (p *Pool) allEntries() ([]string, error) {
	entries, err := p.fs.ReadDir(p.paths.PoolDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to scan pool directory")
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if name == paths.GCLockName || strings.HasSuffix(name, paths.InFlightSuffix) {
			continue
		}
		ids = append(ids, name)
	}
	return ids, nil
}
