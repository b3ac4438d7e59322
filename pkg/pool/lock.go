package pool

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/poolup/poolup/pkg/errors"
)

// acquireLock takes the pool-scoped GC lock by exclusively creating
// the lock file, polling until the configured budget runs out. The
// returned release func removes the lock file and must be called on
// every exit path.
func (p *Pool) acquireLock() (func(), error) {
	lockPath := p.paths.GCLockPath()
	contents := []byte(strconv.Itoa(os.Getpid()) + "\n")

	deadline := time.Now().Add(p.lockTimeout)
	for {
		err := p.fs.CreateExclusive(lockPath, contents, 0644)
		if err == nil {
			break
		}
		if !stderrors.Is(err, fs.ErrExist) {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to create gc lock")
		}
		if time.Now().After(deadline) {
			return nil, errors.Newf(errors.ErrLockContention,
				"gc lock %s held by another process after %s", lockPath, p.lockTimeout)
		}
		time.Sleep(p.lockPoll)
	}

	release := func() {
		if err := p.fs.Remove(lockPath); err != nil && !os.IsNotExist(err) {
			p.logger.Warn().Err(err).Str("lock", lockPath).Msg("failed to release gc lock")
		}
	}
	return release, nil
}
