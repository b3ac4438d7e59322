package commands

import (
	"path/filepath"

	"github.com/poolup/poolup/pkg/errors"
	"github.com/poolup/poolup/pkg/logging"
)

// gitkeepName survives Nuke so a checked-in sandbox directory keeps
// existing in version control.
const gitkeepName = ".gitkeep"

// Nuke deletes everything inside the poolup home: the rustup binary,
// both homes, all links and pool entries.
func Nuke(ctx *Ctx) error {
	logger := logging.GetLogger("commands.nuke")
	logger.Info().
		Str("home", ctx.Paths.HomeDir()).
		Msg("nuking poolup home")

	entries, err := ctx.FS.ReadDir(ctx.Paths.HomeDir())
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "failed to read poolup home")
	}

	for _, entry := range entries {
		if entry.Name() == gitkeepName {
			continue
		}
		path := filepath.Join(ctx.Paths.HomeDir(), entry.Name())
		if entry.IsDir() {
			err = ctx.FS.RemoveAll(path)
		} else {
			err = ctx.FS.Remove(path)
		}
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", path)
		}
	}
	return nil
}
