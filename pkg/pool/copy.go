package pool

import (
	"io/fs"
	"path/filepath"

	"github.com/poolup/poolup/pkg/errors"
	"github.com/poolup/poolup/pkg/types"
)

// copyDirAll recursively copies src to dst, preserving file modes and
// reproducing symlinks verbatim. Toolchain directories contain plenty
// of intra-tree symlinks, so following them would both bloat the clone
// and break relative targets.
func copyDirAll(fsys types.FS, src, dst string, perm fs.FileMode) error {
	if err := fsys.MkdirAll(dst, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to create %s", dst)
	}

	entries, err := fsys.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", src)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, err := fsys.Lstat(srcPath)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", srcPath)
		}

		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := fsys.Readlink(srcPath)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to read link %s", srcPath)
			}
			if err := fsys.Symlink(target, dstPath); err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to copy link %s", srcPath)
			}

		case info.IsDir():
			if err := copyDirAll(fsys, srcPath, dstPath, info.Mode().Perm()); err != nil {
				return err
			}

		default:
			data, err := fsys.ReadFile(srcPath)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", srcPath)
			}
			if err := fsys.WriteFile(dstPath, data, info.Mode().Perm()); err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to write %s", dstPath)
			}
		}
	}
	return nil
}
