package types

import (
	"io/fs"

	"github.com/poolup/poolup/pkg/identity"
)

// FS is the filesystem interface required for pool operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Rename must be atomic within a directory; it is the commit
	// point of every link transaction.
	Rename(oldpath, newpath string) error

	// CreateExclusive creates name with the given content, failing
	// with fs.ErrExist if it already exists. Lock files depend on the
	// create being atomic.
	CreateExclusive(name string, data []byte, perm fs.FileMode) error

	Remove(name string) error
	RemoveAll(path string) error
}

// Installer is the external toolchain installer consumed by the pool.
// Implementations install under the pool's rustup home using the
// installer's own naming; relocating results onto identity-named paths
// is the pool's job.
type Installer interface {
	// Install ensures the toolchain named by source is installed under
	// the pool home, keyed by the installer's own naming.
	Install(source string) error

	// Uninstall removes the pool entry with the given on-disk name.
	Uninstall(name string) error

	// EditComponents adds or removes components on the working copy
	// named by toolchain (a directory name inside the pool).
	EditComponents(toolchain string, components []string, remove bool) error
}

// Resolver resolves a channel name to the identity inputs by fetching
// and parsing its release manifest.
type Resolver interface {
	// ResolveChannel returns the toolchain a channel currently points
	// at. A non-empty components list overrides the profile defaults.
	ResolveChannel(channel string, components []string) (*identity.Toolchain, error)
}
