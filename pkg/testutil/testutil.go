// Package testutil provides shared test doubles: a fake installer that
// fabricates pool entries on disk and a fake resolver with canned
// channel manifests. Both write the same identity-relevant files the
// real collaborators produce, so identity math runs unchanged in tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poolup/poolup/pkg/errors"
	"github.com/poolup/poolup/pkg/identity"
	"github.com/poolup/poolup/pkg/paths"
	"github.com/poolup/poolup/pkg/platform"
	"github.com/poolup/poolup/pkg/types"
)

// FakeInstaller fabricates pool entries instead of shelling out.
type FakeInstaller struct {
	FS    types.FS
	Paths paths.Paths

	// Sources maps an install source name to the toolchain it yields.
	Sources map[string]*identity.Toolchain

	Installs   []string
	Uninstalls []string
}

// NewFakeInstaller creates a FakeInstaller over the given layout.
func NewFakeInstaller(fs types.FS, pth paths.Paths) *FakeInstaller {
	return &FakeInstaller{
		FS:      fs,
		Paths:   pth,
		Sources: map[string]*identity.Toolchain{},
	}
}

func (f *FakeInstaller) Install(source string) error {
	tc, ok := f.Sources[source]
	if !ok {
		return fmt.Errorf("unknown install source %q", source)
	}
	f.Installs = append(f.Installs, source)
	return WriteEntry(f.FS, f.Paths.EntryPath(source), tc)
}

func (f *FakeInstaller) Uninstall(name string) error {
	f.Uninstalls = append(f.Uninstalls, name)
	return f.FS.RemoveAll(f.Paths.EntryPath(name))
}

// EditComponents rewrites the components file of a pool-home toolchain
// the way a real component add/remove would, target-qualifying raw
// names first.
func (f *FakeInstaller) EditComponents(toolchain string, components []string, remove bool) error {
	dir := f.Paths.EntryPath(toolchain)
	tc, err := identity.FromDir(f.FS, dir)
	if err != nil {
		return err
	}

	qualified := make([]string, len(components))
	for i, c := range components {
		qualified[i] = platform.QualifyWithTarget(c)
	}
	next := tc.WithComponents(qualified, remove)

	list := strings.Join(next.CanonicalComponents(), "\n") + "\n"
	return f.FS.WriteFile(filepath.Join(dir, identity.ComponentsSubpath), []byte(list), 0644)
}

// FakeResolver resolves channels from a canned map.
type FakeResolver struct {
	Channels map[string]*identity.Toolchain
}

func (f *FakeResolver) ResolveChannel(channel string, components []string) (*identity.Toolchain, error) {
	tc, ok := f.Channels[channel]
	if !ok {
		return nil, errors.Newf(errors.ErrManifestFetch, "no manifest for channel %s", channel)
	}

	resolved := &identity.Toolchain{RustVersion: tc.RustVersion, Components: tc.Components}
	if len(components) > 0 {
		resolved.Components = make([]string, len(components))
		for i, c := range components {
			resolved.Components[i] = platform.QualifyWithTarget(c)
		}
	}
	return resolved, nil
}

// WriteEntry fabricates an installed toolchain directory at dir: the
// channel manifest carrying the version and the flat components list.
func WriteEntry(fs types.FS, dir string, tc *identity.Toolchain) error {
	rustlib := filepath.Join(dir, "lib", "rustlib")
	if err := fs.MkdirAll(rustlib, 0755); err != nil {
		return err
	}
	manifest := fmt.Sprintf("[pkg.rust]\nversion = %q\n", tc.RustVersion)
	if err := fs.WriteFile(filepath.Join(dir, identity.ChannelManifestSubpath), []byte(manifest), 0644); err != nil {
		return err
	}
	list := strings.Join(tc.CanonicalComponents(), "\n") + "\n"
	return fs.WriteFile(filepath.Join(dir, identity.ComponentsSubpath), []byte(list), 0644)
}

// Qualify target-qualifies each name for the host platform.
func Qualify(names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = platform.QualifyWithTarget(n)
	}
	return out
}
