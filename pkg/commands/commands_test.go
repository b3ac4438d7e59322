package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolup/poolup/pkg/errors"
	"github.com/poolup/poolup/pkg/filesystem"
	"github.com/poolup/poolup/pkg/identity"
	"github.com/poolup/poolup/pkg/paths"
	"github.com/poolup/poolup/pkg/platform"
	"github.com/poolup/poolup/pkg/pool"
	"github.com/poolup/poolup/pkg/testutil"
)

func toolchain181() *identity.Toolchain {
	return &identity.Toolchain{
		RustVersion: "1.81.0 (eeb90cda1 2024-09-04)",
		Components:  testutil.Qualify("cargo", "rust-std", "rustc"),
	}
}

func toolchain182() *identity.Toolchain {
	return &identity.Toolchain{
		RustVersion: "1.82.0 (f6e511eec 2024-10-15)",
		Components:  testutil.Qualify("cargo", "rust-std", "rustc"),
	}
}

func newTestCtx(t *testing.T) (*Ctx, *testutil.FakeInstaller, *testutil.FakeResolver) {
	t.Helper()

	pth, err := paths.New(t.TempDir())
	require.NoError(t, err)

	fs := filesystem.NewOS()
	require.NoError(t, fs.MkdirAll(pth.PoolDir(), 0755))
	require.NoError(t, fs.MkdirAll(pth.LinksDir(), 0755))

	installer := testutil.NewFakeInstaller(fs, pth)
	resolver := &testutil.FakeResolver{Channels: map[string]*identity.Toolchain{}}

	ctx := &Ctx{
		Paths:     pth,
		FS:        fs,
		Installer: installer,
		Resolver:  resolver,
		Pool:      pool.New(fs, pth, installer),
	}
	return ctx, installer, resolver
}

// registerChannel wires a channel into both fakes: the resolver
// answers for it and the installer can materialize it from its
// qualified source name.
func registerChannel(installer *testutil.FakeInstaller, resolver *testutil.FakeResolver, channel string, tc *identity.Toolchain) {
	resolver.Channels[channel] = tc
	installer.Sources[platform.QualifyWithTarget(channel)] = tc
}

func TestAddCreatesLinkAndEntry(t *testing.T) {
	ctx, installer, resolver := newTestCtx(t)
	tc := toolchain181()
	registerChannel(installer, resolver, "1.81.0", tc)

	require.NoError(t, Add(ctx, "1.81.0", ""))

	target, err := ctx.Pool.ResolveLink(platform.QualifyWithTarget("1.81.0"))
	require.NoError(t, err)
	assert.Equal(t, tc.ID(), target.ID)
	assert.Len(t, installer.Installs, 1)
}

func TestAddSharesUnderlyingEntry(t *testing.T) {
	ctx, installer, resolver := newTestCtx(t)
	tc := toolchain181()
	registerChannel(installer, resolver, "1.81.0", tc)

	require.NoError(t, Add(ctx, "1.81.0", ""))
	// A channel name installed from the same source joins the entry.
	require.NoError(t, Add(ctx, "stable", "1.81.0"))

	a, err := ctx.Pool.ResolveLink(platform.QualifyWithTarget("1.81.0"))
	require.NoError(t, err)
	b, err := ctx.Pool.ResolveLink(platform.QualifyWithTarget("stable"))
	require.NoError(t, err)
	assert.Equal(t, a.Path, b.Path)
	assert.Len(t, installer.Installs, 1)
}

func TestAddReplacesExistingLink(t *testing.T) {
	ctx, installer, resolver := newTestCtx(t)
	old := toolchain181()
	registerChannel(installer, resolver, "stable", old)
	require.NoError(t, Add(ctx, "stable", ""))

	// The channel moved on; re-adding picks up the new release and
	// collects the now-unreferenced old entry.
	newer := toolchain182()
	registerChannel(installer, resolver, "stable", newer)
	require.NoError(t, Add(ctx, "stable", ""))

	target, err := ctx.Pool.ResolveLink(platform.QualifyWithTarget("stable"))
	require.NoError(t, err)
	assert.Equal(t, newer.ID(), target.ID)
	assert.False(t, ctx.Pool.EntryExists(old.ID()))
}

func TestAddUnknownChannel(t *testing.T) {
	ctx, _, _ := newTestCtx(t)

	err := Add(ctx, "nightly", "")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestFetch))

	_, err = ctx.Pool.ResolveLink(platform.QualifyWithTarget("nightly"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrLinkNotFound))
}

func TestRemoveCollectsEntry(t *testing.T) {
	ctx, installer, resolver := newTestCtx(t)
	tc := toolchain181()
	registerChannel(installer, resolver, "1.81.0", tc)
	require.NoError(t, Add(ctx, "1.81.0", ""))

	require.NoError(t, Remove(ctx, "1.81.0"))

	_, err := ctx.Pool.ResolveLink(platform.QualifyWithTarget("1.81.0"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrLinkNotFound))
	assert.False(t, ctx.Pool.EntryExists(tc.ID()))
}

func TestRemoveKeepsSharedEntry(t *testing.T) {
	ctx, installer, resolver := newTestCtx(t)
	tc := toolchain181()
	registerChannel(installer, resolver, "1.81.0", tc)
	require.NoError(t, Add(ctx, "1.81.0", ""))
	require.NoError(t, Add(ctx, "stable", "1.81.0"))

	require.NoError(t, Remove(ctx, "stable"))

	assert.True(t, ctx.Pool.EntryExists(tc.ID()))
	_, err := ctx.Pool.ResolveLink(platform.QualifyWithTarget("1.81.0"))
	assert.NoError(t, err)
}

func TestComponentRoundTrip(t *testing.T) {
	ctx, installer, resolver := newTestCtx(t)
	tc := toolchain181()
	registerChannel(installer, resolver, "1.81.0", tc)
	require.NoError(t, Add(ctx, "1.81.0", ""))

	baseID, err := ID(ctx, "1.81.0")
	require.NoError(t, err)

	require.NoError(t, CompAdd(ctx, "1.81.0", []string{"clippy"}))
	withClippy, err := ID(ctx, "1.81.0")
	require.NoError(t, err)
	assert.NotEqual(t, baseID, withClippy)

	require.NoError(t, CompRm(ctx, "1.81.0", []string{"clippy"}))
	roundTripped, err := ID(ctx, "1.81.0")
	require.NoError(t, err)
	assert.Equal(t, baseID, roundTripped)
}

func TestIDMatchesIDChan(t *testing.T) {
	ctx, installer, resolver := newTestCtx(t)
	tc := toolchain181()
	registerChannel(installer, resolver, "1.81.0", tc)
	require.NoError(t, Add(ctx, "1.81.0", ""))

	fromDisk, err := ID(ctx, "1.81.0")
	require.NoError(t, err)
	fromRemote, err := IDChan(ctx, "1.81.0", nil)
	require.NoError(t, err)
	assert.Equal(t, fromRemote, fromDisk)
}

func TestIDChanExplicitComponents(t *testing.T) {
	ctx, installer, resolver := newTestCtx(t)
	registerChannel(installer, resolver, "1.81.0", toolchain181())

	full, err := IDChan(ctx, "1.81.0", nil)
	require.NoError(t, err)
	cargoOnly, err := IDChan(ctx, "1.81.0", []string{"cargo"})
	require.NoError(t, err)
	assert.NotEqual(t, full, cargoOnly)
}

func TestGCSweepsOrphans(t *testing.T) {
	ctx, installer, resolver := newTestCtx(t)
	tc := toolchain181()
	registerChannel(installer, resolver, "1.81.0", tc)
	require.NoError(t, Add(ctx, "1.81.0", ""))

	orphan := toolchain182()
	require.NoError(t, testutil.WriteEntry(ctx.FS, ctx.Paths.EntryPath(orphan.ID()), orphan))

	require.NoError(t, GC(ctx))

	assert.True(t, ctx.Pool.EntryExists(tc.ID()))
	assert.False(t, ctx.Pool.EntryExists(orphan.ID()))
}

func TestNuke(t *testing.T) {
	ctx, installer, resolver := newTestCtx(t)
	tc := toolchain181()
	registerChannel(installer, resolver, "1.81.0", tc)
	require.NoError(t, Add(ctx, "1.81.0", ""))

	gitkeep := filepath.Join(ctx.Paths.HomeDir(), ".gitkeep")
	require.NoError(t, ctx.FS.WriteFile(gitkeep, nil, 0644))

	require.NoError(t, Nuke(ctx))

	entries, err := ctx.FS.ReadDir(ctx.Paths.HomeDir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".gitkeep", entries[0].Name())
}
