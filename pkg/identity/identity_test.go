package identity_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolup/poolup/pkg/errors"
	"github.com/poolup/poolup/pkg/filesystem"
	"github.com/poolup/poolup/pkg/identity"
)

func TestIDDeterminism(t *testing.T) {
	a := identity.Toolchain{
		RustVersion: "1.81.0 (eeb90cda1 2024-09-04)",
		Components:  []string{"rustc-x", "cargo-x", "rust-std-x"},
	}
	b := identity.Toolchain{
		RustVersion: "1.81.0 (eeb90cda1 2024-09-04)",
		// Different insertion order, plus a duplicate.
		Components: []string{"cargo-x", "rust-std-x", "rustc-x", "cargo-x"},
	}

	assert.Equal(t, a.ID(), b.ID())
	assert.Equal(t, a.ID(), a.ID())
}

func TestIDSensitivity(t *testing.T) {
	base := identity.Toolchain{
		RustVersion: "1.81.0",
		Components:  []string{"rustc-x", "cargo-x"},
	}

	otherVersion := identity.Toolchain{RustVersion: "1.82.0", Components: base.Components}
	assert.NotEqual(t, base.ID(), otherVersion.ID())

	otherComponents := identity.Toolchain{RustVersion: base.RustVersion, Components: []string{"rustc-x"}}
	assert.NotEqual(t, base.ID(), otherComponents.ID())

	// Splitting differently must not collide: {"ab","c"} vs {"a","bc"}.
	split1 := identity.Toolchain{RustVersion: "1.81.0", Components: []string{"ab", "c"}}
	split2 := identity.Toolchain{RustVersion: "1.81.0", Components: []string{"a", "bc"}}
	assert.NotEqual(t, split1.ID(), split2.ID())
}

func TestIDFormat(t *testing.T) {
	tests := []struct {
		version string
		prefix  string
	}{
		{"1.81.0", "1.81.0"},
		{"1.81.0 (eeb90cda1 2024-09-04)", "1.81.0"},
		{"beta-2024", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			tc := identity.Toolchain{RustVersion: tt.version, Components: []string{"rustc-x"}}
			id := tc.ID()

			parts := strings.Split(id, "-")
			require.GreaterOrEqual(t, len(parts), 3)
			hashes := parts[len(parts)-2:]
			prefix := strings.Join(parts[:len(parts)-2], "-")

			assert.Equal(t, tt.prefix, prefix)
			for _, h := range hashes {
				assert.Len(t, h, identity.EncodedWidth)
			}
		})
	}
}

func TestWithComponents(t *testing.T) {
	base := identity.Toolchain{
		RustVersion: "1.81.0",
		Components:  []string{"rustc-x", "cargo-x"},
	}

	added := base.WithComponents([]string{"clippy-x"}, false)
	assert.Equal(t, []string{"cargo-x", "clippy-x", "rustc-x"}, added.CanonicalComponents())
	assert.Equal(t, base.RustVersion, added.RustVersion)
	// The source set is untouched.
	assert.Equal(t, []string{"rustc-x", "cargo-x"}, base.Components)

	removed := added.WithComponents([]string{"clippy-x"}, true)
	assert.Equal(t, base.ID(), removed.ID(), "add then remove must round-trip to the original identity")

	// Removing an absent component is a set no-op.
	same := base.WithComponents([]string{"miri-x"}, true)
	assert.Equal(t, base.ID(), same.ID())
}

func TestHasComponent(t *testing.T) {
	tc := identity.Toolchain{Components: []string{"rustc-x", "cargo-x"}}
	assert.True(t, tc.HasComponent("cargo-x"))
	assert.False(t, tc.HasComponent("clippy-x"))
}

func TestFromDir(t *testing.T) {
	fs := filesystem.NewAferoFS(afero.NewMemMapFs())
	dir := "/pool/some-entry"

	manifest := fmt.Sprintf("[pkg.rust]\nversion = %q\n", "1.81.0 (eeb90cda1 2024-09-04)")
	require.NoError(t, fs.MkdirAll(dir+"/lib/rustlib", 0755))
	require.NoError(t, fs.WriteFile(dir+"/"+identity.ChannelManifestSubpath, []byte(manifest), 0644))
	require.NoError(t, fs.WriteFile(dir+"/"+identity.ComponentsSubpath, []byte("cargo-x\nrustc-x\n\n"), 0644))

	tc, err := identity.FromDir(fs, dir)
	require.NoError(t, err)

	assert.Equal(t, "1.81.0 (eeb90cda1 2024-09-04)", tc.RustVersion)
	assert.Equal(t, []string{"cargo-x", "rustc-x"}, tc.CanonicalComponents())
	assert.True(t, strings.HasPrefix(tc.ID(), "1.81.0-"))
}

func TestFromDirMissingState(t *testing.T) {
	fs := filesystem.NewAferoFS(afero.NewMemMapFs())

	_, err := identity.FromDir(fs, "/pool/not-there")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrEntryCorrupt))
}

func TestVersionFromManifest(t *testing.T) {
	version, err := identity.VersionFromManifest([]byte("[pkg.rust]\nversion = \"1.81.0\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "1.81.0", version)

	_, err = identity.VersionFromManifest([]byte("[pkg.rust]\nname = \"rust\"\n"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestParse))

	_, err = identity.VersionFromManifest([]byte("not toml ["))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestParse))
}
