// Package identity derives the pool's addressing key: a deterministic
// string computed from a toolchain's rust version and installed
// component set. Two toolchains get the same identity exactly when the
// version strings are byte-equal and the component sets are equal as
// sets, so equal identities share one pool entry.
package identity

import (
	"encoding/binary"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/poolup/poolup/pkg/errors"
)

// Fixed relative paths inside a pool entry carrying its
// identity-relevant state.
const (
	// ChannelManifestSubpath is the installed channel manifest; its
	// pkg.rust.version value is the toolchain's version string.
	ChannelManifestSubpath = "lib/rustlib/multirust-channel-manifest.toml"

	// ComponentsSubpath is the flat newline-delimited list of installed
	// component names.
	ComponentsSubpath = "lib/rustlib/components"
)

// UnknownPrefix is used when the version string has no leading
// digit/dot run to extract.
const UnknownPrefix = "unknown"

// Toolchain is the identity-relevant content of a toolchain: the value
// of pkg.rust.version in the channel manifest, and the installed
// component names.
type Toolchain struct {
	RustVersion string
	Components  []string
}

// readFS is the filesystem capability FromDir needs.
type readFS interface {
	ReadFile(name string) ([]byte, error)
}

// FromDir reads a Toolchain from an installed toolchain directory.
func FromDir(fs readFS, dir string) (*Toolchain, error) {
	manifest, err := fs.ReadFile(filepath.Join(dir, ChannelManifestSubpath))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrEntryCorrupt, "reading channel manifest in %s", dir)
	}
	version, err := VersionFromManifest(manifest)
	if err != nil {
		return nil, err
	}

	raw, err := fs.ReadFile(filepath.Join(dir, ComponentsSubpath))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrEntryCorrupt, "reading components list in %s", dir)
	}

	var components []string
	for _, line := range strings.Split(string(raw), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			components = append(components, line)
		}
	}

	return &Toolchain{RustVersion: version, Components: components}, nil
}

// ID returns the toolchain's identity:
//
//	{prefix}-{hash(version)}-{hash(components)}
//
// where prefix is the human-readable leading digit/dot run of the
// version and both hashes are width-13 encoded 64-bit values. The same
// canonicalization runs at install time and lookup time; any drift
// would silently break deduplication.
func (t *Toolchain) ID() string {
	var b strings.Builder
	b.WriteString(versionPrefix(t.RustVersion))
	b.WriteByte('-')
	b.WriteString(EncodeHash(xxhash.Sum64String(t.RustVersion)))
	b.WriteByte('-')
	b.WriteString(EncodeHash(hashComponents(t.Components)))
	return b.String()
}

// CanonicalComponents returns the component set sorted with duplicates
// collapsed.
func (t *Toolchain) CanonicalComponents() []string {
	seen := make(map[string]struct{}, len(t.Components))
	out := make([]string, 0, len(t.Components))
	for _, c := range t.Components {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// HasComponent reports whether the component set contains name.
func (t *Toolchain) HasComponent(name string) bool {
	for _, c := range t.Components {
		if c == name {
			return true
		}
	}
	return false
}

// WithComponents returns a copy with the delta applied as a set union
// (remove=false) or difference (remove=true). The version is unchanged.
func (t *Toolchain) WithComponents(delta []string, remove bool) *Toolchain {
	next := &Toolchain{RustVersion: t.RustVersion}
	if remove {
		drop := make(map[string]struct{}, len(delta))
		for _, d := range delta {
			drop[d] = struct{}{}
		}
		for _, c := range t.CanonicalComponents() {
			if _, gone := drop[c]; !gone {
				next.Components = append(next.Components, c)
			}
		}
		return next
	}

	next.Components = append(next.Components, t.Components...)
	next.Components = append(next.Components, delta...)
	next.Components = next.CanonicalComponents()
	return next
}

// hashComponents hashes the canonicalized component set. Each element
// is length-prefixed so different splits can never produce the same
// byte stream.
func hashComponents(components []string) uint64 {
	t := Toolchain{Components: components}

	d := xxhash.New()
	var lenBuf [binary.MaxVarintLen64]byte
	for _, c := range t.CanonicalComponents() {
		n := binary.PutUvarint(lenBuf[:], uint64(len(c)))
		_, _ = d.Write(lenBuf[:n])
		_, _ = d.WriteString(c)
	}
	return d.Sum64()
}

// versionPrefix extracts the leading run of digit/'.' characters from
// the version string, e.g. "1.81.0 (eeb90cda1 2024-09-04)" -> "1.81.0".
func versionPrefix(version string) string {
	end := 0
	for end < len(version) {
		ch := version[end]
		if (ch < '0' || ch > '9') && ch != '.' {
			break
		}
		end++
	}
	if end == 0 {
		return UnknownPrefix
	}
	return version[:end]
}
