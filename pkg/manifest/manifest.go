// Package manifest resolves a channel name to identity inputs by
// downloading and parsing the channel's release manifest.
package manifest

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/poolup/poolup/pkg/errors"
	"github.com/poolup/poolup/pkg/identity"
	"github.com/poolup/poolup/pkg/logging"
	"github.com/poolup/poolup/pkg/platform"
)

// maxManifestSize bounds the manifest download; release manifests are
// a few MB.
const maxManifestSize = 64 << 20

// URL returns the release manifest location for a channel:
// {dist_server}/dist/channel-rust-{channel}.toml
func URL(distServer, channel string) string {
	return fmt.Sprintf("%s/dist/channel-rust-%s.toml", distServer, channel)
}

// channelManifest is the slice of the release manifest resolution
// cares about: the rust version and the per-profile component lists.
type channelManifest struct {
	Pkg struct {
		Rust struct {
			Version string `toml:"version"`
		} `toml:"rust"`
	} `toml:"pkg"`
	Profiles map[string][]string `toml:"profiles"`
}

// Resolver resolves channels against a release server.
type Resolver struct {
	client     *http.Client
	distServer string
	profile    string
	target     string
}

// NewResolver creates a Resolver for the given release server. The
// profile selects the default component list of a channel; target
// qualifies component names the way the installer records them on disk.
func NewResolver(distServer, profile, target string) *Resolver {
	return &Resolver{
		client:     &http.Client{Timeout: 60 * time.Second},
		distServer: distServer,
		profile:    profile,
		target:     target,
	}
}

// ResolveChannel fetches the channel manifest and returns the
// toolchain it currently points at. A non-empty components list
// overrides the profile defaults; either way the names are qualified
// with the target triple to match the on-disk components file.
func (r *Resolver) ResolveChannel(channel string, components []string) (*identity.Toolchain, error) {
	logger := logging.GetLogger("manifest")
	url := URL(r.distServer, channel)
	logger.Debug().Str("url", url).Str("channel", channel).Msg("fetching channel manifest")

	body, err := r.fetch(url)
	if err != nil {
		return nil, err
	}

	var m channelManifest
	if err := toml.Unmarshal(body, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "invalid channel manifest for %s", channel)
	}
	if m.Pkg.Rust.Version == "" {
		return nil, errors.Newf(errors.ErrManifestParse, "channel manifest for %s is missing pkg.rust.version", channel)
	}

	if len(components) == 0 {
		profile, ok := m.Profiles[r.profile]
		if !ok {
			return nil, errors.Newf(errors.ErrManifestParse,
				"channel manifest for %s has no %q profile", channel, r.profile)
		}
		components = profile
	}

	qualified := make([]string, 0, len(components))
	for _, c := range components {
		qualified = append(qualified, qualifyComponent(c, r.target))
	}

	return &identity.Toolchain{
		RustVersion: m.Pkg.Rust.Version,
		Components:  qualified,
	}, nil
}

func (r *Resolver) fetch(url string) ([]byte, error) {
	resp, err := r.client.Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestFetch, "failed to fetch %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrManifestFetch, "fetching %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestFetch, "failed to read %s", url)
	}
	return body, nil
}

// qualifyComponent appends the target triple unless the name already
// carries it.
func qualifyComponent(name, target string) string {
	if target == "" {
		return platform.QualifyWithTarget(name)
	}
	suffix := "-" + target
	if len(name) >= len(suffix) && name[len(name)-len(suffix):] == suffix {
		return name
	}
	return name + suffix
}
