package identity

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/poolup/poolup/pkg/errors"
)

// channelManifest is the slice of a channel manifest identity cares
// about. Installed copies and the remote release manifest share this
// shape.
type channelManifest struct {
	Pkg struct {
		Rust struct {
			Version string `toml:"version"`
		} `toml:"rust"`
	} `toml:"pkg"`
}

// VersionFromManifest extracts pkg.rust.version from a channel
// manifest. A missing value is a parse error: the manifest is the only
// source of the version half of an identity.
func VersionFromManifest(data []byte) (string, error) {
	var m channelManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return "", errors.Wrap(err, errors.ErrManifestParse, "invalid channel manifest")
	}
	if m.Pkg.Rust.Version == "" {
		return "", errors.New(errors.ErrManifestParse, "channel manifest is missing pkg.rust.version")
	}
	return m.Pkg.Rust.Version, nil
}
