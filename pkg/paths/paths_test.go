package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		homeDir  string
		envSetup map[string]string
		validate func(t *testing.T, p Paths)
	}{
		{
			name:    "explicit home dir",
			homeDir: "/tmp/poolup-home",
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/tmp/poolup-home", p.HomeDir())
			},
		},
		{
			name: "from POOLUP_HOME env",
			envSetup: map[string]string{
				EnvHomeDir: "/env/poolup-home",
			},
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/env/poolup-home", p.HomeDir())
			},
		},
		{
			name: "defaults to cwd-relative home",
			validate: func(t *testing.T, p Paths) {
				cwd, err := os.Getwd()
				require.NoError(t, err)
				assert.Equal(t, filepath.Join(cwd, DefaultHomeDir), p.HomeDir())
				assert.True(t, filepath.IsAbs(p.HomeDir()))
			},
		},
		{
			name:    "expand tilde in explicit path",
			homeDir: "~/poolup-home",
			validate: func(t *testing.T, p Paths) {
				homeDir, _ := os.UserHomeDir()
				assert.Equal(t, filepath.Join(homeDir, "poolup-home"), p.HomeDir())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvHomeDir, "")
			for k, v := range tt.envSetup {
				t.Setenv(k, v)
			}

			p, err := New(tt.homeDir)
			require.NoError(t, err)
			require.NotNil(t, p)

			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestLayout(t *testing.T) {
	p, err := New("/base")
	require.NoError(t, err)

	assert.Equal(t, "/base/rustup_home", p.RustupHome())
	assert.Equal(t, "/base/poolup_home", p.LinksHome())
	assert.Equal(t, "/base/cargo_home", p.CargoHome())
	assert.Equal(t, "/base/rustup", p.RustupBin())
	assert.Equal(t, "/base/cargo_home/bin", p.CargoBinDir())

	assert.Equal(t, "/base/rustup_home/toolchains", p.PoolDir())
	assert.Equal(t, "/base/poolup_home/toolchains", p.LinksDir())
	assert.Equal(t, "/base/rustup_home/toolchains/pool_gc.lock", p.GCLockPath())

	assert.Equal(t, "/base/rustup_home/toolchains/abc123", p.EntryPath("abc123"))
	assert.Equal(t, "/base/poolup_home/toolchains/stable-x", p.LinkPath("stable-x"))
}

func TestInFlightPathAppendsSuffix(t *testing.T) {
	p, err := New("/base")
	require.NoError(t, err)

	// The suffix must be appended, not substituted: versioned names
	// contain dots and must survive intact.
	link := p.LinkPath("1.81.0-x86_64-unknown-linux-gnu")
	assert.Equal(t, link+".tmp", p.InFlightPath(link))
}
