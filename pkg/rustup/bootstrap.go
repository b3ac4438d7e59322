package rustup

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/poolup/poolup/pkg/errors"
	"github.com/poolup/poolup/pkg/paths"
	"github.com/poolup/poolup/pkg/platform"
)

// downloadTimeout bounds the rustup-init download.
const downloadTimeout = 5 * time.Minute

// BinaryURL returns the official archive URL for a pinned rustup-init
// release:
//
//	{distServer}/rustup/archive/{version}/{target}/rustup-init[.exe]
//
// See https://rust-lang.github.io/rustup/installation/other.html.
func BinaryURL(distServer, version, target string) string {
	suffix := ""
	if runtime.GOOS == "windows" {
		suffix = ".exe"
	}
	return fmt.Sprintf("%s/rustup/archive/%s/%s/rustup-init%s", distServer, version, target, suffix)
}

// Setup bootstraps the sandbox: downloads the pinned rustup binary if
// it is not already there, creates the pool and link homes, links the
// binary into the cargo bin dir, and configures both homes for
// non-interactive use.
func (r *Rustup) Setup() error {
	bin := r.paths.RustupBin()
	if _, err := r.fs.Stat(bin); err == nil {
		r.logger.Info().Msg("rustup already set up, skipping download")
	} else {
		if err := r.download(bin); err != nil {
			return err
		}
	}

	for _, dir := range []string{
		r.paths.CargoBinDir(),
		r.paths.PoolDir(),
		r.paths.LinksDir(),
	} {
		if err := r.fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to create %s", dir)
		}
	}

	if err := r.linkIntoCargoBin(bin); err != nil {
		return err
	}

	if err := r.run(r.paths.RustupHome(), "--version"); err != nil {
		return err
	}
	for _, home := range []string{r.paths.RustupHome(), r.paths.LinksHome()} {
		if err := r.run(home, "set", "profile", r.cfg.Profile); err != nil {
			return err
		}
		if err := r.run(home, "set", "auto-self-update", "disable"); err != nil {
			return err
		}
	}
	return nil
}

// download fetches the pinned rustup-init release and writes it as an
// executable at dest.
func (r *Rustup) download(dest string) error {
	url := BinaryURL(r.cfg.DistServer, r.cfg.Version, platform.BuildTarget())
	r.logger.Info().Str("url", url).Msg("downloading rustup")

	client := &http.Client{Timeout: downloadTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return errors.Wrapf(err, errors.ErrExternalTool, "failed to download rustup from %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.ErrExternalTool, "rustup download from %s returned %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.ErrExternalTool, "failed to read rustup download")
	}
	if err := r.fs.WriteFile(dest, data, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to write rustup to %s", dest)
	}
	return nil
}

// linkIntoCargoBin puts the shim link rustup expects at
// <cargo home>/bin/rustup, relative so the home stays relocatable.
func (r *Rustup) linkIntoCargoBin(bin string) error {
	link := filepath.Join(r.paths.CargoBinDir(), paths.RustupBinName)
	if _, err := r.fs.Lstat(link); err == nil {
		return nil
	}

	target, err := filepath.Rel(r.paths.CargoBinDir(), bin)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to relativize rustup link target")
	}
	if err := r.fs.Symlink(target, link); err != nil && !os.IsExist(err) {
		return errors.Wrap(err, errors.ErrFileAccess, "failed to link rustup into cargo bin")
	}
	return nil
}
