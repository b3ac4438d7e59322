// Package platform maps the running build to the Rust target triple used
// to qualify toolchain and component names.
package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// triples maps GOOS/GOARCH to the Rust host target triple.
var triples = map[string]string{
	"linux/amd64":   "x86_64-unknown-linux-gnu",
	"linux/arm64":   "aarch64-unknown-linux-gnu",
	"linux/386":     "i686-unknown-linux-gnu",
	"darwin/amd64":  "x86_64-apple-darwin",
	"darwin/arm64":  "aarch64-apple-darwin",
	"windows/amd64": "x86_64-pc-windows-msvc",
	"windows/arm64": "aarch64-pc-windows-msvc",
	"freebsd/amd64": "x86_64-unknown-freebsd",
}

// BuildTarget returns the Rust target triple of the running binary.
func BuildTarget() string {
	key := runtime.GOOS + "/" + runtime.GOARCH
	if triple, ok := triples[key]; ok {
		return triple
	}
	// Unknown platforms still get a stable, if unofficial, triple so
	// identities remain deterministic.
	return fmt.Sprintf("%s-unknown-%s", runtime.GOARCH, runtime.GOOS)
}

// QualifyWithTarget appends the host target triple to a toolchain or
// component name unless it already carries it.
func QualifyWithTarget(name string) string {
	suffix := "-" + BuildTarget()
	if strings.HasSuffix(name, suffix) {
		return name
	}
	return name + suffix
}

// StripTarget removes the host target triple suffix if present.
func StripTarget(name string) string {
	return strings.TrimSuffix(name, "-"+BuildTarget())
}
