package commands

import (
	"github.com/poolup/poolup/pkg/identity"
	"github.com/poolup/poolup/pkg/platform"
)

// ID computes the identity of an installed toolchain link from its
// on-disk state.
func ID(ctx *Ctx, toolchain string) (string, error) {
	target, err := ctx.Pool.ResolveLink(platform.QualifyWithTarget(toolchain))
	if err != nil {
		return "", err
	}

	tc, err := identity.FromDir(ctx.FS, target.Path)
	if err != nil {
		return "", err
	}
	return tc.ID(), nil
}

// IDChan computes the identity a channel currently resolves to by
// fetching its release manifest, without installing anything. An
// explicit component list overrides the configured profile.
func IDChan(ctx *Ctx, channel string, components []string) (string, error) {
	tc, err := ctx.Resolver.ResolveChannel(channel, components)
	if err != nil {
		return "", err
	}
	return tc.ID(), nil
}
