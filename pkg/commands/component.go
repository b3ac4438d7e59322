package commands

import (
	"github.com/poolup/poolup/pkg/logging"
	"github.com/poolup/poolup/pkg/platform"
)

// CompAdd adds components to the named toolchain. Other links sharing
// its pool entry are unaffected: the edit runs on a clone that becomes
// a new entry under its new identity.
func CompAdd(ctx *Ctx, toolchain string, components []string) error {
	return editComponents(ctx, toolchain, components, false)
}

// CompRm removes components from the named toolchain, with the same
// clone-and-edit isolation as CompAdd.
func CompRm(ctx *Ctx, toolchain string, components []string) error {
	return editComponents(ctx, toolchain, components, true)
}

func editComponents(ctx *Ctx, toolchain string, components []string, remove bool) error {
	name := platform.QualifyWithTarget(toolchain)
	logger := logging.GetLogger("commands.component")
	logger.Info().
		Str("toolchain", name).
		Strs("components", components).
		Bool("remove", remove).
		Msg("editing components")

	return ctx.Pool.Mutate(name, components, remove)
}
