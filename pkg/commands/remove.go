package commands

import (
	"github.com/poolup/poolup/pkg/logging"
	"github.com/poolup/poolup/pkg/platform"
)

// Remove deletes a toolchain link and collects its entry if nothing
// else references it.
func Remove(ctx *Ctx, toolchain string) error {
	name := platform.QualifyWithTarget(toolchain)
	logger := logging.GetLogger("commands.remove")
	logger.Info().Str("toolchain", name).Msg("removing toolchain")

	id, err := ctx.Pool.RemoveLink(name)
	if err != nil {
		return err
	}
	return ctx.Pool.GC([]string{id})
}
