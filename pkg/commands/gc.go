package commands

import "github.com/poolup/poolup/pkg/logging"

// GC sweeps the whole pool, removing every entry no link or in-flight
// marker references.
func GC(ctx *Ctx) error {
	logger := logging.GetLogger("commands.gc")
	logger.Info().Msg("collecting unreferenced toolchains")
	return ctx.Pool.GC(nil)
}
