package commands

import "github.com/poolup/poolup/pkg/logging"

// Setup bootstraps the sandbox: the pinned rustup binary, both homes,
// and their non-interactive defaults. Idempotent.
func Setup(ctx *Ctx) error {
	logger := logging.GetLogger("commands.setup")
	logger.Info().
		Str("home", ctx.Paths.HomeDir()).
		Msg("setting up poolup home")
	return ctx.Rustup.Setup()
}
