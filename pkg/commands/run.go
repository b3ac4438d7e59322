package commands

// Run executes a rustup shim (cargo, rustc, rustdoc, ...) against the
// link home, optionally pinned to a named toolchain.
func Run(ctx *Ctx, shim, toolchain string, args []string) error {
	return ctx.Rustup.Run(shim, toolchain, args)
}
