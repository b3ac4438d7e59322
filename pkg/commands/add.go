package commands

import (
	"github.com/poolup/poolup/pkg/logging"
	"github.com/poolup/poolup/pkg/platform"
)

// Add installs a toolchain link. toolchain is the name the link gets;
// source is the channel or version actually installed, defaulting to
// the toolchain name itself. If the pool already holds an entry with
// the resolved identity, no install runs and the link simply joins it.
//
// The in-flight marker is staged before anything else so a concurrent
// collector sees the target entry as referenced throughout; the link
// flips over in one atomic rename at the end, and whatever it pointed
// at before becomes a GC candidate.
func Add(ctx *Ctx, toolchain, source string) error {
	logger := logging.GetLogger("commands.add")

	name := platform.QualifyWithTarget(toolchain)
	if source == "" {
		source = toolchain
	}
	src := platform.QualifyWithTarget(source)

	// The channel manifest decides what this source resolves to right
	// now, before anything is installed.
	tc, err := ctx.Resolver.ResolveChannel(platform.StripTarget(src), nil)
	if err != nil {
		return err
	}
	id := tc.ID()

	if name == src {
		logger.Info().Str("toolchain", name).Str("id", id).Msg("adding toolchain")
	} else {
		logger.Info().Str("toolchain", name).Str("source", src).Str("id", id).Msg("adding toolchain from source")
	}

	txn, err := ctx.Pool.Begin(name, id)
	if err != nil {
		return err
	}
	defer txn.Abort()

	if err := ctx.Pool.EnsureEntry(id, src); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}

	if prev, ok := txn.Previous(); ok {
		return ctx.Pool.GC([]string{prev})
	}
	return nil
}
