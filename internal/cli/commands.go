// Package cli wires poolup's operations into cobra commands.
package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/poolup/poolup/internal/version"
	"github.com/poolup/poolup/pkg/commands"
	"github.com/poolup/poolup/pkg/logging"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		homeDir   string
	)

	rootCmd := &cobra.Command{
		Use:   "poolup",
		Short: "A deduplicating manager for rust toolchains",
		Long: `poolup keeps one pool of installed rust toolchains and gives each
named toolchain a link into it, so channels and versions that resolve
to the same release share a single installation on disk.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "poolup home directory (default $POOLUP_HOME or ./home)")

	newCtx := func() (*commands.Ctx, error) {
		return commands.NewCtx(homeDir)
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSetupCmd(newCtx))
	rootCmd.AddCommand(newAddCmd(newCtx))
	rootCmd.AddCommand(newRmCmd(newCtx))
	rootCmd.AddCommand(newCompCmd(newCtx))
	rootCmd.AddCommand(newRunCmd(newCtx))
	rootCmd.AddCommand(newIDCmd(newCtx))
	rootCmd.AddCommand(newIDChanCmd(newCtx))
	rootCmd.AddCommand(newGCCmd(newCtx))
	rootCmd.AddCommand(newNukeCmd(newCtx))

	return rootCmd
}

// ctxFactory defers collaborator construction until a command actually
// runs, after flags are parsed.
type ctxFactory func() (*commands.Ctx, error)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("poolup version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Printf("Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}

func newSetupCmd(newCtx ctxFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Set up the sandboxed rustup installation",
		Long: `Setup downloads a pinned rustup release into the poolup home,
creates the pool and link directories, and configures rustup for
non-interactive use. Running it again is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newCtx()
			if err != nil {
				return err
			}
			return commands.Setup(ctx)
		},
	}
}

func newAddCmd(newCtx ctxFactory) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "add <toolchain>",
		Short: "Install a toolchain link",
		Long: `Add installs a toolchain under the given name. If another name
already resolves to the same release, the installation is shared
instead of duplicated.`,
		Example: `  # Install a release by version
  poolup add 1.81.0

  # Name a channel after an already-installed version
  poolup add stable --source 1.81.0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newCtx()
			if err != nil {
				return err
			}
			return commands.Add(ctx, args[0], source)
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "underlying toolchain to install from (defaults to the toolchain itself)")
	return cmd
}

func newRmCmd(newCtx ctxFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <toolchain>",
		Short: "Remove a toolchain link",
		Long: `Rm deletes the named link. The underlying installation is removed
only when no other link references it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newCtx()
			if err != nil {
				return err
			}
			return commands.Remove(ctx, args[0])
		},
	}
}

func newCompCmd(newCtx ctxFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comp",
		Short: "Manage components of a toolchain",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <toolchain> <component>...",
		Short: "Add components to a toolchain",
		Long: `Comp add installs components on the named toolchain. Toolchains
sharing the same underlying installation are unaffected.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newCtx()
			if err != nil {
				return err
			}
			return commands.CompAdd(ctx, args[0], args[1:])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <toolchain> <component>...",
		Short: "Remove components from a toolchain",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newCtx()
			if err != nil {
				return err
			}
			return commands.CompRm(ctx, args[0], args[1:])
		},
	})
	return cmd
}

func newRunCmd(newCtx ctxFactory) *cobra.Command {
	var toolchain string

	cmd := &cobra.Command{
		Use:   "run <shim> [args...]",
		Short: "Run a rustup shim in the linked environment",
		Example: `  # Build with the default toolchain
  poolup run cargo build

  # Check with a specific toolchain
  poolup run cargo --toolchain 1.81.0 -- check`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newCtx()
			if err != nil {
				return err
			}
			return commands.Run(ctx, args[0], toolchain, args[1:])
		},
	}
	cmd.Flags().StringVarP(&toolchain, "toolchain", "t", "", "toolchain to run the shim against")
	return cmd
}

func newIDCmd(newCtx ctxFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "id <toolchain>",
		Short: "Print the identity of an installed toolchain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newCtx()
			if err != nil {
				return err
			}
			id, err := commands.ID(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
}

func newIDChanCmd(newCtx ctxFactory) *cobra.Command {
	var components []string

	cmd := &cobra.Command{
		Use:   "id-chan <channel>",
		Short: "Print the identity a channel currently resolves to",
		Long: `Id-chan downloads the channel's release manifest and computes the
identity it would get if installed now, without installing anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newCtx()
			if err != nil {
				return err
			}
			id, err := commands.IDChan(ctx, args[0], components)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&components, "component", "c", nil, "explicit components to include (overrides the profile)")
	return cmd
}

func newGCCmd(newCtx ctxFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Remove unreferenced toolchain installations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newCtx()
			if err != nil {
				return err
			}
			return commands.GC(ctx)
		},
	}
}

func newNukeCmd(newCtx ctxFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "nuke",
		Short: "Delete the entire poolup home",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newCtx()
			if err != nil {
				return err
			}
			return commands.Nuke(ctx)
		},
	}
}
