package mep

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/andisab/mise-en-place/internal/version"
	"github.com/andisab/mise-en-place/pkg/commands"
	"github.com/andisab/mise-en-place/pkg/config"
	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/andisab/mise-en-place/pkg/logging"
	"github.com/andisab/mise-en-place/pkg/types"
	"github.com/andisab/mise-en-place/pkg/ui"
	"github.com/andisab/mise-en-place/pkg/ui/prompt"
)

// resolvedFormat turns auto into a concrete format for stdout
func (a *app) resolvedFormat() ui.Format {
	if a.format == ui.FormatAuto {
		return ui.DetectFormat(os.Stdout)
	}
	return a.format
}

// runtime builds the operations runtime. Interactive commands get a
// decider reading from stdin.
func (a *app) runtime(cmd *cobra.Command, interactive bool) (*commands.Runtime, error) {
	opts := commands.Options{Config: a.cfg}
	if interactive {
		opts.Decider = prompt.NewDecider(os.Stdin, os.Stdout, a.resolvedFormat() == ui.FormatTerminal)
	}

	rt, err := commands.New(opts)
	if err != nil {
		return nil, err
	}
	if rt.Paths().UsedFallback() && !a.format.Structured() {
		fmt.Fprintf(cmd.ErrOrStderr(), MsgFallbackWarning, rt.Paths().DotfilesRoot())
	}
	return rt, nil
}

// render writes report and converts a failed result into an ExitError
func (a *app) render(cmd *cobra.Command, report *types.Report) error {
	renderer, err := ui.NewRenderer(a.format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := renderer.RenderResult(report); err != nil {
		return fmt.Errorf(MsgErrRenderFail, err)
	}
	if report.Success {
		return nil
	}
	return &ExitError{Operation: report.Operation, Result: report.Code, Code: ExitCodeFor(report.Code)}
}

// operation adapts a report-returning function into a cobra RunE
func (a *app) operation(interactive bool, op func(ctx context.Context, rt *commands.Runtime, args []string) *types.Report) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := a.runtime(cmd, interactive)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		done := logging.LogOperationStart(logging.GetLogger("cmd."+cmd.Name()), cmd.Name())
		report := op(ctx, rt, args)
		done()

		return a.render(cmd, report)
	}
}

func newSyncCmd(a *app) *cobra.Command {
	var (
		strategy string
		force    bool
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:     "sync",
		Short:   MsgSyncShort,
		Long:    MsgSyncLong,
		Example: MsgSyncExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := commands.SyncOptions{Force: force}
			if strategy != "" {
				s, err := types.ParseStrategy(strategy)
				if err != nil {
					return errors.Wrap(err, errors.ErrInvalidInput, "invalid --strategy")
				}
				opts.Strategy = s
			}
			if dryRun {
				if force || (opts.Strategy != "" && opts.Strategy != types.StrategySkip) {
					return errors.New(errors.ErrInvalidInput, "--dry-run cannot be combined with --strategy or --force")
				}
				opts.Strategy = types.StrategySkip
			}

			return a.operation(true, func(ctx context.Context, rt *commands.Runtime, _ []string) *types.Report {
				return rt.Sync(ctx, opts)
			})(cmd, args)
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", MsgFlagStrategy)
	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	_ = cmd.RegisterFlagCompletionFunc("strategy", cobra.FixedCompletions(
		[]string{"ask", "replace", "skip"}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgListShort,
		Example: MsgListExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: a.operation(false, func(_ context.Context, rt *commands.Runtime, _ []string) *types.Report {
			return rt.List()
		}),
	}
}

func newValidateCmd(a *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:     "validate",
		Short:   MsgValidateShort,
		Long:    MsgValidateLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: a.operation(false, func(_ context.Context, rt *commands.Runtime, _ []string) *types.Report {
			return rt.Validate(verbose)
		}),
	}
	cmd.Flags().BoolVar(&verbose, "entries", false, MsgFlagVerify)
	return cmd
}

func newCollectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "collect",
		Short:   MsgCollectShort,
		Long:    MsgCollectLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: a.operation(false, func(ctx context.Context, rt *commands.Runtime, _ []string) *types.Report {
			return rt.Collect(ctx)
		}),
	}
}

func newBackupsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "backups",
		Short:   MsgBackupsShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: a.operation(false, func(_ context.Context, rt *commands.Runtime, _ []string) *types.Report {
			return rt.Backups()
		}),
	}
}

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "analyze FILE",
		Short:   MsgAnalyzeShort,
		Long:    MsgAnalyzeLong,
		GroupID: "templates",
		Args:    cobra.ExactArgs(1),
		RunE: a.operation(false, func(_ context.Context, rt *commands.Runtime, args []string) *types.Report {
			return rt.AnalyzeTemplate(args[0])
		}),
	}
}

func newProcessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "process TEMPLATE OUTPUT",
		Short:   MsgProcessShort,
		Long:    MsgProcessLong,
		GroupID: "templates",
		Args:    cobra.ExactArgs(2),
		RunE: a.operation(false, func(_ context.Context, rt *commands.Runtime, args []string) *types.Report {
			return rt.ProcessTemplate(args[0], args[1])
		}),
	}
}

func newSecretsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "secrets-files",
		Short:   MsgSecretsShort,
		GroupID: "templates",
		Args:    cobra.NoArgs,
		RunE: a.operation(false, func(_ context.Context, rt *commands.Runtime, _ []string) *types.Report {
			return rt.SecretsFiles()
		}),
	}
}

func newShellExportsCmd(a *app) *cobra.Command {
	var shell string
	cmd := &cobra.Command{
		Use:     "shell-exports",
		Short:   MsgShellExportsShort,
		Long:    MsgShellExportsLong,
		Example: MsgShellExportsExample,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: a.operation(false, func(_ context.Context, rt *commands.Runtime, _ []string) *types.Report {
			return rt.ShellExports(shell)
		}),
	}
	cmd.Flags().StringVar(&shell, "shell", "bash", MsgFlagShell)
	_ = cmd.RegisterFlagCompletionFunc("shell", cobra.FixedCompletions(
		[]string{"bash", "zsh"}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: MsgConfigInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := commands.New(commands.Options{Config: a.cfg})
			if err != nil {
				return err
			}
			target := a.flags.configFile
			if target == "" {
				target = rt.Paths().ConfigFile()
			}

			fsys := filesystem.NewOS()
			if filesystem.Exists(fsys, target) {
				return errors.Newf(errors.ErrInvalidInput, MsgConfigExists, target)
			}
			if err := fsys.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrIO, "cannot create %s", filepath.Dir(target))
			}
			if err := filesystem.WriteAtomic(fsys, target, []byte(config.GenerateConfigContent()), 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten, target)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: MsgConfigShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := config.Render(a.cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	})

	return cmd
}

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   MsgTopicsShort,
		Long:    MsgTopicsLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			helpCmd, _, err := cmd.Root().Find([]string{"help"})
			if err != nil || helpCmd.Run == nil {
				return fmt.Errorf("help command not found")
			}
			helpCmd.SetOut(cmd.OutOrStdout())
			helpCmd.Run(helpCmd, []string{"topics"})
			return nil
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

func newManCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:    "man",
		Short:  MsgManShort,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrIO, "cannot create %s", dir)
			}
			header := &doc.GenManHeader{
				Title:   "MEP",
				Section: "1",
				Source:  "mep " + version.Version,
			}
			return doc.GenManTree(cmd.Root(), header, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", MsgFlagManDir)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mep version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}
