// Package mep holds the cobra command tree of the mep binary.
package mep

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/andisab/mise-en-place/internal/version"
	"github.com/andisab/mise-en-place/pkg/cobrax/topics"
	"github.com/andisab/mise-en-place/pkg/config"
	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/logging"
	"github.com/andisab/mise-en-place/pkg/paths"
	"github.com/andisab/mise-en-place/pkg/ui"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	verbosity  int
	format     string
	configFile string
	root       string
	manifest   string
}

// app carries what PersistentPreRunE resolved to the subcommands
type app struct {
	flags  globalFlags
	cfg    *config.Config
	format ui.Format
}

// NewRootCmd creates the command tree
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "mep",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			logging.Setup(a.flags.verbosity, logging.FileOptions{
				MaxSizeMB:  a.cfg.Log.MaxSize,
				MaxBackups: a.cfg.Log.MaxBackups,
				MaxAgeDays: a.cfg.Log.MaxAge,
				Compress:   a.cfg.Log.Compress,
			})
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&a.flags.verbosity, "verbose", "v", MsgFlagVerbose)
	pf.StringVarP(&a.flags.format, "format", "o", "", MsgFlagFormat)
	pf.StringVar(&a.flags.configFile, "config", "", MsgFlagConfig)
	pf.StringVar(&a.flags.root, "root", "", MsgFlagRoot)
	pf.StringVar(&a.flags.manifest, "manifest", "", MsgFlagManifest)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "templates", Title: "TEMPLATES:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(
		newSyncCmd(a),
		newListCmd(a),
		newValidateCmd(a),
		newCollectCmd(a),
		newBackupsCmd(a),
		newAnalyzeCmd(a),
		newProcessCmd(a),
		newSecretsCmd(a),
		newShellExportsCmd(a),
		newConfigCmd(a),
		newTopicsCmd(),
		newCompletionCmd(),
		newManCmd(),
		newVersionCmd(),
	)

	if _, err := topics.InitializeWithOptions(rootCmd, topicsFS(), topics.Options{
		Extensions: []string{".md"},
		Renderer:   topics.NewMarkdownRenderer(stdoutIsTerminal()),
	}); err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

// load resolves the settings file, MEP_* variables and flag overrides
func (a *app) load(cmd *cobra.Command) error {
	file := a.flags.configFile
	if file == "" {
		if p, err := paths.New(paths.Options{}); err == nil {
			file = p.ConfigFile()
		}
	}

	overrides := map[string]interface{}{}
	if a.flags.root != "" {
		overrides["repo.root"] = a.flags.root
	}
	if a.flags.manifest != "" {
		overrides["repo.manifest"] = a.flags.manifest
	}
	if a.flags.format != "" {
		overrides["output.format"] = a.flags.format
	}

	cfg, err := config.Load(config.LoadOptions{File: file, Overrides: overrides})
	if err != nil {
		return err
	}
	a.cfg = cfg

	format, err := ui.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	a.format = format
	return nil
}
