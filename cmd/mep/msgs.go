package mep

import (
	_ "embed"
	"strings"
)

// Short messages
const (
	MsgRootShort         = "Sync dotfiles between a repository and your home directory"
	MsgListShort         = "List manifest entries and where each file comes from"
	MsgValidateShort     = "Check the manifest and environment files"
	MsgSyncShort         = "Copy repository files to the system"
	MsgCollectShort      = "Copy system files back into the repository"
	MsgAnalyzeShort      = "Show the variables a template uses"
	MsgProcessShort      = "Render a template to a file"
	MsgSecretsShort      = "List environment files in priority order"
	MsgShellExportsShort = "Print shell variables describing the setup"
	MsgBackupsShort      = "List backups"
	MsgConfigShort       = "Manage mep settings"
	MsgConfigInitShort   = "Write a commented settings file"
	MsgConfigShowShort   = "Print the effective settings"
	MsgTopicsShort       = "Display available documentation topics"
	MsgTopicsLong        = "Display a list of all help topics that provide documentation beyond command help."
	MsgCompletionShort   = "Generate shell completion script"
	MsgManShort          = "Generate man pages"
	MsgVersionShort      = "Print version information"

	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat   = "Output format: auto, term, text, json or yaml"
	MsgFlagConfig   = "Settings file (default $XDG_CONFIG_HOME/mise-en-place/config.toml)"
	MsgFlagRoot     = "Dotfiles repository root"
	MsgFlagManifest = "Manifest file, relative to the repository root"
	MsgFlagStrategy = "How to treat differing files: ask, replace or skip"
	MsgFlagForce    = "Replace without asking (same as --strategy replace)"
	MsgFlagDryRun   = "Show diffs without writing (same as --strategy skip)"
	MsgFlagVerify   = "List every valid entry"
	MsgFlagShell    = "Shell dialect: bash or zsh"
	MsgFlagManDir   = "Directory to write man pages into"

	MsgConfigWritten = "Wrote %s\n"
	MsgConfigExists  = "%s already exists; remove it first to regenerate"

	MsgErrNoCommand  = "no command specified"
	MsgErrRenderFail = "failed to render output: %w"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/sync-long.txt
	msgSyncLongRaw string
	MsgSyncLong    = strings.TrimSpace(msgSyncLongRaw)

	//go:embed msgs/sync-example.txt
	msgSyncExampleRaw string
	MsgSyncExample    = strings.TrimRight(msgSyncExampleRaw, "\n")

	//go:embed msgs/list-example.txt
	msgListExampleRaw string
	MsgListExample    = strings.TrimRight(msgListExampleRaw, "\n")

	//go:embed msgs/validate-long.txt
	msgValidateLongRaw string
	MsgValidateLong    = strings.TrimSpace(msgValidateLongRaw)

	//go:embed msgs/analyze-long.txt
	msgAnalyzeLongRaw string
	MsgAnalyzeLong    = strings.TrimSpace(msgAnalyzeLongRaw)

	//go:embed msgs/process-long.txt
	msgProcessLongRaw string
	MsgProcessLong    = strings.TrimSpace(msgProcessLongRaw)

	//go:embed msgs/collect-long.txt
	msgCollectLongRaw string
	MsgCollectLong    = strings.TrimSpace(msgCollectLongRaw)

	//go:embed msgs/shell-exports-long.txt
	msgShellExportsLongRaw string
	MsgShellExportsLong    = strings.TrimSpace(msgShellExportsLongRaw)

	//go:embed msgs/shell-exports-example.txt
	msgShellExportsExampleRaw string
	MsgShellExportsExample    = strings.TrimRight(msgShellExportsExampleRaw, "\n")

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)

	//go:embed msgs/fallback-warning.txt
	msgFallbackWarningRaw string
	MsgFallbackWarning    = strings.TrimSpace(msgFallbackWarningRaw) + "\n"
)
