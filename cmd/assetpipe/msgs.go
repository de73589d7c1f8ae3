package assetpipe

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Content-addressed asset bundler"
	MsgBuildShort      = "Build one or more targets"
	MsgResolveShort    = "Look up output paths in a build manifest"
	MsgExplainShort    = "Show the rules and transform chain of source paths"
	MsgEntriesShort    = "List the resolved entry points of a target"
	MsgConfigShort     = "Print the effective configuration"
	MsgGenConfigShort  = "Print or write an annotated configuration file"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgDryRunNotice     = "DRY RUN MODE - no files were written"
	MsgConfigWritten    = "Wrote %s\n"
	MsgConfigExists     = "Configuration file already exists, nothing written"
	MsgVersionFormat    = "assetpipe %s (commit %s, built %s)\n"
	MsgUnresolvedFormat = "%d name(s) not found in the manifest"
	MsgUnmatchedFormat  = "%d path(s) matched no rule"

	// Error messages
	MsgErrLoadConfig   = "failed to load configuration: %w"
	MsgErrNoCommand    = "no command specified"
	MsgErrExplainInput = "give one or more paths, or --all"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun   = "Run the pipeline without writing any files"
	MsgFlagConfig   = "Configuration file (default: assetpipe.toml in the project directory)"
	MsgFlagDir      = "Project directory"
	MsgFlagFormat   = "Output format: auto, terminal, text or json"
	MsgFlagTarget   = "Target to build, or \"all\""
	MsgFlagMode     = "Build mode: development, production or test (default from configuration)"
	MsgFlagFlag     = "Build flag as key=value, repeatable"
	MsgFlagManifest = "Manifest file or output directory (default: the target's output)"
	MsgFlagURL      = "Prefix paths with the public path"
	MsgFlagAll      = "Explain every file under the source root"
	MsgFlagAs       = "Configuration syntax: toml or yaml"
	MsgFlagWrite    = "Write assetpipe.toml to the project directory"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/build-long.txt
	msgBuildLongRaw string
	MsgBuildLong    = strings.TrimSpace(msgBuildLongRaw)

	//go:embed msgs/build-example.txt
	msgBuildExampleRaw string
	MsgBuildExample    = strings.TrimRight(msgBuildExampleRaw, "\n")

	//go:embed msgs/resolve-long.txt
	msgResolveLongRaw string
	MsgResolveLong    = strings.TrimSpace(msgResolveLongRaw)

	//go:embed msgs/resolve-example.txt
	msgResolveExampleRaw string
	MsgResolveExample    = strings.TrimRight(msgResolveExampleRaw, "\n")

	//go:embed msgs/explain-long.txt
	msgExplainLongRaw string
	MsgExplainLong    = strings.TrimSpace(msgExplainLongRaw)

	//go:embed msgs/explain-example.txt
	msgExplainExampleRaw string
	MsgExplainExample    = strings.TrimRight(msgExplainExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
