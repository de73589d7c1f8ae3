package assetpipe

import (
	"fmt"

	"github.com/arthur-debert/assetpipe/internal/version"
	"github.com/arthur-debert/assetpipe/pkg/commands"
	"github.com/arthur-debert/assetpipe/pkg/config"
	"github.com/arthur-debert/assetpipe/pkg/core"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/logging"
	"github.com/arthur-debert/assetpipe/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "assetpipe",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	flags.StringVarP(&opts.configFile, "config", "c", "", MsgFlagConfig)
	flags.StringVarP(&opts.dir, "dir", "C", "", MsgFlagDir)
	flags.StringVar(&opts.format, "format", "auto", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newBuildCmd(opts))
	rootCmd.AddCommand(newResolveCmd(opts))
	rootCmd.AddCommand(newExplainCmd(opts))
	rootCmd.AddCommand(newEntriesCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newGenConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	initTopics(rootCmd)

	return rootCmd
}

func newBuildCmd(opts *rootOptions) *cobra.Command {
	var (
		targets []string
		mode    string
		flags   map[string]string
	)

	cmd := &cobra.Command{
		Use:     "build",
		Short:   MsgBuildShort,
		Long:    MsgBuildLong,
		Example: MsgBuildExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf(MsgErrLoadConfig, err)
			}
			r, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			log.Info().Strs("targets", targets).Bool("dry_run", opts.dryRun).Msg("Building")

			results, err := commands.Build(cmd.Context(), commands.BuildOptions{
				Config:  cfg,
				Targets: targets,
				Mode:    mode,
				Flags:   flags,
				DryRun:  opts.dryRun,
			})
			for _, res := range results {
				if rerr := r.Build(res); rerr != nil {
					return rerr
				}
			}
			if err != nil {
				return err
			}

			if opts.dryRun && r.Format() != ui.FormatJSON {
				return r.Message(MsgDryRunNotice)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&targets, "target", "t", []string{commands.TargetAll}, MsgFlagTarget)
	cmd.Flags().StringVarP(&mode, "mode", "m", "", MsgFlagMode)
	cmd.Flags().StringToStringVarP(&flags, "flag", "f", nil, MsgFlagFlag)
	_ = cmd.RegisterFlagCompletionFunc("target", opts.targetCompletion(true))
	_ = cmd.RegisterFlagCompletionFunc("mode", modeCompletion)

	return cmd
}

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var (
		target       string
		manifestPath string
		url          bool
	)

	cmd := &cobra.Command{
		Use:     "resolve [names...]",
		Short:   MsgResolveShort,
		Long:    MsgResolveLong,
		Example: MsgResolveExample,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			if manifestPath == "" {
				cfg, err := opts.loadConfig()
				if err != nil {
					return fmt.Errorf(MsgErrLoadConfig, err)
				}
				tc, err := cfg.Target(target)
				if err != nil {
					return errors.Wrap(err, errors.ErrConfigValid, "unknown target").
						WithDetail("target", target)
				}
				manifestPath = cfg.Path(tc.Output)
			}

			res, err := commands.Resolve(commands.ResolveOptions{
				Manifest: manifestPath,
				Names:    args,
				URL:      url,
			})
			if err != nil {
				return err
			}
			if err := r.Resolved(res.Found, res.Missing); err != nil {
				return err
			}
			if len(res.Missing) > 0 {
				return errors.Newf(errors.ErrNotFound, MsgUnresolvedFormat, len(res.Missing)).
					WithDetail("names", res.Missing)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "browser", MsgFlagTarget)
	cmd.Flags().StringVar(&manifestPath, "manifest", "", MsgFlagManifest)
	cmd.Flags().BoolVar(&url, "url", false, MsgFlagURL)
	_ = cmd.RegisterFlagCompletionFunc("target", opts.targetCompletion(false))

	return cmd
}

func newExplainCmd(opts *rootOptions) *cobra.Command {
	var (
		target string
		mode   string
		flags  map[string]string
		all    bool
	)

	cmd := &cobra.Command{
		Use:     "explain [paths...]",
		Short:   MsgExplainShort,
		Long:    MsgExplainLong,
		Example: MsgExplainExample,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !all {
				return errors.New(errors.ErrInvalidInput, MsgErrExplainInput)
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf(MsgErrLoadConfig, err)
			}
			r, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			items, err := commands.Explain(commands.ExplainOptions{
				PlanOptions: core.PlanOptions{Config: cfg, Target: target, Mode: mode, Flags: flags},
				Paths:       args,
				All:         all,
			})
			if err != nil {
				return err
			}
			if err := r.Explain(items); err != nil {
				return err
			}

			var unmatched []string
			for _, item := range items {
				if item.Err != nil {
					unmatched = append(unmatched, item.Path)
				}
			}
			if len(unmatched) > 0 {
				return errors.Newf(errors.ErrUnmatchedAsset, MsgUnmatchedFormat, len(unmatched)).
					WithDetail("paths", unmatched)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "browser", MsgFlagTarget)
	cmd.Flags().StringVarP(&mode, "mode", "m", "", MsgFlagMode)
	cmd.Flags().StringToStringVarP(&flags, "flag", "f", nil, MsgFlagFlag)
	cmd.Flags().BoolVar(&all, "all", false, MsgFlagAll)
	_ = cmd.RegisterFlagCompletionFunc("target", opts.targetCompletion(false))
	_ = cmd.RegisterFlagCompletionFunc("mode", modeCompletion)

	return cmd
}

func newEntriesCmd(opts *rootOptions) *cobra.Command {
	var (
		target string
		mode   string
		flags  map[string]string
	)

	cmd := &cobra.Command{
		Use:     "entries",
		Short:   MsgEntriesShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf(MsgErrLoadConfig, err)
			}
			r, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			plan, err := core.NewPlan(core.PlanOptions{Config: cfg, Target: target, Mode: mode, Flags: flags})
			if err != nil {
				return err
			}
			return r.Entries(target, plan.Entries)
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "browser", MsgFlagTarget)
	cmd.Flags().StringVarP(&mode, "mode", "m", "", MsgFlagMode)
	cmd.Flags().StringToStringVarP(&flags, "flag", "f", nil, MsgFlagFlag)
	_ = cmd.RegisterFlagCompletionFunc("target", opts.targetCompletion(false))
	_ = cmd.RegisterFlagCompletionFunc("mode", modeCompletion)

	return cmd
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf(MsgErrLoadConfig, err)
			}
			out, err := config.Render(cfg, as)
			if err != nil {
				return errors.Wrap(err, errors.ErrInvalidInput, "failed to render configuration")
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&as, "as", "toml", MsgFlagAs)
	_ = cmd.RegisterFlagCompletionFunc("as", cobra.FixedCompletions([]string{"toml", "yaml"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func newGenConfigCmd(opts *rootOptions) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.GenConfig(commands.GenConfigOptions{Dir: opts.dir, Write: write})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case !write:
				_, err = fmt.Fprint(out, result.ConfigContent)
			case len(result.FilesWritten) == 0:
				_, err = fmt.Fprintln(out, MsgConfigExists)
			default:
				for _, f := range result.FilesWritten {
					if _, err = fmt.Fprintf(out, MsgConfigWritten, f); err != nil {
						break
					}
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, MsgFlagWrite)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
			return err
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func modeCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"development", "production", "test"}, cobra.ShellCompDirectiveNoFileComp
}
