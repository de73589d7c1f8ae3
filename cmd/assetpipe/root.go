package assetpipe

import (
	"embed"
	"io/fs"

	"github.com/arthur-debert/assetpipe/pkg/cobrax/topics"
	"github.com/arthur-debert/assetpipe/pkg/config"
	"github.com/arthur-debert/assetpipe/pkg/logging"
	"github.com/arthur-debert/assetpipe/pkg/ui"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicFiles embed.FS

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	verbosity  int
	dryRun     bool
	configFile string
	dir        string
	format     string
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{Dir: o.dir, File: o.configFile})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *rootOptions) renderer(cmd *cobra.Command) (*ui.Renderer, error) {
	format, err := ui.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}

// targetCompletion completes configured target names
func (o *rootOptions) targetCompletion(withAll bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := o.loadConfig()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		names := cfg.TargetNames()
		if withAll {
			names = append(names, "all")
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

// initTopics serves the embedded documents through "help <topic>"
func initTopics(rootCmd *cobra.Command) {
	logger := logging.GetLogger("cli")

	sub, err := fs.Sub(topicFiles, "topics")
	if err != nil {
		logger.Debug().Err(err).Msg("No help topics embedded")
		return
	}
	opts := topics.Options{
		Extensions: []string{".txt", ".md"},
		Renderer:   topics.NewGlamourRenderer(),
	}
	if _, err := topics.InitializeWithOptions(rootCmd, sub, opts); err != nil {
		logger.Debug().Err(err).Msg("Failed to load help topics")
	}
}
