// Package cli provides the Cobra command structure for textstore.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/textstore/internal/app"
	"github.com/dshills/textstore/internal/config/loader"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	configPath string
	debug      bool
	color      string
	backend    string
	theme      string
	deferred   bool
}

// appOptions turns the flags into application options.
func (g *globalOptions) appOptions() app.Options {
	opts := app.Options{
		ConfigPath: g.configPath,
		Backend:    g.backend,
		Theme:      g.theme,
		Deferred:   g.deferred,
	}
	if g.debug {
		opts.LogLevel = "debug"
	}
	return opts
}

// NewRootCommand creates the root textstore command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "textstore",
		Short: "Inspect and replay edits on an incrementally highlighted text store",
		Long: `textstore loads a document into a text store that keeps a line index and
syntax highlights up to date under edits.

inspect prints the line table and highlight ranges of a file. replay applies a
YAML script of edits and reports what each one changed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config",
		loader.GetEnvOrDefault(loader.EnvPrefix+"CONFIG", ""), "path to config file")
	flags.BoolVar(&g.debug, "debug", false, "enable debug logging")
	flags.StringVar(&g.color, "color", "auto", "colorize output: auto, always, never")
	flags.StringVar(&g.backend, "backend", "", "syntax backend: auto, treesitter, rules, chroma, none")
	flags.StringVar(&g.theme, "theme", "", "theme name")
	flags.BoolVar(&g.deferred, "deferred", false, "highlight on a background worker")

	rootCmd.AddCommand(newInspectCommand(g))
	rootCmd.AddCommand(newReplayCommand(g))
	rootCmd.AddCommand(newThemesCommand(g))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
