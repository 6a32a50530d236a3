// Package cli implements the depconv command-line interface.
//
// # Commands
//
//   - convert: Load a manifest in one format and write it in another
//   - inspect: Print the canonical project model as text, JSON or YAML
//   - formats: List the supported formats
//   - readme: Render a project's readme in the terminal
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is passed through context.Context; library packages never log.
//
// # Configuration
//
// Defaults for --from, --to and readme handling come from the config file
// (see internal/config) and DEPCONV_* environment variables. Flags win.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depconv/internal/config"
	"github.com/matzehuels/depconv/pkg/buildinfo"
)

const appName = "depconv"

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	verbose    bool
	configPath string
}

// New creates a CLI that logs to w at level until the configuration is
// loaded.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "depconv converts Python package manifests between formats",
		Long: `depconv reads Python package metadata (egg-info, wheel METADATA, pip
requirement files, Poetry and PEP 621 pyproject.toml) into one canonical
project model and writes it back out in any supported format.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/depconv/config.toml)")

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.formatsCommand())
	root.AddCommand(c.readmeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and attaches the logger to the command
// context.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, path, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	level := cfg.Level()
	if c.verbose {
		level = log.DebugLevel
	}
	c.Logger.SetLevel(level)
	if path != "" {
		c.Logger.Debug("Loaded config", "path", path)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}
