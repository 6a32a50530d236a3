package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	derrors "github.com/matzehuels/depconv/pkg/errors"
	pkgio "github.com/matzehuels/depconv/pkg/io"
	"github.com/matzehuels/depconv/pkg/project"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type inspectOpts struct {
	from   string
	format string
}

func (c *CLI) inspectCommand() *cobra.Command {
	opts := inspectOpts{format: outputText}

	cmd := &cobra.Command{
		Use:   "inspect <path>",
		Short: "Show the canonical project model of a manifest",
		Long: `Load the manifest at <path> and print the project it describes.

Examples:
  depconv inspect dist/demo-1.0.tar.gz
  depconv inspect pyproject.toml --format json
  depconv inspect demo.json --from json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.from, "from", "f", "", "source format or json (auto-detected if empty)")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "output format: text, json or yaml")
	registerSourceCompletion(cmd, "from")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{outputText, outputJSON, outputYAML}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, w io.Writer, path string, opts inspectOpts) error {
	switch opts.format {
	case outputText, outputJSON, outputYAML:
	default:
		return derrors.New(derrors.ErrCodeInvalidInput, "unknown output format %q (available: text, json, yaml)", opts.format)
	}

	root, from, err := c.load(ctx, path, opts.from)
	if err != nil {
		return err
	}

	switch opts.format {
	case outputJSON:
		return pkgio.WriteJSON(root, w)
	case outputYAML:
		return pkgio.WriteYAML(root, w)
	}
	printRoot(w, root, from)
	return nil
}

func printRoot(w io.Writer, root *project.Root, format string) {
	printTitle(w, root.RawName+" "+root.Version)
	printKeyValue(w, "format", format)
	printKeyValue(w, "name", root.Name())
	printKeyValue(w, "summary", root.Description)
	printKeyValue(w, "license", root.License)
	printKeyValue(w, "keywords", strings.Join(root.Keywords, ", "))
	if a, ok := root.Author(); ok {
		printKeyValue(w, "author", person(a))
	}
	if m, ok := root.Maintainer(); ok {
		printKeyValue(w, "maintainer", person(m))
	}
	for _, kind := range project.LinkKinds() {
		if link := root.Link(kind); link != "" {
			printKeyValue(w, string(kind), StyleLink.Render(link))
		}
	}
	if root.Readme != nil {
		printKeyValue(w, "readme", fmt.Sprintf("%s (%s)", root.Readme.Name, root.Readme.Format))
	}

	fmt.Fprintln(w)
	if len(root.Dependencies) == 0 {
		printWarning(w, "no dependencies")
		return
	}
	printTitle(w, fmt.Sprintf("dependencies (%d)", len(root.Dependencies)))
	for _, d := range root.Dependencies {
		printItem(w, d.String())
	}
}

func person(a project.Author) string {
	if a.Mail == "" {
		return a.Name
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Mail)
}
