package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depconv/pkg/archive"
	derrors "github.com/matzehuels/depconv/pkg/errors"
	"github.com/matzehuels/depconv/pkg/readme"
)

const defaultWidth = 80

type readmeOpts struct {
	width int
	rst   bool
}

func (c *CLI) readmeCommand() *cobra.Command {
	opts := readmeOpts{width: defaultWidth}

	cmd := &cobra.Command{
		Use:   "readme <path>",
		Short: "Render a project's readme in the terminal",
		Long: `Find the readme of the project at <path> and render it.

<path> may be a readme file, a project directory or a source archive.
With --rst the readme is printed as reStructuredText instead, the form
written into PKG-INFO and METADATA.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReadme(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.width, "width", "w", opts.width, "word wrap width")
	cmd.Flags().BoolVar(&opts.rst, "rst", false, "print reStructuredText instead of rendering")

	return cmd
}

func runReadme(ctx context.Context, w io.Writer, path string, opts readmeOpts) error {
	r, err := findReadme(ctx, path)
	if err != nil {
		return err
	}
	if r == nil {
		return derrors.New(derrors.ErrCodeNotFound, "no readme found in %s", path)
	}
	loggerFromContext(ctx).Debug("Found readme", "name", r.Name, "format", r.Format)

	out := r.AsRST()
	if !opts.rst {
		if out, err = r.Render(opts.width); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, out)
	return err
}

func findReadme(ctx context.Context, path string) (*readme.Readme, error) {
	if err := derrors.ValidatePath(path); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "%s does not exist", path)
		}
		return nil, derrors.Wrap(derrors.ErrCodeInvalidPath, err, "stat %s", path)
	}
	if !info.IsDir() && !archive.IsArchive(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidPath, err, "read %s", path)
		}
		return readme.New(filepath.Base(path), string(data)), nil
	}
	tree, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Debug("Searching for readme", "source", tree.Source())
	return readme.Discover(tree)
}
