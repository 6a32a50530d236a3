package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depconv/pkg/convert"
	derrors "github.com/matzehuels/depconv/pkg/errors"
	pkgio "github.com/matzehuels/depconv/pkg/io"
	"github.com/matzehuels/depconv/pkg/project"
)

// convertOpts holds the flags of the convert command.
type convertOpts struct {
	from   string // source format, auto-detected when empty
	to     string // target format
	output string // output file (stdout if empty)
}

func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert <path>",
		Short: "Convert a manifest to another format",
		Long: `Load the manifest at <path> and write its dependencies in another format.

<path> may be a metadata file, a project directory, a source archive or
a JSON model written by "depconv inspect --format json".
When --output names an existing file, it is updated in place so that
unrelated content (tool tables, pip options) is kept.

Examples:
  depconv convert dist/demo-1.0.tar.gz --to pip
  depconv convert demo.egg-info --to poetry -o pyproject.toml
  depconv convert requirements.txt --from pip --to egginfo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.from, "from", "f", "", "source format (auto-detected if empty)")
	cmd.Flags().StringVarP(&opts.to, "to", "t", "", "target format (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	registerSourceCompletion(cmd, "from")
	registerFormatCompletion(cmd, "to")

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, w io.Writer, path string, opts convertOpts) error {
	logger := loggerFromContext(ctx)

	root, _, err := c.load(ctx, path, opts.from)
	if err != nil {
		return err
	}

	toName := opts.to
	if toName == "" {
		toName = c.Config.DefaultTo
	}
	to, dst, err := convert.Lookup(toName)
	if err != nil {
		return err
	}

	var content string
	if opts.output != "" {
		data, err := os.ReadFile(opts.output)
		switch {
		case err == nil:
			content = string(data)
			logger.Debug("Updating existing file", "path", opts.output)
		case !os.IsNotExist(err):
			return derrors.Wrap(derrors.ErrCodeInvalidPath, err, "read %s", opts.output)
		}
	}

	out := root
	if !c.Config.Readme && root.Readme != nil {
		out = root.Clone()
		out.Readme = nil
	}
	text, err := dst.Dumps(out.Dependencies, out, content)
	if err != nil {
		return err
	}
	logger.Debug("Converted", "to", to, "dependencies", len(out.Dependencies))

	if opts.output == "" {
		_, err := io.WriteString(w, text)
		return err
	}
	if err := os.WriteFile(opts.output, []byte(text), 0o644); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidPath, err, "write %s", opts.output)
	}
	printSuccess(w, "Converted %s to %s", root.RawName, to)
	printFile(w, opts.output)
	return nil
}

// modelFormat names the JSON rendition of the project model as a source.
// Paths ending in .json are read as models unless --from says otherwise.
const modelFormat = "json"

// load reads path with the named format, detecting it when fromName is
// empty and the config has no default. It returns the root and the name
// of the format it was read as.
func (c *CLI) load(ctx context.Context, path, fromName string) (*project.Root, string, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	if strings.EqualFold(fromName, modelFormat) || (fromName == "" && strings.EqualFold(filepath.Ext(path), ".json")) {
		root, err := loadModel(path)
		if err != nil {
			return nil, "", err
		}
		prog.done("Loaded " + root.RawName)
		return root, modelFormat, nil
	}

	if fromName == "" {
		fromName = c.Config.DefaultFrom
	}
	var (
		from convert.Format
		err  error
	)
	if fromName == "" {
		from, err = convert.Detect(path)
		if err != nil {
			return nil, "", err
		}
		logger.Debug("Detected format", "path", path, "format", from)
	} else if from, err = convert.ParseFormat(fromName); err != nil {
		return nil, "", err
	}

	src, err := convert.New(from)
	if err != nil {
		return nil, "", err
	}
	root, err := src.Load(path)
	if err != nil {
		return nil, "", err
	}
	if len(root.Dependencies) == 0 {
		logger.Warn("No dependencies found", "path", path)
	}
	prog.done("Loaded " + root.RawName)
	return root, from.String(), nil
}

// loadModel reads a project model document from path.
func loadModel(path string) (*project.Root, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "%s not found", path)
		}
		return nil, derrors.Wrap(derrors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return pkgio.ReadJSON(f)
}

func registerFormatCompletion(cmd *cobra.Command, flags ...string) {
	complete := func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return convert.FormatNames(), cobra.ShellCompDirectiveNoFileComp
	}
	for _, name := range flags {
		_ = cmd.RegisterFlagCompletionFunc(name, complete)
	}
}

func registerSourceCompletion(cmd *cobra.Command, flags ...string) {
	complete := func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return append(convert.FormatNames(), modelFormat), cobra.ShellCompDirectiveNoFileComp
	}
	for _, name := range flags {
		_ = cmd.RegisterFlagCompletionFunc(name, complete)
	}
}
