package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depconv/pkg/convert"
)

func (c *CLI) formatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported manifest formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, f := range convert.Formats() {
				conv, err := convert.New(f)
				if err != nil {
					return err
				}
				line := StyleValue.Render(fmt.Sprintf("%-10s", f))
				if conv.Lock() {
					line += " " + styleLock.Render("lock")
				}
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}
}
