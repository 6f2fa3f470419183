package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/seqpipe/pkg/report"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(_ *GlobalFlags) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "validate <summary.json>",
		Short: "Check a saved summary against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read summary: %w", err)
			}

			violations, err := report.Check(data)
			if err != nil {
				return err
			}

			ok := color.New(color.FgGreen, color.Bold)
			bad := color.New(color.FgRed, color.Bold)

			if noColor {
				ok.DisableColor()
				bad.DisableColor()
			}

			out := cmd.OutOrStdout()

			if len(violations) == 0 {
				_, err = ok.Fprintf(out, "OK %s\n", args[0])

				return err
			}

			_, err = bad.Fprintf(out, "INVALID %s\n", args[0])
			if err != nil {
				return err
			}

			for _, v := range violations {
				_, err = fmt.Fprintf(out, "  - %s\n", v)
				if err != nil {
					return err
				}
			}

			return fmt.Errorf("%w: %d problem(s) in %s", report.ErrSchemaViolation, len(violations), args[0])
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}
