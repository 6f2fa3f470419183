package commands

import (
	"github.com/spf13/cobra"
)

// Entry is one subcommand known to the binary.
type Entry struct {
	Name string
	New  func(globals *GlobalFlags) *cobra.Command
}

// Registry lists every subcommand, in help order.
var Registry = []Entry{
	{Name: "stats", New: NewStatsCommand},
	{Name: "export", New: NewExportCommand},
	{Name: "validate", New: NewValidateCommand},
	{Name: "version", New: NewVersionCommand},
}
