// Package commands implements CLI command handlers for seqpipe.
package commands

import (
	"github.com/spf13/cobra"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
	LogJSON    bool
	Verbose    bool
	Quiet      bool
}

// NewRootCommand builds the seqpipe command tree from Registry.
func NewRootCommand() *cobra.Command {
	globals := &GlobalFlags{}

	rootCmd := &cobra.Command{
		Use:   "seqpipe",
		Short: "Batch processing pipeline for sequencing reads",
		Long: `seqpipe streams FASTQ, FASTA and SAM records in batches through a
processing handler, keeping per-source record and base-pair counts.

Commands:
  stats     Count records and bases
  export    Write (optionally subsampled) reads as FASTQ or FASTA
  validate  Check a saved summary against the schema
  version   Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.ConfigPath, "config", "", "config file (default: .seqpipe.yaml in . or $HOME)")
	flags.StringVar(&globals.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&globals.LogJSON, "log-json", false, "emit JSON logs")
	flags.BoolVarP(&globals.Verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&globals.Quiet, "quiet", "q", false, "suppress output")

	for _, entry := range Registry {
		rootCmd.AddCommand(entry.New(globals))
	}

	return rootCmd
}
