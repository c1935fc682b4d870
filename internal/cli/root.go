// Package cli implements the rectab command line.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// Logger returns a development logger when verbose output is on, else a
// no-op logger.
func (o *RootOptions) Logger() (*zap.Logger, error) {
	if !o.Verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// NewRootCommand creates the root command for the rectab CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rectab",
		Short: "Render SQL query results as text tables",
		Long: `rectab runs report queries and prints each result row as a line of a
right-aligned text table. Column formats can be set from a YAML file.`,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(NewFilmsCommand(opts))

	return cmd
}
