// Command debate runs the permit planning pipeline from a terminal and
// watches run events published by the server.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	noColor bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "debate",
	Short: "Run and watch permit planning pipelines",
	Long: `Debate runs the stage pipeline for a business request and prints the
stages' discussion as it happens, followed by the final report. The watch
command follows run events published by a running server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Also print partial stage output")

	rootCmd.AddCommand(newRunCmd(), newWatchCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
