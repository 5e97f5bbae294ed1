package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/convocatorias/internal/formula"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the formula grammar version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s (formula grammar v%d)\n", app, version, formula.GrammarVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
