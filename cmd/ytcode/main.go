// ytcode runs one extraction from the command line without starting the servers.
//
// Usage:
//
//	ytcode extract [--url=<youtube url or id>] [--out=<dir>] [--offline]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "ytcode",
	Short: "Turn a YouTube coding tutorial into a project archive",
	Long:  "ytcode fetches a video's metadata and transcript, asks the configured\nLLM providers for a runnable project and optionally writes it as a ZIP.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
