// Command mrlgo indexes a directory of text and code files and searches it
// semantically from the terminal.
//
// Usage:
//
//	mrlgo index --path ./docs
//	mrlgo search "how do I rotate credentials?" --limit 5
//
// Provider credentials come from the environment (GEMINI_API_KEY or
// OPENAI_API_KEY); everything else can be set in a YAML config file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "mrlgo",
		Short:         "Semantic search over local files using Matryoshka embeddings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newIndexCmd(&configPath, &verbose),
		newSearchCmd(&configPath, &verbose),
	)

	return cmd
}
