// Package cmd contains the command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ragserve",
	Short: "ragserve - retrieval-augmented chat backend",
	Long: `ragserve indexes a directory of documents into a persisted vector
index and serves a streaming chat API that answers questions from it,
using a local Ollama model for both embedding and generation.

Running ragserve without a subcommand starts the HTTP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
