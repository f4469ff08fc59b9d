// Package main is the entiq CLI. It uses cobra for command dispatch,
// same as the underlying teacher's own CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "entiq",
		Short: "Extract tree-shaped entities from a relational database",
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(idsCmd())
	rootCmd.AddCommand(getCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
