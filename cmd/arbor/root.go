package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor is a branching conversation engine",
	Long:  `Arbor plays dialogue trees authored in JSON or YAML, gating choices on game state and applying effects as the conversation advances.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("trees", ".", "Directory (or file) containing dialogue tree documents")
}
