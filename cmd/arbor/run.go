package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mojomast/arbor/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [tree-id]",
	Short: "Play a conversation interactively",
	Long:  `Starts an interactive conversation on the terminal. With no tree-id, plays the first available tree.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		treePath, _ := cmd.Flags().GetString("trees")
		debug, _ := cmd.Flags().GetBool("debug")
		plain, _ := cmd.Flags().GetBool("plain")

		opts := cli.RunOptions{
			TreePath: treePath,
			Debug:    debug,
			Plain:    plain,
		}
		if len(args) > 0 {
			opts.TreeID = args[0]
		}

		if err := cli.RunSession(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("debug", false, "Enable debug logging to stderr")
	runCmd.Flags().Bool("plain", false, "Disable markdown rendering and the banner")

	// Make 'run' the default if no command is provided
	rootCmd.Run = runCmd.Run
}
