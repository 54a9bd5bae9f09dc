package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mojomast/arbor"
	"github.com/mojomast/arbor/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <tree-id>",
	Short: "Export a tree as a Mermaid diagram",
	Long:  `Outputs a Mermaid diagram (graph TD) of the tree's nodes, choices and auto-advance edges.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		treePath, _ := cmd.Flags().GetString("trees")

		engine, err := arbor.New(treePath)
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		tree, err := engine.Tree(args[0])
		if err != nil {
			fmt.Printf("Error loading tree: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.GenerateMermaid(tree, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
