package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mojomast/arbor"
)

var validateCmd = &cobra.Command{
	Use:   "validate [tree-id]",
	Short: "Check dialogue trees for authoring mistakes",
	Long:  `Loads the trees and reports dangling references, auto-advance nodes without targets, and unparseable conditions or effects.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		treePath, _ := cmd.Flags().GetString("trees")
		if err := runValidate(treePath, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(treePath string, args []string) error {
	eng, err := arbor.New(treePath)
	if err != nil {
		return fmt.Errorf("failed to init engine: %w", err)
	}

	var ids []string
	if len(args) > 0 {
		ids = args
	} else {
		ids, err = eng.Trees()
		if err != nil {
			return err
		}
	}

	clean := true
	for _, id := range ids {
		warnings, err := eng.Validate(id)
		if err != nil {
			return err
		}
		if len(warnings) == 0 {
			fmt.Printf("%s: ok\n", id)
			continue
		}
		clean = false
		fmt.Printf("%s:\n", id)
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
	}
	if !clean {
		return fmt.Errorf("warnings found")
	}
	fmt.Println("All trees are valid.")
	return nil
}
