package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relampo/relampo-yml-editor-sub000/internal/placement"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

var addableCmd = &cobra.Command{
	Use:   "addable <type>",
	Short: "List the node kinds that may be added under a kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := types.NodeType(args[0])
		if !t.Valid() {
			return fmt.Errorf("unknown node type: %s", args[0])
		}
		out := cmd.OutOrStdout()
		for _, child := range placement.AddableTypes(t) {
			fmt.Fprintln(out, child)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addableCmd)
}
