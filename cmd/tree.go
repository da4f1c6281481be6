package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relampo/relampo-yml-editor-sub000/internal/tree"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

var treeCmd = &cobra.Command{
	Use:   "tree <file>",
	Short: "Print the outline of a test file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := parseFile(args[0])
		if err != nil {
			return err
		}
		return printOutline(cmd.OutOrStdout(), root)
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

// printOutline writes one line per node: kind, display name and id. Disabled
// nodes are struck through.
func printOutline(w io.Writer, root *types.Node) error {
	var err error
	tree.Walk(root, func(n *types.Node, depth int) bool {
		if err != nil {
			return false
		}
		label := n.Name
		if !n.Enabled() {
			label = disabledStyle.Render(label)
		}
		_, err = fmt.Fprintf(w, "%s%s %s %s\n",
			strings.Repeat("  ", depth),
			typeStyle.Render(string(n.Type)),
			label,
			idStyle.Render(n.ID))
		return err == nil
	})
	return err
}
