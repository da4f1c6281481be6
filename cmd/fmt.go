package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relampo/relampo-yml-editor-sub000/internal/parser"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/logger"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

var fmtWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Rewrite a test file in canonical form",
	Long: `Parse a test file into its tree and write the tree back. The result is
printed unless --write is given, in which case the file is replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write the result back to the file")
}

func runFmt(cmd *cobra.Command, args []string) error {
	path := args[0]
	root, err := parseFile(path)
	if err != nil {
		return err
	}

	printer := parser.NewTreePrinter().WithIndent(cfg.Editor.Indent)
	if fmtWrite {
		if err := printer.PrintToFile(root, path); err != nil {
			return err
		}
		logger.Info("formatted", zap.String("file", path))
		return nil
	}

	out, err := printer.Print(root)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// parseFile builds the tree of a test file and logs its warnings.
func parseFile(path string) (*types.Node, error) {
	builder := parser.NewTreeBuilder()
	root, err := builder.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, w := range builder.Warnings() {
		logger.Warn("parse warning", zap.String("file", path), zap.String("warning", w.String()))
	}
	return root, nil
}
