package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relampo/relampo-yml-editor-sub000/internal/lint"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/logger"
)

var lintVars []string

var lintCmd = &cobra.Command{
	Use:   "lint <file>",
	Short: "Check a test file for mistakes",
	Long: `Report problems the tree can show before a run: bad conditions, loop
counts and durations, extractors that do not compile, empty blocks and
variables that are never declared. Exits non-zero when any error is found.`,
	Example: `  relampo-editor lint checkout.yaml
  relampo-editor lint --var token --var user_id checkout.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().StringArrayVar(&lintVars, "var", nil, "variable provided at run time (repeatable)")
}

func runLint(cmd *cobra.Command, args []string) error {
	root, err := parseFile(args[0])
	if err != nil {
		return err
	}

	linter := lint.New(lint.WithKnownVariables(lintVars...), lint.WithLogger(logger.Named("lint")))
	diags := linter.Check(root)

	out := cmd.OutOrStdout()
	for _, d := range diags {
		loc := d.Path
		if loc == "" {
			loc = d.NodeID
		}
		fmt.Fprintf(out, "%s [%s] %s: %s\n", severityLabel(d.Severity), d.Rule, loc, d.Message)
	}

	errs := lint.Count(diags, lint.SeverityError)
	if errs > 0 {
		return fmt.Errorf("%s: %d error(s), %d warning(s)", args[0], errs, lint.Count(diags, lint.SeverityWarning))
	}
	return nil
}
