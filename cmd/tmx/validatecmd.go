package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tmx/internal/matrix"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the snapshot and matrix",
	Long: `Validate the entity snapshot and the matrix built from it.

Lists snapshot shape issues and matrix-level advisory issues. Dangling
derivation or relation ids are not errors; they surface as gaps.

Examples:
  tmx validate
  tmx validate --snapshot=entities.yaml`,
	Run: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	e, err := newEngine()
	if err != nil {
		fail(err)
	}

	issues := e.snap.Validate()
	for _, issue := range issues {
		fmt.Printf("snapshot: %s\n", issue)
	}

	m, _ := e.buildMatrix(false)
	matrixIssues := matrix.Validate(m, e.cfg.Thresholds)
	for _, issue := range matrixIssues {
		fmt.Printf("matrix: %s\n", issue)
	}

	if len(issues) == 0 && len(matrixIssues) == 0 {
		fmt.Println("No issues found")
		return
	}
	os.Exit(1)
}
