package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tmx/internal/coverage"
)

var coverageFormat string

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Compute coverage metrics",
	Long: `Compute normalized coverage ratios and the completeness score.

Reports code, feature, requirement, and end-to-end coverage, the mean
link confidence, and the overall completeness score.

Examples:
  tmx coverage
  tmx coverage --format=json`,
	Run: runCoverage,
}

func init() {
	coverageCmd.Flags().StringVar(&coverageFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(coverageCmd)
}

func runCoverage(cmd *cobra.Command, args []string) {
	e, err := newEngine()
	if err != nil {
		fail(err)
	}

	m, in := e.buildMatrix(false)

	calc := coverage.NewCalculator(e.logger)
	metrics := calc.Compute(m, in)

	out, err := FormatResponse(metrics, OutputFormat(coverageFormat))
	if err != nil {
		fail(err)
	}
	fmt.Println(out)
}
