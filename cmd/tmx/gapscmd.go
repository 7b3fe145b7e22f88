package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tmx/internal/output"
	"tmx/internal/store"
)

var (
	gapsSeverity string
	gapsStore    bool
	gapsFormat   string
)

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Detect traceability gaps",
	Long: `Detect structural weaknesses in the traceability matrix.

Reports orphaned code, features, requirements and risks, missing and
weak links, broken chains, and duplicate links, with severities and
recommendations.

Examples:
  tmx gaps
  tmx gaps --severity=high
  tmx gaps --format=json`,
	Run: runGaps,
}

func init() {
	gapsCmd.Flags().StringVar(&gapsSeverity, "severity", "", "Only show gaps at this severity (low, medium, high, critical)")
	gapsCmd.Flags().BoolVar(&gapsStore, "store", false, "Persist gap records to the trace database")
	gapsCmd.Flags().StringVar(&gapsFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(gapsCmd)
}

func runGaps(cmd *cobra.Command, args []string) {
	e, err := newEngine()
	if err != nil {
		fail(err)
	}

	m, in := e.buildMatrix(false)
	report := e.analyzeGaps(m, in)

	output.SortGaps(report.Gaps)

	if gapsSeverity != "" {
		filtered := report.Gaps[:0]
		for _, g := range report.Gaps {
			if g.Severity == gapsSeverity {
				filtered = append(filtered, g)
			}
		}
		report.Gaps = filtered
	}

	if gapsStore {
		db, err := store.Open(e.root, e.logger)
		if err != nil {
			fail(err)
		}
		defer db.Close()

		if err := db.SaveGaps(m.AnalysisID, report.Gaps); err != nil {
			fail(err)
		}
	}

	out, err := FormatResponse(report, OutputFormat(gapsFormat))
	if err != nil {
		fail(err)
	}
	fmt.Println(out)
}
