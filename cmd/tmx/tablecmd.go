package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tmx/internal/output"
	"tmx/internal/table"
)

var tableFormat string

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the flattened traceability table",
	Long: `Print the denormalized traceability table, one row per traversable
chain. Every evidence entry appears at least once; unreachable hops are
left empty.

Examples:
  tmx table
  tmx table --format=json`,
	Run: runTable,
}

func init() {
	tableCmd.Flags().StringVar(&tableFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(tableCmd)
}

func runTable(cmd *cobra.Command, args []string) {
	e, err := newEngine()
	if err != nil {
		fail(err)
	}

	m, in := e.buildMatrix(false)

	projector := table.NewProjector(e.logger)
	rows := projector.Project(m, in)
	output.SortRows(rows)

	if tableFormat == string(FormatJSON) {
		out, err := FormatResponse(rows, FormatJSON)
		if err != nil {
			fail(err)
		}
		fmt.Println(out)
		return
	}

	for _, row := range rows {
		fmt.Printf("%-40s %-10s %-8s %-8s %-8s %s\n",
			row.CodeRef.Key(),
			row.FeatureID,
			orDash(row.UserRequirementID),
			orDash(row.SoftwareRequirementID),
			orDash(row.RiskID),
			output.FormatFloat(row.Confidence),
		)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
