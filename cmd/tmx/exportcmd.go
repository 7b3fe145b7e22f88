package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tmx/internal/export"
	"tmx/internal/output"
	"tmx/internal/table"
)

var (
	exportFormat string
	exportOut    string
	exportBundle string
	exportGaps   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the matrix table and gap report",
	Long: `Export the flattened traceability table and gap report.

Renders one row per traversable chain as CSV, Markdown, or JSON, or
writes a gzip-compressed bundle containing all artifacts.

Examples:
  tmx export --format=csv > matrix.csv
  tmx export --format=markdown --out=matrix.md
  tmx export --bundle=trace-bundle.tar.gz`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format (csv, markdown, json)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Write to file instead of stdout")
	exportCmd.Flags().StringVar(&exportBundle, "bundle", "", "Write a compressed bundle to this path")
	exportCmd.Flags().BoolVar(&exportGaps, "gaps", true, "Include the gap report")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	e, err := newEngine()
	if err != nil {
		fail(err)
	}

	m, in := e.buildMatrix(false)

	projector := table.NewProjector(e.logger)
	rows := projector.Project(m, in)
	output.SortRows(rows)

	report := e.analyzeGaps(m, in)
	output.SortGaps(report.Gaps)
	if !exportGaps {
		report = nil
	}

	exporter := export.NewExporter(e.logger)

	if exportBundle != "" {
		if err := exporter.WriteBundle(exportBundle, m.AnalysisID, rows, report); err != nil {
			fail(err)
		}
		fmt.Printf("Bundle written to %s\n", exportBundle)
		return
	}

	w := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			fail(err)
		}
		defer f.Close()
		w = f
	}

	switch export.Format(exportFormat) {
	case export.FormatCSV:
		if err := exporter.WriteRowsCSV(w, rows); err != nil {
			fail(err)
		}
	case export.FormatMarkdown:
		fmt.Fprint(w, exporter.FormatMarkdown(m.AnalysisID, rows, report))
	case export.FormatJSON:
		doc, err := exporter.FormatJSON(m.AnalysisID, rows, report)
		if err != nil {
			fail(err)
		}
		fmt.Fprintln(w, string(doc))
	default:
		fail(fmt.Errorf("unsupported export format %q", exportFormat))
	}
}
