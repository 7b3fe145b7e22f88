package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tmx/internal/model"
	"tmx/internal/output"
)

var (
	linksKind   string
	linksFormat string
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "List the constructed traceability links",
	Long: `List the links of the built matrix in a stable order, optionally
filtered by link kind.

Examples:
  tmx links
  tmx links --kind=mitigated_by
  tmx links --format=json`,
	Run: runLinks,
}

func init() {
	linksCmd.Flags().StringVar(&linksKind, "kind", "", "Only show links of this kind (implements, derives_to, mitigated_by)")
	linksCmd.Flags().StringVar(&linksFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(linksCmd)
}

func runLinks(cmd *cobra.Command, args []string) {
	e, err := newEngine()
	if err != nil {
		fail(err)
	}

	m, _ := e.buildMatrix(false)

	links := make([]model.TraceLink, 0, len(m.Links))
	for _, l := range m.Links {
		if linksKind != "" && string(l.Kind) != linksKind {
			continue
		}
		links = append(links, l)
	}
	output.SortLinks(links)

	if linksFormat == string(FormatJSON) {
		out, err := FormatResponse(links, FormatJSON)
		if err != nil {
			fail(err)
		}
		fmt.Println(out)
		return
	}

	for _, l := range links {
		fmt.Printf("%-12s %-40s -> %-12s %-10s %-14s %s\n",
			l.SourceKind, l.SourceID,
			l.TargetKind, l.TargetID,
			l.Kind,
			output.FormatFloat(l.Confidence),
		)
	}
}
