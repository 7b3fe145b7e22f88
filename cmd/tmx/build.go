package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tmx/internal/matrix"
	"tmx/internal/store"
)

var (
	buildForce   bool
	buildNoStore bool
	buildFormat  string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the traceability matrix",
	Long: `Build the traceability matrix from the entity snapshot.

Constructs single-hop links (code→feature, feature→user requirement,
user→software requirement, software requirement→risk), composes the
transitive code→software-requirement closure, and persists one record per
link to the trace database.

Examples:
  tmx build
  tmx build --force
  tmx build --no-store --format=json`,
	Run: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "Rebuild even if a cached matrix exists")
	buildCmd.Flags().BoolVar(&buildNoStore, "no-store", false, "Skip persisting links to the trace database")
	buildCmd.Flags().StringVar(&buildFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) {
	start := time.Now()

	e, err := newEngine()
	if err != nil {
		fail(err)
	}

	m, _ := e.buildMatrix(buildForce)

	if issues := matrix.Validate(m, e.cfg.Thresholds); len(issues) > 0 {
		for _, issue := range issues {
			e.logger.Warn("Matrix issue", map[string]interface{}{
				"issue": issue,
			})
		}
	}

	if !buildNoStore {
		db, err := store.Open(e.root, e.logger)
		if err != nil {
			fail(err)
		}
		defer db.Close()

		if err := db.SaveMatrix(m); err != nil {
			fail(err)
		}
	}

	out, err := FormatResponse(m, OutputFormat(buildFormat))
	if err != nil {
		fail(err)
	}
	fmt.Println(out)

	e.logger.Debug("Build completed", map[string]interface{}{
		"links":    m.Summary.Links,
		"duration": time.Since(start).Milliseconds(),
	})
}
