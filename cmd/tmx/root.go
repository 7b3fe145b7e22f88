package main

import (
	"os"

	"github.com/spf13/cobra"

	"tmx/internal/config"
	"tmx/internal/logging"
)

var (
	// rootFlag is the project root holding .tmx state
	rootFlag string
	// snapshotFlag is the entity snapshot file path
	snapshotFlag string
)

var rootCmd = &cobra.Command{
	Use:   "tmx",
	Short: "tmx - traceability matrix toolkit",
	Long: `tmx links evidence of implemented source-code behavior to declared
product requirements and safety risks, producing an auditable traceability
matrix for regulatory review of safety-critical device software.`,
	Version: version,
}

const version = "0.3.0"

func init() {
	rootCmd.SetVersionTemplate("tmx version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Project root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&snapshotFlag, "snapshot", "", "Entity snapshot file (.yaml or .json)")
}

// resolveRoot determines the project root from the CLI flag or the
// working directory
func resolveRoot() string {
	if rootFlag != "" {
		return rootFlag
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// resolveSnapshot determines the snapshot path from the CLI flag, the
// TMX_SNAPSHOT env var, or the default location under the project root
func resolveSnapshot(root string) string {
	if snapshotFlag != "" {
		return snapshotFlag
	}
	if env := os.Getenv("TMX_SNAPSHOT"); env != "" {
		return env
	}
	return root + "/" + config.ConfigDirName + "/snapshot.yaml"
}

// newLogger creates the command logger. Logs go to stderr so stdout
// stays machine-parseable under --format=json.
func newLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(cfg.Logging.Level),
		Output: os.Stderr,
	})
}
