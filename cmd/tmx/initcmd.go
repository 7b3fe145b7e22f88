package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tmx/internal/config"
	"tmx/internal/policy"
	"tmx/internal/snapshot"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize tmx in a project",
	Long: `Create the .tmx directory with default configuration, the default
gap policy, and a starter snapshot.

Examples:
  tmx init
  tmx init --force`,
	Run: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	root := resolveRoot()
	dir := filepath.Join(root, config.ConfigDirName)

	cfgPath := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(cfgPath); err == nil && !initForce {
		fail(fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath))
	}

	if err := config.Save(root, config.DefaultConfig()); err != nil {
		fail(err)
	}

	if err := policy.Save(filepath.Join(dir, "policy.toml"), policy.Default()); err != nil {
		fail(err)
	}

	snapPath := filepath.Join(dir, "snapshot.yaml")
	if _, err := os.Stat(snapPath); os.IsNotExist(err) || initForce {
		starter := &snapshot.Snapshot{AnalysisID: "run-001"}
		if err := snapshot.Save(snapPath, starter); err != nil {
			fail(err)
		}
	}

	fmt.Printf("Initialized tmx in %s\n", dir)
}
