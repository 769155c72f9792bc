package main

import (
	"log"

	"github.com/spf13/cobra"

	"ManetLens/internal/config"
	"ManetLens/internal/engine/manager"
)

var (
	runConfigPath string
	runSchemaPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the configured analyses over the simulation logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runSchemaPath != "" {
			if err := config.ValidateWithCue(runConfigPath, runSchemaPath); err != nil {
				return err
			}
		}

		cfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return err
		}
		log.Println("Configuration loaded successfully.")

		m, err := manager.New(cfg)
		if err != nil {
			return err
		}

		report, err := m.Run()
		if err != nil {
			return err
		}

		log.Printf("Analysis complete: %d normal nodes, %d spine nodes, %d warnings.",
			len(report.NormalIDs), len(report.SpineIDs), len(report.Warnings))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "configs/config.yaml", "Path to configuration YAML")
	runCmd.Flags().StringVar(&runSchemaPath, "schema", "", "Optional CUE schema to validate the config against")
}
