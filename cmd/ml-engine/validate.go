package main

import (
	"log"

	"github.com/spf13/cobra"

	"ManetLens/internal/config"
)

var (
	validateConfigPath string
	validateSchemaPath string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file without running anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateSchemaPath != "" {
			if err := config.ValidateWithCue(validateConfigPath, validateSchemaPath); err != nil {
				return err
			}
		}
		if _, err := config.LoadConfig(validateConfigPath); err != nil {
			return err
		}
		log.Printf("%s is valid.", validateConfigPath)
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateConfigPath, "config", "configs/config.yaml", "Path to configuration YAML")
	validateCmd.Flags().StringVar(&validateSchemaPath, "schema", "configs/schema.cue", "Path to CUE schema file")
}
