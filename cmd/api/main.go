package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resume-skills/internal/config"
)

// @title Résumé Skill Extraction API
// @version 1.0
// @description Extracts skills from PDF and DOCX résumés by vocabulary matching or via an LLM

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "resume-skills",
	Short: "Extract skills from résumés",
	Long:  "Reads PDF and DOCX résumés and extracts skills by matching a known vocabulary or by asking an LLM.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
