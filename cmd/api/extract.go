package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"resume-skills/internal/cv"
)

var extractMode string

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract skills from a local résumé file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mode, err := cv.ParseMode(extractMode)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "open %s", args[0])
		}
		defer f.Close()

		env, err := initPipeline(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Extractor.Handle(ctx, cv.Upload{
			Filename: filepath.Base(args[0]),
			Content:  f,
		}, mode)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string][]string{"extractedSkills": res.Skills})
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractMode, "mode", string(cv.ModeDeterministic), `extraction mode: "deterministic" or "llm"`)
	rootCmd.AddCommand(extractCmd)
}
