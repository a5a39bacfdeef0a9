package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"checktool/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "checktool",
	Short: "checktool - extract check fields and rename scanned check files",
	Long: `checktool reads a scanned check (image or PDF), recognizes its text with
OCR, locates the check writer's name and the check number, and renames the
file to {writer_name}_{check_number}{ext}.

Extraction uses layered regex heuristics by default; with --llm and an
OPENAI_API_KEY it asks an OpenAI model first and falls back to the regex
extractor on any failure.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
