package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"checktool/internal/agent"
	"checktool/internal/config"
	"checktool/internal/logger"
)

var renameCmd = &cobra.Command{
	Use:   "rename [check-file]",
	Short: "Extract check fields and rename the file",
	Long: `Process a scanned check (image or PDF), extract the writer name and check
number, and rename the file to {writer_name}_{check_number}{ext}.

Fields that cannot be extracted become the "unknown" placeholder; that still
counts as success, since a renamed file is produced. An existing file at the
destination is never overwritten - a numeric suffix is appended instead.`,
	Example: `  # Rename in place using regex extraction
  checktool rename check.jpg

  # Ask an OpenAI model first, falling back to regex on any failure
  checktool rename check.jpg --llm

  # Move the renamed file into a separate directory
  checktool rename check.pdf --output-dir ./processed`,
	Args: cobra.ExactArgs(1),
	RunE: runRename,
}

func init() {
	rootCmd.AddCommand(renameCmd)

	renameCmd.Flags().StringP("output-dir", "o", "", "Directory for the renamed file (default: source directory)")
	renameCmd.Flags().Bool("llm", false, "Use an OpenAI model for extraction (requires OPENAI_API_KEY)")
	renameCmd.Flags().String("backend", "", "OCR backend: tesseract or vision (default: OCR_BACKEND)")
	renameCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runRename(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("rename-cmd")

	outputDir, _ := cmd.Flags().GetString("output-dir")
	useLLM, _ := cmd.Flags().GetBool("llm")
	backend, _ := cmd.Flags().GetString("backend")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	path := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	textExtractor, err := newTextExtractor(ctx, cfg, backend, log)
	if err != nil {
		return err
	}
	// The Vision backend holds a gRPC connection.
	if closer, ok := textExtractor.(io.Closer); ok {
		defer closer.Close()
	}

	a, err := agent.New(agent.Options{
		OCR:       textExtractor,
		Extractor: newFieldExtractor(cfg, useLLM, log),
		OutputDir: outputDir,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("file", path).
		Bool("llm", useLLM).
		Msg("processing check")

	result, err := a.Process(ctx, path)
	if err != nil {
		return translateError(err, log)
	}

	fmt.Printf("Renamed to: %s\n", result.Plan.FinalPath)
	fmt.Printf("  Writer name:  %s\n", fieldOrNotFound(result.Fields.WriterName))
	fmt.Printf("  Check number: %s\n", fieldOrNotFound(result.Fields.CheckNumber))
	return nil
}
