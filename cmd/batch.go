package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"checktool/internal/agent"
	"checktool/internal/config"
	"checktool/internal/logger"
	"checktool/internal/ocr"
)

var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Extract and rename every check file in a directory",
	Long: `Process all supported check files (images and PDFs) directly inside the
given directory. Each file runs through the same extract-and-rename pipeline
as the rename command; failures are logged per file and do not stop the
batch.`,
	Example: `  # Rename every check in ./scans in place
  checktool batch ./scans

  # Move renamed checks into ./processed, four files at a time
  checktool batch ./scans --output-dir ./processed --concurrency 4`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("output-dir", "o", "", "Directory for renamed files (default: source directory)")
	batchCmd.Flags().Bool("llm", false, "Use an OpenAI model for extraction (requires OPENAI_API_KEY)")
	batchCmd.Flags().String("backend", "", "OCR backend: tesseract or vision (default: OCR_BACKEND)")
	batchCmd.Flags().Int("concurrency", 4, "Number of files processed in parallel")
	batchCmd.Flags().Int("timeout", 300, "Per-file processing timeout in seconds")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch-cmd")

	outputDir, _ := cmd.Flags().GetString("output-dir")
	useLLM, _ := cmd.Flags().GetBool("llm")
	backend, _ := cmd.Flags().GetString("backend")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	if concurrency < 1 {
		concurrency = 1
	}

	dir := args[0]
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !ocr.SupportedFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported check files in %s", dir)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Parent context carries signal cancellation; each file gets its own
	// timeout below. Sized generously so the parent never wins the race.
	parent, cancel := createContextWithTimeout(timeoutSecs*len(files)+60, log)
	defer cancel()

	textExtractor, err := newTextExtractor(parent, cfg, backend, log)
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
		Int("files", len(files)).
		Int("concurrency", concurrency).
		Msg("starting batch")

	var processed, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for _, file := range files {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(parent, time.Duration(timeoutSecs)*time.Second)
			defer cancel()

			result, err := a.Process(ctx, file)
			if err != nil {
				failed.Add(1)
				log.Error().Err(err).Str("file", file).Msg("file failed")
				fmt.Fprintf(os.Stderr, "FAILED  %s: %v\n", file, translateError(err, log))
				return nil
			}
			processed.Add(1)
			fmt.Printf("renamed %s -> %s\n", file, result.Plan.FinalPath)
			return nil
		})
	}
	_ = g.Wait()

	fmt.Printf("\n%d renamed, %d failed\n", processed.Load(), failed.Load())
	if processed.Load() == 0 {
		return fmt.Errorf("all %d files failed", failed.Load())
	}
	return nil
}
