package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"checktool/internal/agent"
	"checktool/internal/config"
	"checktool/internal/logger"
)

var extractCmd = &cobra.Command{
	Use:   "extract [check-file]",
	Short: "Extract check fields without renaming",
	Long: `Run OCR and field extraction on a scanned check and print the writer name
and check number without touching the file. Useful for inspecting what a
rename would produce.`,
	Example: `  # Show the extracted fields
  checktool extract check.jpg

  # JSON output with OCR metadata
  checktool extract check.pdf --json --metadata`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// extractOutput is the JSON structure printed with --json.
type extractOutput struct {
	File        string  `json:"file"`
	WriterName  *string `json:"writer_name"`
	CheckNumber *string `json:"check_number"`
	Pages       int     `json:"pages,omitempty"`
	Method      string  `json:"method,omitempty"`
	Duration    string  `json:"duration,omitempty"`
	TextLength  int     `json:"text_length,omitempty"`
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().Bool("llm", false, "Use an OpenAI model for extraction (requires OPENAI_API_KEY)")
	extractCmd.Flags().String("backend", "", "OCR backend: tesseract or vision (default: OCR_BACKEND)")
	extractCmd.Flags().Bool("json", false, "Output as JSON")
	extractCmd.Flags().BoolP("metadata", "m", false, "Include OCR metadata in output")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract-cmd")

	useLLM, _ := cmd.Flags().GetBool("llm")
	backend, _ := cmd.Flags().GetString("backend")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	includeMetadata, _ := cmd.Flags().GetBool("metadata")
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
	})
	if err != nil {
		return err
	}

	fields, ocrResult, err := a.Extract(ctx, path)
	if err != nil {
		return translateError(err, log)
	}

	if jsonOutput {
		out := extractOutput{
			File:        path,
			WriterName:  fields.WriterName,
			CheckNumber: fields.CheckNumber,
		}
		if includeMetadata {
			out.Pages = ocrResult.Pages
			out.Method = ocrResult.Method
			out.Duration = ocrResult.Duration.String()
			out.TextLength = len(ocrResult.Text)
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	}

	fmt.Printf("Writer name:  %s\n", fieldOrNotFound(fields.WriterName))
	fmt.Printf("Check number: %s\n", fieldOrNotFound(fields.CheckNumber))
	if includeMetadata {
		fmt.Printf("Pages:        %d\n", ocrResult.Pages)
		fmt.Printf("Method:       %s\n", ocrResult.Method)
		fmt.Printf("Duration:     %v\n", ocrResult.Duration.Round(time.Millisecond))
	}
	return nil
}
