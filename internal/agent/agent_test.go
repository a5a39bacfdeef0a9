package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"checktool/internal/extract"
	"checktool/internal/ocr"
)

// fakeOCR returns canned text instead of running recognition.
type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) ExtractText(_ context.Context, _ string) (*ocr.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ocr.Result{Text: f.text, Pages: 1, Method: "fake"}, nil
}

func writeCheck(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("image bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(Options{Extractor: extract.NewRegexExtractor()}); err == nil {
		t.Error("expected error when OCR is missing")
	}
	if _, err := New(Options{OCR: &fakeOCR{}}); err == nil {
		t.Error("expected error when extractor is missing")
	}
}

func TestProcess_RenamesFromRecognizedText(t *testing.T) {
	dir := t.TempDir()
	path := writeCheck(t, dir, "scan001.jpg")

	text := "PAY TO THE ORDER OF John Smith        $500.00\n" +
		"FIRST NATIONAL BANK\n" +
		"CHECK NO. 4521\n"
	a, err := New(Options{OCR: &fakeOCR{text: text}, Extractor: extract.NewRegexExtractor()})
	if err != nil {
		t.Fatal(err)
	}

	result, err := a.Process(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := filepath.Join(dir, "john_smith_4521.jpg")
	if result.Plan.FinalPath != want {
		t.Errorf("final path = %q, want %q", result.Plan.FinalPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("original still present: %v", err)
	}
}

func TestProcess_NoisyTextFallsBackToPlaceholders(t *testing.T) {
	dir := t.TempDir()
	path := writeCheck(t, dir, "scan002.jpg")

	a, err := New(Options{OCR: &fakeOCR{text: "%%% *** ???\n|||"}, Extractor: extract.NewRegexExtractor()})
	if err != nil {
		t.Fatal(err)
	}

	result, err := a.Process(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := filepath.Join(dir, "unknown_unknown.jpg")
	if result.Plan.FinalPath != want {
		t.Errorf("final path = %q, want %q", result.Plan.FinalPath, want)
	}
}

func TestProcess_OCRErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	path := writeCheck(t, dir, "scan003.jpg")

	a, err := New(Options{OCR: &fakeOCR{err: ocr.ErrNoText}, Extractor: extract.NewRegexExtractor()})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := a.Process(context.Background(), path); !errors.Is(err, ocr.ErrNoText) {
		t.Errorf("err = %v, want ErrNoText", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Errorf("original must be untouched on failure: %v", statErr)
	}
}

func TestProcess_WritesToOutputDir(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "renamed")
	path := writeCheck(t, srcDir, "scan004.png")

	text := "Pay to the order of Jane Doe\nNo. 1023\n"
	a, err := New(Options{
		OCR:       &fakeOCR{text: text},
		Extractor: extract.NewRegexExtractor(),
		OutputDir: outDir,
	})
	if err != nil {
		t.Fatal(err)
	}

	result, err := a.Process(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := filepath.Join(outDir, "jane_doe_1023.png")
	if result.Plan.FinalPath != want {
		t.Errorf("final path = %q, want %q", result.Plan.FinalPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
}
