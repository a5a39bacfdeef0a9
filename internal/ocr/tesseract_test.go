package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// stubRunner returns canned output instead of running the OCR binaries.
type stubRunner struct {
	stdout string
	stderr string
	err    error
	calls  [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	return []byte(s.stdout), []byte(s.stderr), s.err
}

func tempImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("fake image bytes"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"check.jpg", FormatImage},
		{"check.JPEG", FormatImage},
		{"scan.png", FormatImage},
		{"scan.tiff", FormatImage},
		{"doc.pdf", FormatPDF},
		{"DOC.PDF", FormatPDF},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if err != nil {
			t.Errorf("DetectFormat(%q) error: %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDetectFormat_Unsupported(t *testing.T) {
	for _, path := range []string{"notes.txt", "archive.zip", "noextension"} {
		if _, err := DetectFormat(path); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("DetectFormat(%q) = %v, want ErrUnsupportedFormat", path, err)
		}
	}
}

func TestExtractText_Image(t *testing.T) {
	runner := &stubRunner{stdout: "PAY TO THE ORDER OF John Smith\n#4521\n"}
	e := NewTesseractExtractorWithRunner(TesseractConfig{}, runner)

	result, err := e.ExtractText(context.Background(), tempImage(t, "check.jpg"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != "image-ocr" {
		t.Errorf("method = %q, want image-ocr", result.Method)
	}
	if result.Pages != 1 {
		t.Errorf("pages = %d, want 1", result.Pages)
	}
	if result.Text != "PAY TO THE ORDER OF John Smith\n#4521\n" {
		t.Errorf("text = %q", result.Text)
	}

	// tesseract <file> stdout -l eng
	if len(runner.calls) != 1 || runner.calls[0][0] != "tesseract" {
		t.Fatalf("calls = %v", runner.calls)
	}
	if got := runner.calls[0][2:]; got[0] != "stdout" || got[1] != "-l" || got[2] != "eng" {
		t.Errorf("tesseract args = %v", got)
	}
}

func TestExtractText_EmptyOutputIsNoText(t *testing.T) {
	runner := &stubRunner{stdout: "  \n\t \n"}
	e := NewTesseractExtractorWithRunner(TesseractConfig{}, runner)

	_, err := e.ExtractText(context.Background(), tempImage(t, "blank.jpg"))
	if !errors.Is(err, ErrNoText) {
		t.Errorf("err = %v, want ErrNoText", err)
	}
}

func TestExtractText_UnsupportedExtension(t *testing.T) {
	e := NewTesseractExtractorWithRunner(TesseractConfig{}, &stubRunner{})

	_, err := e.ExtractText(context.Background(), "statement.txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExtractText_MissingFile(t *testing.T) {
	e := NewTesseractExtractorWithRunner(TesseractConfig{}, &stubRunner{})

	if _, err := e.ExtractText(context.Background(), "/does/not/exist.jpg"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtractText_TesseractFailure(t *testing.T) {
	runner := &stubRunner{stderr: "could not initialize tesseract", err: errors.New("exit status 1")}
	e := NewTesseractExtractorWithRunner(TesseractConfig{}, runner)

	_, err := e.ExtractText(context.Background(), tempImage(t, "check.jpg"))
	if !errors.Is(err, ErrOCRFailed) {
		t.Errorf("err = %v, want ErrOCRFailed", err)
	}
}

func TestExtractText_CorruptPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := NewTesseractExtractorWithRunner(TesseractConfig{}, &stubRunner{})

	_, err := e.ExtractText(context.Background(), path)
	if !errors.Is(err, ErrInvalidPDF) {
		t.Errorf("err = %v, want ErrInvalidPDF", err)
	}
}
