package rename

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"checktool/internal/extract"
	"checktool/internal/logger"
)

// Plan records one rename: where the file was, the candidate name derived
// from the fields, and the collision-resolved destination.
type Plan struct {
	OriginalPath      string `json:"original_path"`
	CandidateFilename string `json:"candidate_filename"`
	FinalPath         string `json:"final_path"`
}

// Error reports a failed rename with the attempted destination. The original
// file is left untouched whenever this error is returned.
type Error struct {
	Dest string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("rename to %s failed: %v", e.Dest, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Renamer moves a processed check to its field-derived name. A single
// Renamer is safe for concurrent use: the mutex makes collision resolution
// and the move one atomic claim, so two documents with identical fields can
// never land on the same path.
type Renamer struct {
	mu  sync.Mutex
	log zerolog.Logger

	// renameFile and removeFile are stubbed in tests to force the
	// copy-then-delete fallback.
	renameFile func(src, dst string) error
	removeFile func(path string) error
}

func NewRenamer() *Renamer {
	return &Renamer{
		log:        logger.WithComponent("rename"),
		renameFile: os.Rename,
		removeFile: os.Remove,
	}
}

// Rename moves the file at path to {writer}_{number}{ext} in outputDir (or
// the source directory when outputDir is empty). Missing fields become the
// "unknown" placeholder; an existing destination gets a numeric suffix, never
// an overwrite.
func (r *Renamer) Rename(path string, fields extract.Fields, outputDir string) (*Plan, error) {
	writer := Placeholder
	if fields.WriterName != nil {
		if s := SanitizeName(*fields.WriterName); s != "" {
			writer = s
		}
	}
	number := Placeholder
	if fields.CheckNumber != nil {
		if s := SanitizeName(*fields.CheckNumber); s != "" {
			number = s
		}
	}

	dir := filepath.Dir(path)
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, &Error{Dest: outputDir, Err: err}
		}
		dir = outputDir
	}

	candidate := fmt.Sprintf("%s_%s%s", writer, number, filepath.Ext(path))

	r.mu.Lock()
	final := resolveCollision(dir, candidate)
	err := r.move(path, final)
	r.mu.Unlock()
	if err != nil {
		return nil, &Error{Dest: final, Err: err}
	}

	r.log.Info().
		Str("from", path).
		Str("to", final).
		Str("writer", writer).
		Str("number", number).
		Msg("check renamed")

	return &Plan{
		OriginalPath:      path,
		CandidateFilename: candidate,
		FinalPath:         final,
	}, nil
}

// resolveCollision appends _1, _2, ... to the stem until the path is free.
func resolveCollision(dir, filename string) string {
	target := filepath.Join(dir, filename)
	if !exists(target) {
		return target
	}
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for i := 1; ; i++ {
		target = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if !exists(target) {
			return target
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

// move renames within a filesystem and falls back to copy-then-delete across
// filesystems. The original is removed only after the copy has been written
// and closed successfully.
func (r *Renamer) move(src, dst string) error {
	if err := r.renameFile(src, dst); err == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := r.removeFile(src); err != nil {
		// The destination is already complete; reporting a failed rename
		// here would invite a retry and a spurious _1 duplicate.
		r.log.Warn().Err(err).Str("src", src).Msg("copied but could not remove the original")
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	// O_EXCL keeps the no-overwrite guarantee even if the destination
	// appeared after collision resolution.
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}
