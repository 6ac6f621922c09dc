package writer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-scripts/gitbook-crawl/internal/link"
)

// ErrFilesystem marks failures creating directories or writing page files
var ErrFilesystem = errors.New("filesystem failure")

// ErrExists is returned by Write when the target file is already present
var ErrExists = errors.New("output file already exists")

// FileWriter writes page markup under an output directory, mirroring the
// site's URL structure as <dir>/<link>.html
type FileWriter struct {
	outputDir string
	openFile  func(name string, flag int, perm os.FileMode) (io.WriteCloser, error)
}

func openFile(name string, flag int, perm os.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(name, flag, perm)
}

// New creates a new FileWriter instance. The directory itself is created
// lazily by the first Write.
func New(outputDir string) *FileWriter {
	return &FileWriter{outputDir: outputDir, openFile: openFile}
}

// Path returns the output file path for a registry key
func (w *FileWriter) Path(key string) string {
	return filepath.Join(w.outputDir, filepath.FromSlash(link.FileName(key)))
}

// ErrOutsideDir is returned for keys that would resolve outside the output
// directory, such as "../escaped". It wraps ErrFilesystem.
var ErrOutsideDir = fmt.Errorf("%w: path escapes output directory", ErrFilesystem)

// checkKey rejects keys whose file would not be rooted under the output directory
func checkKey(key string) error {
	if !filepath.IsLocal(filepath.FromSlash(link.FileName(key))) {
		return fmt.Errorf("%w: %q", ErrOutsideDir, key)
	}
	return nil
}

// Exists reports whether the output file for key is already on disk
func (w *FileWriter) Exists(key string) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	_, err := os.Stat(w.Path(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("%w: stat %s: %w", ErrFilesystem, w.Path(key), err)
	}
}

// Write stores content for key, creating parent directories as needed.
// Existing files are never overwritten.
func (w *FileWriter) Write(key, content string) (string, error) {
	path := w.Path(key)
	if err := checkKey(key); err != nil {
		return path, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return path, fmt.Errorf("%w: failed to create directory: %w", ErrFilesystem, err)
	}

	file, err := w.openFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return path, fmt.Errorf("%w: %s", ErrExists, path)
		}
		return path, fmt.Errorf("%w: failed to create file: %w", ErrFilesystem, err)
	}
	_, werr := io.WriteString(file, content)
	cerr := file.Close()
	if err := errors.Join(werr, cerr); err != nil {
		// drop partial output so the next run fetches the page again
		os.Remove(path)
		return path, fmt.Errorf("%w: failed to write %s: %w", ErrFilesystem, path, err)
	}

	return path, nil
}
