package downloads

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Dir stores downloaded documents in a local directory.
type Dir struct {
	basePath string
	log      *slog.Logger
}

// NewDir creates the directory if needed and returns a store rooted there.
func NewDir(path string, logger *slog.Logger) (*Dir, error) {
	if path == "" {
		return nil, fmt.Errorf("downloads: directory must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("downloads: resolve %q: %w", path, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("downloads: create %q: %w", abs, err)
	}

	logger.Debug("download directory ready", slog.String("path", abs))
	return &Dir{basePath: abs, log: logger}, nil
}

// Path returns the absolute directory.
func (d *Dir) Path() string { return d.basePath }

// Save writes data under name, replacing any earlier file of that name, and
// returns the absolute path written.
func (d *Dir) Save(name string, data []byte) (string, error) {
	clean := filepath.Base(filepath.Clean("/" + name))
	if clean == "/" || clean == "." || strings.TrimSpace(clean) == "" {
		return "", fmt.Errorf("downloads: invalid file name %q", name)
	}
	target := filepath.Join(d.basePath, clean)

	tmp, err := os.CreateTemp(d.basePath, "."+clean+".*")
	if err != nil {
		return "", fmt.Errorf("downloads: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("downloads: write %q: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("downloads: close %q: %w", target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("downloads: rename to %q: %w", target, err)
	}

	d.log.Info("document saved", slog.String("path", target), slog.Int("bytes", len(data)))
	return target, nil
}

// Open reads a previously saved document.
func (d *Dir) Open(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.basePath, filepath.Base(filepath.Clean("/"+name))))
	if err != nil {
		return nil, fmt.Errorf("downloads: read %q: %w", name, err)
	}
	return data, nil
}
