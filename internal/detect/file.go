package detect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OpenUpload opens a file from disk for submission. An empty path means
// nothing was selected and yields a nil Upload with no error, so the
// controller reports the validation message.
func OpenUpload(path string) (*Upload, func() error, error) {
	if strings.TrimSpace(path) == "" {
		return nil, func() error { return nil }, nil
	}

	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}

	// #nosec G304 - path is selected by the user
	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file %s: %w", cleanPath, err)
	}

	return &Upload{Name: cleanPath, Content: f}, f.Close, nil
}
