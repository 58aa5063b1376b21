package delivery

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"vermux/logger"
)

// toDirectServe writes the rendered video into the local serving tree, from
// where the HTTP server exposes it directly.
func toDirectServe(_ context.Context, accessInfo map[string]string, reader io.Reader) error {
	baseDir := accessInfo["baseDir"]   // base directory files are served from
	folder := accessInfo["folder"]     // subfolder inside the base directory
	filename := accessInfo["filename"] // target filename

	fullDir := filepath.Join(baseDir, folder)
	fullPath := filepath.Join(fullDir, filename)

	if err := os.MkdirAll(fullDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", fullPath, err)
	}

	logger.Infof("Delivered '%s' to serving path '%s'", filename, fullPath)
	return nil
}
