package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"vermux/logger"
)

// maxUploadSize bounds the multipart form held in memory before spilling
// to disk.
const maxUploadSize = 512 << 20 // 512 MB

// createJobDir creates the per-request temp directory named by token
func createJobDir(token string) (string, error) {
	dir := filepath.Join(os.TempDir(), token)
	return dir, os.MkdirAll(dir, 0755)
}

// saveFormFile copies one uploaded part into dir under filename and
// returns the stored name.
func saveFormFile(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return header.Filename, writeUpload(dir, header.Filename, file)
}

func writeUpload(dir, filename string, src multipart.File) error {
	destPath := filepath.Join(dir, filepath.Base(filename))
	dest, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		return fmt.Errorf("failed to save %s: %w", filename, err)
	}
	return nil
}

// respondJSON writes v as a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}
