package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// GetDataDir returns the directory where Vermux stores its data (record
// databases, credential store). Checked at runtime so deployments can point
// it elsewhere without a rebuild.
// Priority: VERMUX_DATA_DIR environment variable > "./data" default
func GetDataDir() string {
	if dir := os.Getenv("VERMUX_DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}

// GetCredentialsDBPath returns the full path to the delivery-credentials
// database. Path: {DATA_DIR}/credentials.db
func GetCredentialsDBPath() string {
	return filepath.Join(GetDataDir(), "credentials.db")
}

// GetFailuresDBPath returns the full path to the failures database, which
// tracks render jobs that failed processing. Path: {DATA_DIR}/failures.db
func GetFailuresDBPath() string {
	return filepath.Join(GetDataDir(), "failures.db")
}

// GetSuccessDBPath returns the full path to the success database, which
// tracks completed render jobs. Path: {DATA_DIR}/success.db
func GetSuccessDBPath() string {
	return filepath.Join(GetDataDir(), "success.db")
}

// GetDirectServeBaseDir returns the base directory for direct file serving.
// Rendered videos delivered via the directServe backend land here and are
// served by the HTTP server. Configurable via VERMUX_SERVE_DIR for server
// administrators, not by end users.
func GetDirectServeBaseDir() string {
	if dir := os.Getenv("VERMUX_SERVE_DIR"); dir != "" {
		return dir
	}
	return "./serve"
}

// GetListenAddr returns the address the HTTP server binds to.
func GetListenAddr() string {
	if port := os.Getenv("VERMUX_PORT"); port != "" {
		return ":" + port
	}
	return ":8080"
}

// GetEncodeTimeout returns the upper bound for a single external encode
// invocation. VERMUX_ENCODE_TIMEOUT accepts a Go duration string.
func GetEncodeTimeout() time.Duration {
	if v := os.Getenv("VERMUX_ENCODE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return 10 * time.Minute
}

// GetEncodeThreads returns the thread hint passed to the external engine so
// concurrent renders do not starve each other on a shared host.
func GetEncodeThreads() int {
	if v := os.Getenv("VERMUX_FFMPEG_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 2
}

// GetCallbackSecret returns the HMAC key used to sign completion callbacks.
// Empty means callbacks are sent unsigned.
func GetCallbackSecret() []byte {
	if v := os.Getenv("VERMUX_CALLBACK_SECRET"); v != "" {
		return []byte(v)
	}
	return nil
}
