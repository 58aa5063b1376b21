package compose

import (
	"os"
	"sync"

	"vermux/logger"
)

// ArtifactLifecycle tracks every temp path the pipeline owns for one
// request. Uploaded inputs belong to the upload layer and are never
// registered here; the rewritten subtitle file and the rendered output are.
type ArtifactLifecycle struct {
	mu      sync.Mutex
	paths   []string
	cleaned bool
}

// NewArtifactLifecycle opens an empty registry at pipeline start.
func NewArtifactLifecycle() *ArtifactLifecycle {
	return &ArtifactLifecycle{}
}

// Register records a pipeline-owned path for deletion at cleanup.
func (l *ArtifactLifecycle) Register(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths = append(l.paths, path)
}

// Cleanup deletes every registered path. It is idempotent and best-effort:
// a failed deletion is logged and does not prevent attempting the rest.
func (l *ArtifactLifecycle) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cleaned {
		return
	}
	l.cleaned = true

	for _, path := range l.paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Errorf("failed to remove artifact %s: %v", path, err)
		}
	}
	l.paths = nil
}
