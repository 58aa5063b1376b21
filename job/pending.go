package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vermux/logger"
)

// State represents the current state of a render job
type State int

const (
	StatePending State = iota
	StateProcessing
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var (
	pendingJobs []string                              // directory paths with pending jobs
	activeJobs  = make(map[string]context.CancelFunc) // token -> cancel function
	jobStates   = make(map[string]State)              // token -> job state
	mu          sync.RWMutex
)

// AddPendingJob adds a job directory to the pending list
func AddPendingJob(dir string) {
	token := filepath.Base(dir)
	mu.Lock()
	defer mu.Unlock()
	pendingJobs = append(pendingJobs, dir)
	jobStates[token] = StatePending
}

// RemovePendingJob removes a job directory from the pending list
func RemovePendingJob(dir string) {
	mu.Lock()
	defer mu.Unlock()
	for i, p := range pendingJobs {
		if p == dir {
			pendingJobs = append(pendingJobs[:i], pendingJobs[i+1:]...)
			break
		}
	}
}

// GetPendingJobs returns a copy of the pending jobs list
func GetPendingJobs() []string {
	mu.RLock()
	defer mu.RUnlock()
	jobs := make([]string, len(pendingJobs))
	copy(jobs, pendingJobs)
	return jobs
}

// Cancel cancels a job by token. Only pending jobs can be cancelled; an
// in-flight encode runs to completion or timeout.
func Cancel(token string) error {
	mu.Lock()
	defer mu.Unlock()

	state, exists := jobStates[token]
	if !exists {
		return fmt.Errorf("job with token %s not found", token)
	}

	switch state {
	case StateCompleted:
		return fmt.Errorf("job with token %s is already completed", token)
	case StateFailed:
		return fmt.Errorf("job with token %s has already failed", token)
	case StateCancelled:
		return fmt.Errorf("job with token %s is already cancelled", token)
	case StateProcessing:
		return fmt.Errorf("job with token %s is currently processing and cannot be cancelled", token)
	case StatePending:
		cancel, active := activeJobs[token]
		if active {
			cancel()
			delete(activeJobs, token)
		}
		jobStates[token] = StateCancelled
		return nil
	default:
		return fmt.Errorf("job with token %s is in unknown state", token)
	}
}

// GetState returns the current state of a job
func GetState(token string) (State, bool) {
	mu.RLock()
	defer mu.RUnlock()
	state, exists := jobStates[token]
	return state, exists
}

// ScanForPendingJobs scans the temp area for job folders with
// instructions.json left behind by a previous run.
func ScanForPendingJobs() error {
	tempDir := os.TempDir()
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirPath := filepath.Join(tempDir, entry.Name())
		instrPath := filepath.Join(dirPath, instructionsFile)
		if _, err := os.Stat(instrPath); err == nil {
			AddPendingJob(dirPath)
		}
	}
	return nil
}

// runJob processes a single job directory and tracks its state
func runJob(jobDir string) error {
	token := filepath.Base(jobDir)

	mu.Lock()
	if jobStates[token] == StateCancelled {
		mu.Unlock()
		return nil
	}
	jobStates[token] = StateProcessing
	mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())

	mu.Lock()
	activeJobs[token] = cancel
	mu.Unlock()

	defer func() {
		cancel()
		mu.Lock()
		delete(activeJobs, token)
		mu.Unlock()
	}()

	err := Process(ctx, jobDir)

	mu.Lock()
	if err != nil {
		if ctx.Err() == context.Canceled {
			jobStates[token] = StateCancelled
		} else {
			jobStates[token] = StateFailed
		}
	} else {
		jobStates[token] = StateCompleted
	}
	mu.Unlock()

	return err
}

// ProcessPendingJobs runs in a loop processing pending jobs
func ProcessPendingJobs() {
	for {
		jobs := GetPendingJobs()
		if len(jobs) == 0 {
			time.Sleep(1 * time.Second)
			continue
		}
		logger.Infof("Processing %d pending jobs", len(jobs))

		for _, jobDir := range jobs {
			err := runJob(jobDir)
			RemovePendingJob(jobDir)
			if err != nil {
				logger.Errorf("Failed to process job in %s: %v", jobDir, err)
			} else {
				logger.Infof("Processed job in %s", jobDir)
			}
		}
	}
}
