package failures

import (
	"encoding/json"
	"fmt"
	"time"

	"vermux/store"
)

// Record represents a failed render job.
type Record struct {
	Token       string    `json:"token"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        string    `json:"kind"`
	Error       string    `json:"error"`
	Diagnostics string    `json:"diagnostics,omitempty"` // engine stderr tail
	ElapsedMS   int64     `json:"elapsed_ms"`
	JobData     string    `json:"job_data"` // JSON string of the job instructions
}

var db *store.DB

// Init initializes the failure store
func Init(dbPath string) error {
	d, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open failure store: %w", err)
	}
	db = d
	return nil
}

// Close closes the failure store
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// Store records a render failure with its classification and diagnostics.
func Store(token, kind string, failErr error, diagnostics string, elapsed time.Duration, jobData interface{}) error {
	if db == nil {
		return fmt.Errorf("failure store not initialized")
	}

	jobJSON, jsonErr := json.Marshal(jobData)
	if jsonErr != nil {
		jobJSON = []byte(fmt.Sprintf("failed to marshal job data: %v", jsonErr))
	}

	errText := ""
	if failErr != nil {
		errText = failErr.Error()
	}

	record := Record{
		Token:       token,
		Timestamp:   time.Now(),
		Kind:        kind,
		Error:       errText,
		Diagnostics: diagnostics,
		ElapsedMS:   elapsed.Milliseconds(),
		JobData:     string(jobJSON),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal failure record: %w", err)
	}
	return db.Set(token, data)
}

// Get retrieves a failure record by token. Not found is not an error.
func Get(token string) (*Record, error) {
	if db == nil {
		return nil, fmt.Errorf("failure store not initialized")
	}

	data, found, err := db.Get(token)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal failure record: %w", err)
	}
	return &record, nil
}

// List returns all failure records (admin endpoint)
func List() ([]Record, error) {
	if db == nil {
		return nil, fmt.Errorf("failure store not initialized")
	}

	var records []Record
	err := db.Each(func(_, value []byte) error {
		var record Record
		if err := json.Unmarshal(value, &record); err != nil {
			return nil // Skip invalid records
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// CleanupOldRecords removes failure records older than the specified duration
func CleanupOldRecords(maxAge time.Duration) error {
	if db == nil {
		return fmt.Errorf("failure store not initialized")
	}

	cutoff := time.Now().Add(-maxAge)
	var tokensToDelete []string
	err := db.Each(func(key, value []byte) error {
		var record Record
		if err := json.Unmarshal(value, &record); err != nil {
			return nil
		}
		if record.Timestamp.Before(cutoff) {
			tokensToDelete = append(tokensToDelete, string(key))
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, token := range tokensToDelete {
		if err := db.Delete(token); err != nil {
			return fmt.Errorf("failed to delete old failure record: %w", err)
		}
	}
	return nil
}
