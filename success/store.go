package success

import (
	"encoding/json"
	"fmt"
	"time"

	"vermux/store"
)

// Record represents a completed render job.
type Record struct {
	Token      string    `json:"token"`
	Timestamp  time.Time `json:"timestamp"`
	ElapsedMS  int64     `json:"elapsed_ms"`
	SizeBytes  int64     `json:"size_bytes"`
	Deliveries int       `json:"deliveries"`
	JobData    string    `json:"job_data"` // JSON string of the job instructions
}

var db *store.DB

// Init initializes the success store
func Init(dbPath string) error {
	d, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open success store: %w", err)
	}
	db = d
	return nil
}

// Close closes the success store
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// Store records a completed render.
func Store(token string, jobData interface{}, elapsed time.Duration, size int64, deliveries int) error {
	if db == nil {
		return fmt.Errorf("success store not initialized")
	}

	jobJSON, jsonErr := json.Marshal(jobData)
	if jsonErr != nil {
		jobJSON = []byte(fmt.Sprintf("failed to marshal job data: %v", jsonErr))
	}

	record := Record{
		Token:      token,
		Timestamp:  time.Now(),
		ElapsedMS:  elapsed.Milliseconds(),
		SizeBytes:  size,
		Deliveries: deliveries,
		JobData:    string(jobJSON),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal success record: %w", err)
	}
	return db.Set(token, data)
}

// Get retrieves a success record by token. Not found is not an error.
func Get(token string) (*Record, error) {
	if db == nil {
		return nil, fmt.Errorf("success store not initialized")
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
		return nil, fmt.Errorf("failed to unmarshal success record: %w", err)
	}
	return &record, nil
}

// Delete removes a success record
func Delete(token string) error {
	if db == nil {
		return fmt.Errorf("success store not initialized")
	}
	return db.Delete(token)
}

// List returns all success records (for admin/debugging)
func List() ([]Record, error) {
	if db == nil {
		return nil, fmt.Errorf("success store not initialized")
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

// CleanupOldRecords removes success records older than the specified duration
func CleanupOldRecords(maxAge time.Duration) error {
	if db == nil {
		return fmt.Errorf("success store not initialized")
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
			return fmt.Errorf("failed to delete old success record: %w", err)
		}
	}
	return nil
}
