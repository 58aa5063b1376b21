package credentials

import (
	"encoding/json"
	"fmt"

	"vermux/store"
)

// Registry of delivery credentials. Callers register a credential map once
// and reference it from render jobs by its access key, so secrets never ride
// along with every upload.

var db *store.DB

// Open opens the credential DB at the specified path
func Open(dbPath string) error {
	d, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open credentials store: %w", err)
	}
	db = d
	return nil
}

// Close closes the DB
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// Get returns the credentials map stored under the given access key.
func Get(key string) (map[string]string, error) {
	if db == nil {
		return nil, fmt.Errorf("credentials store not initialized")
	}
	value, found, err := db.Get(key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no credentials registered for key %s", key)
	}
	creds := make(map[string]string)
	if err := json.Unmarshal(value, &creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// Store stores the credentials map under the given access key
func Store(key string, creds map[string]string) error {
	if db == nil {
		return fmt.Errorf("credentials store not initialized")
	}
	encoded, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return db.Set(key, encoded)
}

// Delete removes the credentials for the given access key
func Delete(key string) error {
	if db == nil {
		return fmt.Errorf("credentials store not initialized")
	}
	return db.Delete(key)
}
