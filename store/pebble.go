package store

import (
	"errors"

	"github.com/cockroachdb/pebble"
)

// DB is a small wrapper around a Pebble instance shared by the record and
// credential stores.
type DB struct {
	db       *pebble.DB
	DataFile string
}

// Open opens (or creates) a pebble DB at the given dataFile path.
func Open(dataFile string) (*DB, error) {
	db, err := pebble.Open(dataFile, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &DB{db: db, DataFile: dataFile}, nil
}

// Set stores a value under the given key, synced to disk.
func (d *DB) Set(key string, value []byte) error {
	return d.db.Set([]byte(key), value, pebble.Sync)
}

// Get returns the value for the given key as an owned copy. found is false
// when the key does not exist.
func (d *DB) Get(key string) (value []byte, found bool, err error) {
	v, closer, err := d.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer closer.Close()
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Delete removes the key from the DB.
func (d *DB) Delete(key string) error {
	return d.db.Delete([]byte(key), pebble.Sync)
}

// Each calls fn for every key/value pair. The slices are only valid for the
// duration of the call.
func (d *DB) Each(fn func(key, value []byte) error) error {
	iter, err := d.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Close closes the underlying DB.
func (d *DB) Close() error {
	return d.db.Close()
}
