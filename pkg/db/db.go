// Package db provides implementations of the contract storage capability: a
// badger-backed database for durable operation and an in-memory variant for
// tests and dev mode.
package db

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
)

// Database is a badger-backed key-value store satisfying store.Storage.
type Database struct {
	db *badger.DB
}

func Open(path string) (*Database, error) {
	db, err := badger.Open(badger.DefaultOptions(path))
	if err != nil {
		return nil, err
	}
	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Read returns the value stored under key, or ok == false if the key is
// absent.
func (d *Database) Read(key []byte) (value []byte, ok bool, err error) {
	err = d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (d *Database) Write(key, value []byte) error {
	err := d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}
