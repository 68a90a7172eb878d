// Package store persists application state snapshots in an embedded
// Badger database under the user's data directory.
package store

import (
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

var snapshotKey = []byte("state/snapshot")

// Badger implements state.Snapshots on top of a Badger database.
type Badger struct {
	db *badger.DB
}

// Open opens (or creates) the snapshot database at dir.
func Open(dir string, log *slog.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = badgerLogger{log}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Save(data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, data)
	})
	if err != nil {
		return fmt.Errorf("save state snapshot: %w", err)
	}
	return nil
}

func (b *Badger) Load() ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state snapshot: %w", err)
	}
	return data, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// badgerLogger routes Badger's internal logging through slog at debug
// level so it stays out of the way during normal operation.
type badgerLogger struct {
	log *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}
