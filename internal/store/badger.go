package store

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const badgerPrefix = "record:"

// BadgerBackend keeps records as keys in a badger database.
type BadgerBackend struct {
	db    *badger.DB
	owned bool
}

// OpenBadger opens (or creates) the database in dir. Close releases it.
func OpenBadger(dir string) (*BadgerBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.WARNING).
		WithNumVersionsToKeep(1)
	opts.Logger = nil // Disable logging noise

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &BadgerBackend{db: db, owned: true}, nil
}

// NewBadgerBackend wraps an already open database; Close leaves it open.
func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

func (b *BadgerBackend) makeKey(name string) []byte {
	return []byte(badgerPrefix + name)
}

func (b *BadgerBackend) stripPrefix(key []byte) string {
	return strings.TrimPrefix(string(key), badgerPrefix)
}

func (b *BadgerBackend) Put(name string, data []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.makeKey(name), data)
	})
}

func (b *BadgerBackend) Get(name string) ([]byte, error) {
	var data []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.makeKey(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", name, err)
	}
	return data, nil
}

func (b *BadgerBackend) Exists(name string) (bool, error) {
	found := false

	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(b.makeKey(name))
		if err == nil {
			found = true
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		// A group exists when any record lives under it
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		group := b.makeKey(name + "/")
		it.Seek(group)
		found = it.ValidForPrefix(group)
		return nil
	})

	return found, err
}

func (b *BadgerBackend) List(prefix string) ([]string, error) {
	var names []string
	seen := make(map[string]bool)

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := b.makeKey(prefix)
		for it.Seek(seek); it.ValidForPrefix(seek); it.Next() {
			name := b.stripPrefix(it.Item().Key())
			if i := strings.Index(name, "/"); i >= 0 {
				name = name[:i]
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (b *BadgerBackend) Close() error {
	if !b.owned {
		return nil
	}
	return b.db.Close()
}
