// Package store persists opening books in BadgerDB. Each entry is stored as
// JSON under a key derived from the hash of its position.
package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"aisearch/game"
	"aisearch/searcher"
)

var (
	ErrNotFound  = errors.New("book entry not found")
	ErrCollision = errors.New("book entry hash collides with another position")
)

var bookPrefix = []byte("book/")

type Config struct {
	// Path is the database directory, ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
}

func InMemoryConfig() Config {
	return Config{InMemory: true}
}

type BadgerStore struct {
	db   *badger.DB
	hash func(game.Key) (uint64, error)
}

func Open(cfg Config) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent book store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("failed to create book directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{logger: log.With().Str("component", "badger").Logger()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open book store: %w", err)
	}
	return &BadgerStore{db: db, hash: game.Key.Hash}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) entryKey(key game.Key) ([]byte, error) {
	hash, err := s.hash(key)
	if err != nil {
		return nil, err
	}
	k := make([]byte, len(bookPrefix)+8)
	copy(k, bookPrefix)
	binary.BigEndian.PutUint64(k[len(bookPrefix):], hash)
	return k, nil
}

// Get returns the entry stored for key or ErrNotFound.
func (s *BadgerStore) Get(ctx context.Context, key game.Key) (*searcher.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k, err := s.entryKey(key)
	if err != nil {
		return nil, err
	}

	var entry searcher.Entry
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get book entry %v: %w", key, err)
	}
	// Hash collision
	if entry.Key != key {
		return nil, fmt.Errorf("failed to get book entry %v: %w", key, ErrNotFound)
	}
	return &entry, nil
}

// Save writes entries in one batch, replacing stored entries with the same
// key. Nothing is written when an entry collides with a stored entry of a
// different position or with another entry of the batch.
func (s *BadgerStore) Save(ctx context.Context, entries []*searcher.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	keys := make([][]byte, len(entries))
	owners := make(map[string]game.Key, len(entries))
	for i, entry := range entries {
		k, err := s.entryKey(entry.Key)
		if err != nil {
			return err
		}
		if owner, ok := owners[string(k)]; ok && owner != entry.Key {
			return fmt.Errorf("failed to save book entry %v: %w with %v", entry.Key, ErrCollision, owner)
		}
		owners[string(k)] = entry.Key
		keys[i] = k
	}
	if err := s.checkCollisions(keys, entries); err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		val, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to encode book entry %v: %w", entry.Key, err)
		}
		if err := wb.Set(keys[i], val); err != nil {
			return fmt.Errorf("failed to write book entry %v: %w", entry.Key, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("failed to flush book entries: %w", err)
	}
	return nil
}

// checkCollisions fails when a stored entry under keys[i] belongs to a
// position other than entries[i].
func (s *BadgerStore) checkCollisions(keys [][]byte, entries []*searcher.Entry) error {
	return s.db.View(func(txn *badger.Txn) error {
		for i, k := range keys {
			item, err := txn.Get(k)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to read book entry %v: %w", entries[i].Key, err)
			}
			var stored struct {
				Key game.Key `json:"key"`
			}
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &stored) }); err != nil {
				return fmt.Errorf("failed to decode book entry %v: %w", entries[i].Key, err)
			}
			if stored.Key != entries[i].Key {
				return fmt.Errorf("failed to save book entry %v: %w with %v", entries[i].Key, ErrCollision, stored.Key)
			}
		}
		return nil
	})
}

// Load reads every stored entry into book and returns how many were read.
func (s *BadgerStore) Load(ctx context.Context, book *searcher.Book) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: bookPrefix, PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry := &searcher.Entry{}
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, entry)
			})
			if err != nil {
				return fmt.Errorf("failed to decode book entry %x: %w", it.Item().Key(), err)
			}
			if entry.Actions == nil {
				entry.Actions = map[string]*searcher.Stat{}
			}
			book.Put(entry)
			count++
		}
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("failed to load book: %w", err)
	}
	log.Debug().Int("entries", count).Msg("loaded book")
	return count, nil
}

type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(format, args...)
}
