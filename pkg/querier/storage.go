package querier

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v2"
	"go.uber.org/zap"

	"github.com/darkclainer/kabgo/pkg/parser"
)

type keyType byte

const (
	categoriesKey keyType = iota + 1
	entriesKey
)

type CachedConfig struct {
	// Path is directory of badger database
	Path string
	// InMemory makes cache live only while process is running, Path is ignored
	InMemory bool
	// TTL is how long cached page stays valid, zero means forever
	TTL time.Duration
}

// Enabled reports whether config asks for cache at all
func (c *CachedConfig) Enabled() bool {
	return c.Path != "" || c.InMemory
}

// OpenStorage opens badger database described by config
func OpenStorage(config *CachedConfig, logger *zap.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(config.Path)
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger.Named("badger").Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("can not open cache storage: %w", err)
	}
	return db, nil
}

// badgerLogger adapts zap to badger.Logger
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

type Storage struct {
	DB  *badger.DB
	TTL time.Duration
}

// GetCategories returns badger.ErrKeyNotFound if categories were not cached
func (s *Storage) GetCategories() ([]*parser.Category, error) {
	var categories []*parser.Category
	if err := s.get(marshalKey("", categoriesKey), &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Storage) PutCategories(categories []*parser.Category) error {
	return s.put(marshalKey("", categoriesKey), categories)
}

// GetEntries returns badger.ErrKeyNotFound if page was not cached
func (s *Storage) GetEntries(page string) ([]*parser.LexicalEntry, error) {
	var entries []*parser.LexicalEntry
	if err := s.get(marshalKey(page, entriesKey), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Storage) PutEntries(page string, entries []*parser.LexicalEntry) error {
	return s.put(marshalKey(page, entriesKey), entries)
}

func (s *Storage) get(key []byte, v interface{}) error {
	var value []byte
	err := s.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(value, v); err != nil {
		return fmt.Errorf("malformed cached value: %w", err)
	}
	return nil
}

func (s *Storage) put(key []byte, v interface{}) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("can not marshal cached value: %w", err)
	}
	return s.DB.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, value)
		if s.TTL > 0 {
			entry = entry.WithTTL(s.TTL)
		}
		return txn.SetEntry(entry)
	})
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func marshalKey(k string, t keyType) []byte {
	result := make([]byte, 0, len(k)+1)
	result = append(result, byte(t))
	return append(result, []byte(k)...)
}
