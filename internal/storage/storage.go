package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	perftPrefix    = "perft/"
)

// Preferences stores shell settings that persist across sessions.
type Preferences struct {
	Workers  int       `json:"workers"`
	LastFEN  string    `json:"last_fen"`
	LastUsed time.Time `json:"last_used"`
}

// DefaultPreferences returns default preferences
func DefaultPreferences() *Preferences {
	return &Preferences{
		Workers:  0,
		LastUsed: time.Now(),
	}
}

// PerftStats accumulates perft activity.
type PerftStats struct {
	Runs       int           `json:"runs"`
	CacheHits  int           `json:"cache_hits"`
	TotalNodes int64         `json:"total_nodes"`
	TotalTime  time.Duration `json:"total_time"`
}

// NodesPerSecond returns the average search speed over all uncached runs.
func (s *PerftStats) NodesPerSecond() int64 {
	if s.TotalTime <= 0 {
		return 0
	}
	return int64(float64(s.TotalNodes) / s.TotalTime.Seconds())
}

// PerftRecord is one stored perft total.
type PerftRecord struct {
	Key        uint64    `json:"key"`
	Depth      int       `json:"depth"`
	Nodes      int64     `json:"nodes"`
	FEN        string    `json:"fen"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens (or creates) the database in dir. An empty dir means the
// platform database directory.
func Open(dir string) (*Storage, error) {
	if dir == "" {
		var err error
		dir, err = GetDatabaseDir()
		if err != nil {
			return nil, err
		}
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func perftKey(key uint64, depth int) []byte {
	return []byte(fmt.Sprintf("%s%016x/%d", perftPrefix, key, depth))
}

// SavePerft stores the node count of a position at a depth.
func (s *Storage) SavePerft(key uint64, depth int, nodes int64, fen string) error {
	data, err := json.Marshal(&PerftRecord{
		Key:        key,
		Depth:      depth,
		Nodes:      nodes,
		FEN:        fen,
		RecordedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(perftKey(key, depth), data)
	})
}

// LoadPerft returns the stored node count of a position at a depth. ok is
// false when nothing is stored.
func (s *Storage) LoadPerft(key uint64, depth int) (nodes int64, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(perftKey(key, depth))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var rec PerftRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		}); err != nil {
			return err
		}
		nodes, ok = rec.Nodes, true
		return nil
	})
	return nodes, ok, err
}

// ListPerft returns every stored perft record in key order. Key and Depth
// come from the database key, not the stored value.
func (s *Storage) ListPerft() ([]PerftRecord, error) {
	var records []PerftRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(perftPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key, depth, err := ParsePerftKey(string(item.Key()))
			if err != nil {
				return err
			}

			var rec PerftRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("record %s: %w", item.Key(), err)
			}
			// The key is authoritative.
			rec.Key, rec.Depth = key, depth
			records = append(records, rec)
		}
		return nil
	})

	return records, err
}

// DeletePerft removes every stored perft record and returns how many there were.
func (s *Storage) DeletePerft() (int, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(perftPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, err
		}
	}
	return len(keys), wb.Flush()
}

// ParsePerftKey splits a stored key back into position key and depth.
func ParsePerftKey(k string) (key uint64, depth int, err error) {
	rest, found := strings.CutPrefix(k, perftPrefix)
	if !found {
		return 0, 0, fmt.Errorf("not a perft key: %q", k)
	}
	hexKey, depthStr, found := strings.Cut(rest, "/")
	if !found {
		return 0, 0, fmt.Errorf("perft key without depth: %q", k)
	}
	if key, err = strconv.ParseUint(hexKey, 16, 64); err != nil {
		return 0, 0, fmt.Errorf("perft key %q: %w", k, err)
	}
	if depth, err = strconv.Atoi(depthStr); err != nil {
		return 0, 0, fmt.Errorf("perft key %q: %w", k, err)
	}
	return key, depth, nil
}

// SavePreferences saves shell preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastUsed = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if err == badger.ErrKeyNotFound {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, prefs)
		})
	})

	return prefs, err
}

// LoadStats loads perft statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*PerftStats, error) {
	stats := &PerftStats{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordRun adds one perft run to the statistics.
func (s *Storage) RecordRun(nodes int64, elapsed time.Duration, cached bool) error {
	return s.db.Update(func(txn *badger.Txn) error {
		stats := &PerftStats{}
		item, err := txn.Get([]byte(keyStats))
		switch {
		case err == badger.ErrKeyNotFound:
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, stats)
			}); err != nil {
				return err
			}
		}

		stats.Runs++
		if cached {
			stats.CacheHits++
		} else {
			stats.TotalNodes += nodes
			stats.TotalTime += elapsed
		}

		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), data)
	})
}
