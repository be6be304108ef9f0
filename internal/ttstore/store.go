package ttstore

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"honeycomb/internal/tt"
)

// entryWidth is the byte length of one encoded tt.Entry: int32 value,
// int32 depth, int8 flag, int32 best_move.
const entryWidth = 4 + 4 + 1 + 4

// Store wraps a BadgerDB instance holding transposition-table entries keyed
// by their 8-byte big-endian canonical key.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) a BadgerDB instance rooted at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("ttstore: open badger at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveAll writes every (key, entry) pair through one Badger write batch,
// overwriting the stored value of each of those keys. Keys already in the
// database but absent from entries are left in place; Clear removes them.
func (s *Store) SaveAll(entries map[uint64]tt.Entry) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for key, e := range entries {
		if err := wb.Set(encodeKey(key), encodeEntry(e)); err != nil {
			return fmt.Errorf("ttstore: stage write for key %d: %w", key, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("ttstore: flush write batch: %w", err)
	}
	return nil
}

// LoadAll returns every (key, entry) pair currently stored.
func (s *Store) LoadAll() (map[uint64]tt.Entry, error) {
	out := make(map[uint64]tt.Entry)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := decodeKey(item.Key())
			err := item.Value(func(val []byte) error {
				e, err := decodeEntry(val)
				if err != nil {
					return err
				}
				out[key] = e
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ttstore: load all: %w", err)
	}
	return out, nil
}

// Clear drops every key in the database.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

func encodeKey(key uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, key)
	return buf
}

func decodeKey(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

func encodeEntry(e tt.Entry) []byte {
	buf := make([]byte, entryWidth)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(e.Value))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(e.Depth))
	buf[8] = byte(e.Flag)
	binary.LittleEndian.PutUint32(buf[9:13], uint32(e.BestMove))
	return buf
}

func decodeEntry(b []byte) (tt.Entry, error) {
	if len(b) != entryWidth {
		return tt.Entry{}, fmt.Errorf("ttstore: corrupt entry: want %d bytes, got %d", entryWidth, len(b))
	}
	return tt.Entry{
		Value:    int32(binary.LittleEndian.Uint32(b[0:4])),
		Depth:    int32(binary.LittleEndian.Uint32(b[4:8])),
		Flag:     tt.Flag(b[8]),
		BestMove: int32(binary.LittleEndian.Uint32(b[9:13])),
	}, nil
}
