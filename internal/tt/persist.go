package tt

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Status is the persistence lifecycle state of a Table.
type Status int32

const (
	NotLoaded Status = iota
	Loading
	Ready
	Saving
)

func (s Status) String() string {
	switch s {
	case NotLoaded:
		return "NOT_LOADED"
	case Loading:
		return "LOADING"
	case Ready:
		return "READY"
	case Saving:
		return "SAVING"
	default:
		return "UNKNOWN"
	}
}

// Backend persists a flat key/entry snapshot to and from durable storage.
// The default implementation (fileBackend) writes a fixed binary layout;
// internal/ttstore provides a BadgerDB-backed alternative for large tables.
type Backend interface {
	Save(path string, entries map[uint64]Entry) error
	Load(path string) (map[uint64]Entry, error)
}

type persistenceState struct {
	mu      sync.Mutex
	status  Status
	path    string
	backend Backend
	group   singleflight.Group

	subMu       sync.Mutex
	subscribers []chan Status
}

func newPersistenceState() *persistenceState {
	return &persistenceState{status: NotLoaded, backend: fileBackend{}}
}

// SetPersistence configures the on-disk path and, optionally, a non-default
// Backend (e.g. the Badger-backed internal/ttstore.Backend). A nil backend
// keeps the current one.
func (t *Table) SetPersistence(path string, backend Backend) {
	t.persistence.mu.Lock()
	defer t.persistence.mu.Unlock()
	t.persistence.path = path
	if backend != nil {
		t.persistence.backend = backend
	}
}

// Status reports the current persistence lifecycle state.
func (t *Table) Status() Status {
	t.persistence.mu.Lock()
	defer t.persistence.mu.Unlock()
	return t.persistence.status
}

// Subscribe returns a channel that receives every subsequent status
// transition. The channel is buffered; slow subscribers may miss
// transitions that occur in quick succession.
func (t *Table) Subscribe() <-chan Status {
	ch := make(chan Status, 8)
	p := t.persistence
	p.subMu.Lock()
	p.subscribers = append(p.subscribers, ch)
	p.subMu.Unlock()
	return ch
}

func (p *persistenceState) setStatus(s Status) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()

	p.subMu.Lock()
	defer p.subMu.Unlock()
	for _, ch := range p.subscribers {
		select {
		case ch <- s:
		default:
		}
	}
}

// LoadAsync loads the table's persisted contents from its configured path in
// the background, transitioning NOT_LOADED -> LOADING -> READY, or back to
// NOT_LOADED on failure. Concurrent calls while a load is in flight coalesce
// onto the same result.
func (t *Table) LoadAsync() <-chan error {
	p := t.persistence
	out := make(chan error, 1)

	p.mu.Lock()
	path := p.path
	backend := p.backend
	already := p.status == Loading
	p.mu.Unlock()

	if !already {
		p.setStatus(Loading)
	}

	resultCh := p.group.DoChan("load", func() (interface{}, error) {
		entries, err := backend.Load(path)
		if err != nil {
			p.setStatus(NotLoaded)
			return nil, err
		}
		t.restore(entries)
		p.setStatus(Ready)
		return nil, nil
	})

	go func() {
		res := <-resultCh
		out <- res.Err
		close(out)
	}()
	return out
}

// SaveAsync persists the table's current contents to its configured path in
// the background, transitioning READY -> SAVING -> READY, or reverting to
// NOT_LOADED on failure.
func (t *Table) SaveAsync() <-chan error {
	p := t.persistence
	out := make(chan error, 1)

	p.mu.Lock()
	path := p.path
	backend := p.backend
	p.mu.Unlock()

	p.setStatus(Saving)
	snapshot := t.snapshot()

	resultCh := p.group.DoChan("save", func() (interface{}, error) {
		if err := backend.Save(path, snapshot); err != nil {
			p.setStatus(NotLoaded)
			return nil, err
		}
		p.setStatus(Ready)
		return nil, nil
	})

	go func() {
		res := <-resultCh
		out <- res.Err
		close(out)
	}()
	return out
}

// fileBackend implements the default fixed binary layout:
//
//	int32   count N
//	N records: int64 key, int32 value, int32 depth, int8 flag, int32 best_move
//
// Older files omit best_move; readers detect this from file size and fill
// in NoMove.
type fileBackend struct{}

const (
	newRecordSize = 8 + 4 + 4 + 1 + 4
	oldRecordSize = 8 + 4 + 4 + 1
)

func (fileBackend) Save(path string, entries map[uint64]Entry) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("tt: create temp file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, int32(len(entries))); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("tt: write count: %w", err)
	}
	for key, e := range entries {
		if err := writeRecord(w, key, e); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("tt: write record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("tt: flush: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("tt: sync: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("tt: close: %w", err)
	}
	// Atomic replace: readers never observe a partially written file.
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("tt: rename into place: %w", err)
	}
	return nil
}

func writeRecord(w *bufio.Writer, key uint64, e Entry) error {
	if err := binary.Write(w, binary.LittleEndian, int64(key)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.Value); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.Depth); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int8(e.Flag)); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, e.BestMove)
}

func (fileBackend) Load(path string) (map[uint64]Entry, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return map[uint64]Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tt: stat: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tt: open: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("tt: read count: %w", err)
	}

	hasBestMove := true
	if count > 0 {
		expectedNew := int64(4) + int64(count)*newRecordSize
		expectedOld := int64(4) + int64(count)*oldRecordSize
		switch info.Size() {
		case expectedNew:
			hasBestMove = true
		case expectedOld:
			hasBestMove = false
		default:
			return nil, fmt.Errorf("tt: file size %d matches neither old (%d) nor new (%d) layout for %d records",
				info.Size(), expectedOld, expectedNew, count)
		}
	}

	out := make(map[uint64]Entry, count)
	for i := int32(0); i < count; i++ {
		var key int64
		var e Entry
		var flagByte int8
		if err := binary.Read(r, binary.LittleEndian, &key); err != nil {
			return nil, fmt.Errorf("tt: read key: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &e.Value); err != nil {
			return nil, fmt.Errorf("tt: read value: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &e.Depth); err != nil {
			return nil, fmt.Errorf("tt: read depth: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &flagByte); err != nil {
			return nil, fmt.Errorf("tt: read flag: %w", err)
		}
		e.Flag = Flag(flagByte)
		if hasBestMove {
			if err := binary.Read(r, binary.LittleEndian, &e.BestMove); err != nil {
				return nil, fmt.Errorf("tt: read best_move: %w", err)
			}
		} else {
			e.BestMove = NoMove
		}
		out[uint64(key)] = e
	}
	return out, nil
}
