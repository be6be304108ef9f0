package tt

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestPutDepthPreferredReplacement(t *testing.T) {
	table := New()

	r1 := table.Put(7, Entry{Value: 5, Depth: 1, Flag: Exact, BestMove: NoMove})
	if r1.HadPrevious || !r1.Replaced {
		t.Fatalf("first put: expected no previous and replaced=true, got %+v", r1)
	}

	r2 := table.Put(7, Entry{Value: 8, Depth: 3, Flag: LowerBound, BestMove: 12})
	if !r2.HadPrevious || !r2.Replaced {
		t.Fatalf("deeper put: expected replaced=true, got %+v", r2)
	}

	r3 := table.Put(7, Entry{Value: 4, Depth: 2, Flag: UpperBound, BestMove: 9})
	if r3.Replaced {
		t.Fatalf("shallower put: expected replaced=false, got %+v", r3)
	}

	got, ok := table.Get(7)
	if !ok {
		t.Fatal("expected entry to be present")
	}
	want := Entry{Value: 8, Depth: 3, Flag: LowerBound, BestMove: 12}
	if got != want {
		t.Fatalf("get(7) = %+v, want %+v", got, want)
	}
}

func TestPutNotifiesObservers(t *testing.T) {
	table := New()
	var mu sync.Mutex
	var reports []UpdateReport
	table.AddObserver(func(r UpdateReport) {
		mu.Lock()
		defer mu.Unlock()
		reports = append(reports, r)
	})

	table.Put(1, Entry{Value: 1, Depth: 1, Flag: Exact, BestMove: NoMove})
	table.Put(1, Entry{Value: 2, Depth: 1, Flag: Exact, BestMove: NoMove})

	mu.Lock()
	defer mu.Unlock()
	if len(reports) != 2 {
		t.Fatalf("expected 2 observed puts, got %d", len(reports))
	}
	if reports[1].Replaced {
		t.Fatalf("equal-depth put should not replace: %+v", reports[1])
	}
}

func TestClearResetsSize(t *testing.T) {
	table := New()
	table.Put(1, Entry{Depth: 1})
	table.Put(2, Entry{Depth: 1})
	if table.Size() != 2 {
		t.Fatalf("expected size 2, got %d", table.Size())
	}
	table.Clear()
	if table.Size() != 0 {
		t.Fatalf("expected size 0 after clear, got %d", table.Size())
	}
	if _, ok := table.Get(1); ok {
		t.Fatal("expected entry to be gone after clear")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tt.bin")

	table := New()
	table.SetPersistence(path, nil)
	table.Put(7, Entry{Value: 5, Depth: 1, Flag: Exact, BestMove: NoMove})
	table.Put(7, Entry{Value: 8, Depth: 3, Flag: LowerBound, BestMove: 12})
	table.Put(42, Entry{Value: -1, Depth: 2, Flag: UpperBound, BestMove: 9})

	if err := <-table.SaveAsync(); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if table.Status() != Ready {
		t.Fatalf("expected Ready after save, got %v", table.Status())
	}

	fresh := New()
	fresh.SetPersistence(path, nil)
	if err := <-fresh.LoadAsync(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if fresh.Status() != Ready {
		t.Fatalf("expected Ready after load, got %v", fresh.Status())
	}

	got, ok := fresh.Get(7)
	want := Entry{Value: 8, Depth: 3, Flag: LowerBound, BestMove: 12}
	if !ok || got != want {
		t.Fatalf("get(7) after reload = %+v, %v; want %+v", got, ok, want)
	}
	got2, ok := fresh.Get(42)
	want2 := Entry{Value: -1, Depth: 2, Flag: UpperBound, BestMove: 9}
	if !ok || got2 != want2 {
		t.Fatalf("get(42) after reload = %+v, %v; want %+v", got2, ok, want2)
	}
}

func TestLoadCoalescesConcurrentCalls(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tt.bin")

	seed := New()
	seed.SetPersistence(path, nil)
	seed.Put(1, Entry{Value: 1, Depth: 1, Flag: Exact, BestMove: NoMove})
	if err := <-seed.SaveAsync(); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}

	table := New()
	table.SetPersistence(path, nil)

	ch1 := table.LoadAsync()
	ch2 := table.LoadAsync()

	err1 := <-ch1
	err2 := <-ch2
	if err1 != nil || err2 != nil {
		t.Fatalf("expected both loads to succeed, got %v, %v", err1, err2)
	}
	if _, ok := table.Get(1); !ok {
		t.Fatal("expected loaded entry to be present")
	}
}

func TestOldFormatLoadsWithNoMove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tt_old.bin")

	// Hand-write the old (pre-best_move) layout directly: int32 count,
	// then per record int64 key, int32 value, int32 depth, int8 flag —
	// with no trailing best_move field.
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	records := []struct {
		key          int64
		value, depth int32
		flag         int8
	}{
		{5, 3, 4, int8(Exact)},
		{9, -7, 2, int8(LowerBound)},
	}
	if err := binary.Write(f, binary.LittleEndian, int32(len(records))); err != nil {
		t.Fatalf("write count failed: %v", err)
	}
	for _, r := range records {
		if err := binary.Write(f, binary.LittleEndian, r.key); err != nil {
			t.Fatalf("write key failed: %v", err)
		}
		if err := binary.Write(f, binary.LittleEndian, r.value); err != nil {
			t.Fatalf("write value failed: %v", err)
		}
		if err := binary.Write(f, binary.LittleEndian, r.depth); err != nil {
			t.Fatalf("write depth failed: %v", err)
		}
		if err := binary.Write(f, binary.LittleEndian, r.flag); err != nil {
			t.Fatalf("write flag failed: %v", err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	loaded, err := (fileBackend{}).Load(path)
	if err != nil {
		t.Fatalf("unexpected error loading old-format file: %v", err)
	}
	if len(loaded) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(loaded))
	}
	if got := loaded[5]; got.Value != 3 || got.Depth != 4 || got.Flag != Exact || got.BestMove != NoMove {
		t.Fatalf("record 5 = %+v, want Value=3 Depth=4 Flag=Exact BestMove=NoMove", got)
	}
	if got := loaded[9]; got.Value != -7 || got.Depth != 2 || got.Flag != LowerBound || got.BestMove != NoMove {
		t.Fatalf("record 9 = %+v, want Value=-7 Depth=2 Flag=LowerBound BestMove=NoMove", got)
	}
}
