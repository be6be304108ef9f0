package ttstore

import "honeycomb/internal/tt"

// Backend adapts Store to tt.Backend, opening and closing a BadgerDB
// instance per call so it can be plugged into tt.Table.SetPersistence
// exactly like the default flat-file backend. Selected via the trainer
// CLI's --table-backend=badger flag.
type Backend struct{}

var _ tt.Backend = Backend{}

func (Backend) Save(dir string, entries map[uint64]tt.Entry) error {
	store, err := Open(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		return err
	}
	return store.SaveAll(entries)
}

func (Backend) Load(dir string) (map[uint64]tt.Entry, error) {
	store, err := Open(dir)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.LoadAll()
}
