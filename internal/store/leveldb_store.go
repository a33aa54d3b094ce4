package store

import (
	"errors"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"olmkit/internal/domain"
)

// LevelDBStore keeps blobs in a goleveldb database. Writes are synced.
type LevelDBStore struct {
	db   *leveldb.DB
	once sync.Once
}

var _ domain.PickleStore = (*LevelDBStore)(nil)

var syncWrite = &opt.WriteOptions{Sync: true}

// OpenLevelDB opens or creates the database at path.
func OpenLevelDB(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Put(name string, blob []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	return mapClosed(s.db.Put([]byte(name), blob, syncWrite))
}

func (s *LevelDBStore) Get(name string) ([]byte, bool, error) {
	if err := validName(name); err != nil {
		return nil, false, err
	}
	b, err := s.db.Get([]byte(name), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, mapClosed(err)
	}
	return b, true, nil
}

func (s *LevelDBStore) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	return mapClosed(s.db.Delete([]byte(name), syncWrite))
}

// List returns names with the given prefix in key order.
func (s *LevelDBStore) List(prefix string) ([]string, error) {
	it := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer it.Release()
	var names []string
	for it.Next() {
		names = append(names, string(it.Key()))
	}
	if err := it.Error(); err != nil {
		return nil, mapClosed(err)
	}
	return names, nil
}

// Close closes the database. It is safe to call more than once.
func (s *LevelDBStore) Close() error {
	var err error
	s.once.Do(func() { err = s.db.Close() })
	return err
}

func mapClosed(err error) error {
	if errors.Is(err, leveldb.ErrClosed) {
		return errClosed
	}
	return err
}
