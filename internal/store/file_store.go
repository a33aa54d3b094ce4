package store

import (
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"olmkit/internal/domain"
)

const fileExt = ".pickle"

// FileStore keeps each blob in its own file under dir. Names are
// path-escaped so "session/bob" becomes "session%2Fbob.pickle".
type FileStore struct {
	dir    string
	mu     sync.Mutex
	closed bool
}

var _ domain.PickleStore = (*FileStore)(nil)

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, url.PathEscape(name)+fileExt)
}

// Put atomically replaces the blob stored under name.
func (s *FileStore) Put(name string, blob []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	return writeFile(s.path(name), blob, filePerm)
}

// Get returns the blob under name; ok is false when nothing is stored.
func (s *FileStore) Get(name string) ([]byte, bool, error) {
	if err := validName(name); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, errClosed
	}
	b, err := readFile(s.path(name))
	if err != nil || b == nil {
		return nil, false, err
	}
	return b, true, nil
}

// Delete removes name. Deleting a missing blob is not an error.
func (s *FileStore) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// List returns the sorted names that start with prefix.
func (s *FileStore) List(prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		fn := e.Name()
		if e.IsDir() || !strings.HasSuffix(fn, fileExt) {
			continue
		}
		name, err := url.PathUnescape(strings.TrimSuffix(fn, fileExt))
		if err != nil {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close marks the store closed. Later calls fail.
func (s *FileStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
