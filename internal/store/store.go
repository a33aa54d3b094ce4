package store

import (
	"errors"
	"strings"

	"olmkit/internal/domain"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

var (
	errEmptyName = errors.New("store: empty blob name")
	errClosed    = errors.New("store: closed")
)

// validName rejects names that cannot round-trip through either backend.
func validName(name string) error {
	if name == "" || strings.ContainsRune(name, 0) {
		return errEmptyName
	}
	return nil
}

// Open returns the backend named by kind ("file" or "leveldb") rooted at dir.
func Open(kind, dir string) (domain.PickleStore, error) {
	switch kind {
	case "", "file":
		return NewFileStore(dir)
	case "leveldb":
		return OpenLevelDB(dir)
	default:
		return nil, errors.New("store: unknown backend " + kind)
	}
}
