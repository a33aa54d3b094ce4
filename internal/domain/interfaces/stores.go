package interfaces

// PickleStore persists pickled blobs under a name. Blobs are already
// encrypted; stores never see plaintext state.
type PickleStore interface {
	Put(name string, blob []byte) error
	// Get reports ok=false when nothing is stored under name.
	Get(name string) (blob []byte, ok bool, err error)
	Delete(name string) error
	// List returns the stored names with the given prefix, sorted.
	List(prefix string) ([]string, error)
	Close() error
}
