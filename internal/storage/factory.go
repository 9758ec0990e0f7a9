package storage

import "fmt"

// DefaultStoreKind is the backend used when none is configured.
const DefaultStoreKind = "file"

// NewStore builds a backend by kind. path is the pool directory for "file"
// and the database file for "sqlite".
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "file":
		return NewFileStore(path), nil
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
