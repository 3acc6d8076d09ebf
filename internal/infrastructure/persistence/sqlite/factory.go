package sqlite

import (
	"gnartgen/internal/domain/repository"
)

// Factory opens SQLite-backed project stores. It satisfies the document
// controller's StoreFactory port.
type Factory struct{}

// NewFactory creates a store factory.
func NewFactory() *Factory {
	return &Factory{}
}

// OpenMemory creates an empty in-memory store with the schema applied.
func (f *Factory) OpenMemory() (repository.ScriptRepository, error) {
	return OpenMemory()
}

// OpenFile opens the store at path.
func (f *Factory) OpenFile(path string) (repository.ScriptRepository, error) {
	return OpenFile(path)
}
