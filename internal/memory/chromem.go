package memory

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

// ChromemStore implements Store on an embedded chromem-go database persisted
// to disk. Documents are embedded through the provided embedding function;
// in production that is an Ollama embedding model.
type ChromemStore struct {
	collection *chromem.Collection
}

// NewChromemStore opens (or creates) the persistent database at path and the
// named collection inside it.
func NewChromemStore(path, collection string, embed chromem.EmbeddingFunc) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("NewChromemStore: open database: %w", err)
	}
	coll, err := db.GetOrCreateCollection(collection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("NewChromemStore: open collection %q: %w", collection, err)
	}
	return &ChromemStore{collection: coll}, nil
}

// Upsert writes one semantic entry keyed by the ledger record ID. chromem
// replaces documents that share an ID, so re-running a projection never
// duplicates an entry.
func (s *ChromemStore) Upsert(ctx context.Context, key, document string, metadata map[string]string) error {
	err := s.collection.AddDocument(ctx, chromem.Document{
		ID:       key,
		Content:  document,
		Metadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("chromem upsert %s: %w", key, err)
	}
	return nil
}

// Count reports the number of entries in the collection.
func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

var _ Store = (*ChromemStore)(nil)
