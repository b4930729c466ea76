package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"kahani-ai/internal/story"
)

// Catalog is an in-memory, read-mostly view over a StoryStore.
// Lookups accept loose ids (see story.CandidateIDs).
type Catalog struct {
	store StoryStore

	// replaceMu serializes Replace so the store and the cache change together.
	replaceMu sync.Mutex

	mu     sync.RWMutex
	docs   map[string]story.Document
	order  []string
	loaded bool
	// version increases on every Replace; a lazy load only installs what it
	// read if no Replace finished in the meantime.
	version uint64
}

// NewCatalog creates a Catalog backed by store.
func NewCatalog(store StoryStore) *Catalog {
	return &Catalog{store: store}
}

// Replace persists docs as the whole catalogue and refreshes the cache.
func (c *Catalog) Replace(ctx context.Context, docs []story.Document) error {
	c.replaceMu.Lock()
	defer c.replaceMu.Unlock()

	if err := c.store.ReplaceAll(ctx, docs); err != nil {
		return fmt.Errorf("failed to replace catalogue: %w", err)
	}

	c.mu.Lock()
	c.install(docs)
	c.version++
	c.mu.Unlock()
	return nil
}

// Get resolves id through the candidate lookup order.
// Returns ErrNotFound if no candidate matches.
func (c *Catalog) Get(ctx context.Context, id string) (*story.Document, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, candidate := range story.CandidateIDs(id) {
		if doc, ok := c.docs[candidate]; ok {
			return &doc, nil
		}
	}
	return nil, ErrNotFound
}

// List returns every document ordered by id.
func (c *Catalog) List(ctx context.Context) ([]story.Document, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	docs := make([]story.Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, c.docs[id])
	}
	return docs, nil
}

func (c *Catalog) ensureLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded, version := c.loaded, c.version
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	docs, err := c.store.ListAll(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to load catalogue: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version == version && !c.loaded {
		c.install(docs)
	}
	return nil
}

// install swaps the cache to docs. Callers hold mu.
func (c *Catalog) install(docs []story.Document) {
	byID := make(map[string]story.Document, len(docs))
	order := make([]string, 0, len(docs))
	for _, doc := range docs {
		if _, dup := byID[doc.ID]; !dup {
			order = append(order, doc.ID)
		}
		byID[doc.ID] = doc
	}

	c.docs = byID
	c.order = order
	c.loaded = true
}
