package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"

	"ragserve/internal/loader"
)

const memoryCollection = "documents"

// Memory is an in-process vector index. Nothing is persisted; it is
// rebuilt from the data directory on every start. Good for small
// corpora and tests.
type Memory struct {
	db          *chromem.DB
	embedder    Embedder
	concurrency int
	log         zerolog.Logger

	// Reset replaces the collection while request goroutines are
	// still querying it, so every access goes through the mutex.
	mu         sync.RWMutex
	collection *chromem.Collection
}

// NewMemory creates an empty in-memory index. concurrency bounds the
// parallel embedding calls made during Add.
func NewMemory(embedder Embedder, concurrency int, log zerolog.Logger) (*Memory, error) {
	if concurrency <= 0 {
		concurrency = 4
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(memoryCollection, nil, embeddingFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return &Memory{
		db:          db,
		collection:  collection,
		embedder:    embedder,
		concurrency: concurrency,
		log:         log,
	}, nil
}

// embeddingFunc adapts an Embedder to the chromem callback.
func embeddingFunc(embedder Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}
}

func (m *Memory) coll() *chromem.Collection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collection
}

// Add implements Index.
func (m *Memory) Add(ctx context.Context, docs []loader.Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromemDocs[i] = chromem.Document{
			ID:       uuid.NewString(),
			Content:  doc.Content,
			Metadata: doc.Metadata,
		}
	}

	if err := m.coll().AddDocuments(ctx, chromemDocs, m.concurrency); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	m.log.Debug().Int("chunks", len(docs)).Msg("chunks indexed")
	return nil
}

// Query implements Retriever. chromem rejects a result count larger
// than the collection, so k is clamped.
func (m *Memory) Query(ctx context.Context, text string, k int) ([]loader.Document, error) {
	collection := m.coll()

	count := collection.Count()
	if count == 0 || k <= 0 {
		return []loader.Document{}, nil
	}
	if k > count {
		k = count
	}

	results, err := collection.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	docs := make([]loader.Document, 0, len(results))
	for _, res := range results {
		docs = append(docs, loader.Document{Content: res.Content, Metadata: res.Metadata})
	}
	return docs, nil
}

// Reset implements Index.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.db.DeleteCollection(memoryCollection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	collection, err := m.db.CreateCollection(memoryCollection, nil, embeddingFunc(m.embedder))
	if err != nil {
		return fmt.Errorf("failed to recreate collection: %w", err)
	}
	m.collection = collection
	return nil
}

// Count returns the number of indexed chunks.
func (m *Memory) Count(_ context.Context) (int, error) {
	return m.coll().Count(), nil
}

// Close implements Index. Nothing to release for the in-memory store.
func (m *Memory) Close() error {
	return nil
}
