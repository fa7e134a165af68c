package index

import (
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/rs/zerolog"
)

// keywordResult is a single BM25 hit.
type keywordResult struct {
	ChunkID string
	Score   float64
}

// KeywordIndex provides BM25 keyword search over document chunks.
type KeywordIndex struct {
	path string
	log  zerolog.Logger

	// Reset swaps the bleve index out from under concurrent
	// searches, so every access goes through the mutex.
	mu    sync.RWMutex
	index bleve.Index
}

// NewKeywordIndex creates or opens a BM25 index next to the chunk
// database. An empty path builds an in-memory index.
// If the on-disk index is corrupted it is deleted and recreated.
func NewKeywordIndex(dbPath string, log zerolog.Logger) (*KeywordIndex, error) {
	if dbPath == "" {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory keyword index: %w", err)
		}
		return &KeywordIndex{index: index, log: log}, nil
	}

	indexPath := dbPath + ".bleve"

	index, err := bleve.Open(indexPath)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create keyword index: %w", err)
		}
		log.Info().Str("path", indexPath).Msg("keyword index created")
	} else if err != nil {
		// Index exists but is corrupted - delete and recreate
		log.Warn().Err(err).Str("path", indexPath).Msg("keyword index corrupted, recreating")

		if index != nil {
			index.Close()
		}
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("failed to remove corrupted keyword index: %w", err)
		}

		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to recreate keyword index: %w", err)
		}
	}

	return &KeywordIndex{index: index, path: indexPath, log: log}, nil
}

// buildIndexMapping creates the index mapping for document chunks.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	chunkMapping := bleve.NewDocumentMapping()

	chunkIDField := bleve.NewTextFieldMapping()
	chunkIDField.Analyzer = keyword.Name
	chunkIDField.Store = true
	chunkIDField.Index = true
	chunkMapping.AddFieldMappingsAt("chunk_id", chunkIDField)

	sourceField := bleve.NewTextFieldMapping()
	sourceField.Analyzer = keyword.Name
	sourceField.Store = true
	sourceField.Index = true
	chunkMapping.AddFieldMappingsAt("source", sourceField)

	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = standard.Name
	contentField.Store = false
	contentField.Index = true
	chunkMapping.AddFieldMappingsAt("content", contentField)

	indexMapping.DefaultMapping = chunkMapping
	return indexMapping
}

// BatchIndex indexes chunks under the given ids. The read lock is
// held for the whole batch so Reset cannot close the index mid-write.
func (b *KeywordIndex) BatchIndex(ids []string, sources []string, contents []string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	batch := b.index.NewBatch()
	for i, id := range ids {
		doc := map[string]interface{}{
			"chunk_id": id,
			"source":   sources[i],
			"content":  contents[i],
		}
		if err := batch.Index(id, doc); err != nil {
			return fmt.Errorf("failed to add chunk %s to batch: %w", id, err)
		}
	}
	return b.index.Batch(batch)
}

// Search performs a BM25 search and returns the top k results. The
// read lock is held until the search finishes so Reset cannot close
// the index under an in-flight query.
func (b *KeywordIndex) Search(query string, k int) ([]keywordResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	q := bleve.NewMatchQuery(query)
	q.SetField("content")

	searchRequest := bleve.NewSearchRequest(q)
	searchRequest.Size = k

	searchResult, err := b.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	results := make([]keywordResult, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		results = append(results, keywordResult{ChunkID: hit.ID, Score: hit.Score})
	}
	return results, nil
}

// Reset drops all indexed chunks by recreating the index.
func (b *KeywordIndex) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.index.Close(); err != nil {
		return fmt.Errorf("failed to close keyword index: %w", err)
	}

	if b.path == "" {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return fmt.Errorf("failed to recreate in-memory keyword index: %w", err)
		}
		b.index = index
		return nil
	}

	if err := os.RemoveAll(b.path); err != nil {
		return fmt.Errorf("failed to remove keyword index: %w", err)
	}
	index, err := bleve.New(b.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to recreate keyword index: %w", err)
	}
	b.index = index
	return nil
}

// Close closes the underlying bleve index.
func (b *KeywordIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.index.Close()
}
