package index

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"ragserve/internal/loader"
)

// Hybrid combines vector similarity and BM25 keyword search over a
// sqlite-backed chunk store using Reciprocal Rank Fusion (RRF).
type Hybrid struct {
	store    *Store
	keyword  *KeywordIndex
	embedder Embedder
	log      zerolog.Logger
}

// NewHybrid opens the persistent hybrid index at dbPath. The bleve
// keyword index lives next to the database file.
func NewHybrid(ctx context.Context, dbPath string, embedder Embedder, log zerolog.Logger) (*Hybrid, error) {
	store, err := NewStore(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	kw, err := NewKeywordIndex(dbPath, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Hybrid{store: store, keyword: kw, embedder: embedder, log: log}, nil
}

// Add embeds the documents and stores them in both indexes.
func (h *Hybrid) Add(ctx context.Context, docs []loader.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	vectors, err := h.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	ids, err := h.store.insertChunks(ctx, docs, vectors)
	if err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}

	sources := make([]string, len(docs))
	for i, doc := range docs {
		sources[i] = doc.Metadata["source"]
	}
	if err := h.keyword.BatchIndex(ids, sources, texts); err != nil {
		return fmt.Errorf("failed to index chunks: %w", err)
	}

	h.log.Debug().Int("chunks", len(docs)).Msg("chunks indexed")
	return nil
}

// Query implements Retriever. Both searches over-fetch so that a hit
// present in only one of them can still make the merged top k.
func (h *Hybrid) Query(ctx context.Context, text string, k int) ([]loader.Document, error) {
	if k <= 0 {
		return []loader.Document{}, nil
	}
	fetch := k * 2

	queryVector, err := h.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	vecResults, err := h.store.searchVectors(ctx, queryVector, fetch)
	if err != nil {
		return nil, err
	}

	kwResults, err := h.keyword.Search(text, fetch)
	if err != nil {
		return nil, err
	}

	merged := rrfMerge(vecResults, kwResults, k)

	ids := make([]string, len(merged))
	for i, m := range merged {
		ids[i] = m.chunkID
	}
	records, err := h.store.getChunks(ctx, ids)
	if err != nil {
		return nil, err
	}

	docs := make([]loader.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, loader.Document{Content: rec.Content, Metadata: rec.Metadata})
	}
	return docs, nil
}

// rrfMerge fuses the two ranked lists with Reciprocal Rank Fusion.
func rrfMerge(vec []scoredChunkID, kw []keywordResult, k int) []scoredChunkID {
	const kOffset = 60.0

	scores := make(map[string]float64)
	for i, r := range vec {
		scores[r.chunkID] += 1.0 / (kOffset + float64(i+1))
	}
	for i, r := range kw {
		scores[r.ChunkID] += 1.0 / (kOffset + float64(i+1))
	}

	merged := make([]scoredChunkID, 0, len(scores))
	for chunkID, score := range scores {
		merged = append(merged, scoredChunkID{chunkID: chunkID, score: score})
	}
	sortByScore(merged)

	if len(merged) > k {
		merged = merged[:k]
	}
	return merged
}

// sortByScore sorts descending by score, ties broken by chunk id so
// results are deterministic.
func sortByScore(scored []scoredChunkID) {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].chunkID < scored[j].chunkID
	})
}

// Reset drops all chunks from both indexes.
func (h *Hybrid) Reset(ctx context.Context) error {
	if err := h.store.reset(ctx); err != nil {
		return fmt.Errorf("failed to reset chunk store: %w", err)
	}
	if err := h.keyword.Reset(); err != nil {
		return fmt.Errorf("failed to reset keyword index: %w", err)
	}
	return nil
}

// Count returns the number of indexed chunks.
func (h *Hybrid) Count(ctx context.Context) (int, error) {
	return h.store.count(ctx)
}

// Close closes both underlying indexes.
func (h *Hybrid) Close() error {
	kwErr := h.keyword.Close()
	if err := h.store.Close(); err != nil {
		return err
	}
	return kwErr
}
