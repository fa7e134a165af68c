package index

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"ragserve/internal/loader"
)

// fakeEmbedder returns canned unit vectors per text so similarity
// ranking is deterministic without network calls.
type fakeEmbedder struct {
	vectors map[string][]float32
	def     []float32
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{
		vectors: make(map[string][]float32),
		def:     []float32{0, 0, 1},
	}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return f.def, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, _ := f.Embed(ctx, text)
		out[i] = vec
	}
	return out, nil
}

func doc(content, source string) loader.Document {
	return loader.Document{
		Content:  content,
		Metadata: map[string]string{"source": source},
	}
}

func newTestHybrid(t *testing.T, embedder Embedder) *Hybrid {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "chunks.db")
	h, err := NewHybrid(context.Background(), dbPath, embedder, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHybrid: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHybridQueryRanksSimilarChunkFirst(t *testing.T) {
	embedder := newFakeEmbedder()
	embedder.vectors["the capital of france is paris"] = []float32{1, 0, 0}
	embedder.vectors["rust has a borrow checker"] = []float32{0, 1, 0}
	embedder.vectors["what is the capital of france"] = []float32{1, 0, 0}

	h := newTestHybrid(t, embedder)
	ctx := context.Background()

	docs := []loader.Document{
		doc("the capital of france is paris", "geo.html"),
		doc("rust has a borrow checker", "lang.html"),
	}
	if err := h.Add(ctx, docs); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := h.Query(ctx, "what is the capital of france", 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Content != "the capital of france is paris" {
		t.Errorf("top result = %q, want the france chunk", results[0].Content)
	}
	if results[0].Metadata["source"] != "geo.html" {
		t.Errorf("top result source = %q, want geo.html", results[0].Metadata["source"])
	}
}

func TestHybridKeywordCarriesZeroVectors(t *testing.T) {
	// With zero vectors every cosine similarity ties at 0, so the
	// keyword side of the fusion must surface the matching chunk.
	h := newTestHybrid(t, NewNoopEmbedder(8))
	ctx := context.Background()

	docs := []loader.Document{
		doc("postgres supports logical replication", "db.html"),
		doc("the weather today is sunny", "weather.html"),
		doc("cooking pasta takes ten minutes", "food.html"),
	}
	if err := h.Add(ctx, docs); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := h.Query(ctx, "replication", 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Metadata["source"] != "db.html" {
		t.Errorf("top result source = %q, want db.html", results[0].Metadata["source"])
	}
}

func TestHybridResetDropsChunks(t *testing.T) {
	h := newTestHybrid(t, NewNoopEmbedder(4))
	ctx := context.Background()

	if err := h.Add(ctx, []loader.Document{doc("some text", "a.html")}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if n, _ := h.Count(ctx); n != 1 {
		t.Fatalf("count before reset = %d, want 1", n)
	}

	if err := h.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if n, _ := h.Count(ctx); n != 0 {
		t.Errorf("count after reset = %d, want 0", n)
	}

	results, err := h.Query(ctx, "some text", 3)
	if err != nil {
		t.Fatalf("Query after reset: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results after reset, want 0", len(results))
	}
}

func TestMemoryQueryReturnsNearestChunk(t *testing.T) {
	embedder := newFakeEmbedder()
	embedder.vectors["go uses goroutines for concurrency"] = []float32{1, 0, 0}
	embedder.vectors["bread needs time to rise"] = []float32{0, 1, 0}
	embedder.vectors["how does go handle concurrency"] = []float32{1, 0, 0}

	m, err := NewMemory(embedder, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	ctx := context.Background()

	docs := []loader.Document{
		doc("go uses goroutines for concurrency", "go.html"),
		doc("bread needs time to rise", "baking.html"),
	}
	if err := m.Add(ctx, docs); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := m.Query(ctx, "how does go handle concurrency", 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Metadata["source"] != "go.html" {
		t.Errorf("top result source = %q, want go.html", results[0].Metadata["source"])
	}
}

func TestMemoryQueryClampsToCollectionSize(t *testing.T) {
	embedder := newFakeEmbedder()
	embedder.vectors["only one chunk here"] = []float32{1, 0, 0}

	m, err := NewMemory(embedder, 1, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	ctx := context.Background()

	if err := m.Add(ctx, []loader.Document{doc("only one chunk here", "a.html")}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Asking for more than stored must not fail.
	results, err := m.Query(ctx, "only one chunk here", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestMemoryQueryEmptyCollection(t *testing.T) {
	m, err := NewMemory(newFakeEmbedder(), 1, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}

	results, err := m.Query(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from empty collection, want 0", len(results))
	}
}

func TestRRFMergePrefersChunksInBothLists(t *testing.T) {
	vec := []scoredChunkID{
		{chunkID: "a", score: 0.9},
		{chunkID: "b", score: 0.8},
	}
	kw := []keywordResult{
		{ChunkID: "b", Score: 3.0},
		{ChunkID: "c", Score: 1.0},
	}

	merged := rrfMerge(vec, kw, 3)
	if len(merged) != 3 {
		t.Fatalf("got %d merged results, want 3", len(merged))
	}
	// b appears in both lists so it must outrank a and c.
	if merged[0].chunkID != "b" {
		t.Errorf("top merged chunk = %q, want b", merged[0].chunkID)
	}
}

func TestEncodeDecodeVectorRoundTrip(t *testing.T) {
	original := []float32{0.25, -1.5, 3.75, 0}
	decoded, err := decodeVector(encodeVector(original))
	if err != nil {
		t.Fatalf("decodeVector: %v", err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("got %d floats, want %d", len(decoded), len(original))
	}
	for i := range original {
		if decoded[i] != original[i] {
			t.Errorf("decoded[%d] = %v, want %v", i, decoded[i], original[i])
		}
	}
}

func TestDecodeVectorRejectsBadLength(t *testing.T) {
	if _, err := decodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for data not divisible by 4")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0.0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHybridRestartResetKeepsSingleCopy(t *testing.T) {
	// The store persists between runs. A restart re-ingests the data
	// directory, so it must reset first or every chunk accumulates a
	// second copy per restart.
	dbPath := filepath.Join(t.TempDir(), "chunks.db")
	ctx := context.Background()
	chunk := doc("the only chunk in the corpus", "a.html")

	h, err := NewHybrid(ctx, dbPath, NewNoopEmbedder(4), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHybrid: %v", err)
	}
	if err := h.Add(ctx, []loader.Document{chunk}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewHybrid(ctx, dbPath, NewNoopEmbedder(4), zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if n, err := reopened.Count(ctx); err != nil || n != 1 {
		t.Fatalf("count after reopen = %d (%v), want the persisted chunk", n, err)
	}

	if err := reopened.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := reopened.Add(ctx, []loader.Document{chunk}); err != nil {
		t.Fatalf("Add after reset: %v", err)
	}

	if n, _ := reopened.Count(ctx); n != 1 {
		t.Fatalf("count after restart ingest = %d, want 1", n)
	}
	results, err := reopened.Query(ctx, "corpus", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d copies of the chunk after a restart, want 1", len(results))
	}
}

func TestMemoryConcurrentResetAndQuery(t *testing.T) {
	embedder := newFakeEmbedder()
	m, err := NewMemory(embedder, 1, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	ctx := context.Background()
	if err := m.Add(ctx, []loader.Document{doc("seed chunk", "a.html")}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if err := m.Reset(ctx); err != nil {
				t.Errorf("Reset: %v", err)
				return
			}
			if err := m.Add(ctx, []loader.Document{doc("seed chunk", "a.html")}); err != nil {
				t.Errorf("Add: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if _, err := m.Query(ctx, "seed chunk", 1); err != nil {
				t.Errorf("Query: %v", err)
				return
			}
		}
	}()
	wg.Wait()
}

func TestHybridConcurrentResetAndQuery(t *testing.T) {
	h := newTestHybrid(t, NewNoopEmbedder(4))
	ctx := context.Background()
	if err := h.Add(ctx, []loader.Document{doc("seed chunk", "a.html")}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			if err := h.Reset(ctx); err != nil {
				t.Errorf("Reset: %v", err)
				return
			}
			if err := h.Add(ctx, []loader.Document{doc("seed chunk", "a.html")}); err != nil {
				t.Errorf("Add: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			if _, err := h.Query(ctx, "seed", 1); err != nil {
				t.Errorf("Query: %v", err)
				return
			}
		}
	}()
	wg.Wait()
}
