package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"

	"ragserve/internal/loader"
)

// chunkRecord is a stored chunk row.
type chunkRecord struct {
	ChunkID  string
	Source   string
	Content  string
	Metadata map[string]string
}

// Store persists chunks and their embeddings in sqlite.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the chunk database at dbPath.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	// Enable WAL mode for better concurrency and set busy timeout
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support multiple writers well
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		chunk_id TEXT PRIMARY KEY,
		source   TEXT NOT NULL,
		content  TEXT NOT NULL,
		metadata TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS embeddings (
		chunk_id TEXT PRIMARY KEY,
		dim      INTEGER NOT NULL,
		vector   BLOB NOT NULL,
		FOREIGN KEY (chunk_id) REFERENCES chunks(chunk_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// insertChunks stores the documents and their vectors in one
// transaction and returns the generated chunk ids in document order.
func (s *Store) insertChunks(ctx context.Context, docs []loader.Document, vectors [][]float32) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	chunkStmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks (chunk_id, source, content, metadata) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer chunkStmt.Close()

	embStmt, err := tx.PrepareContext(ctx, `INSERT INTO embeddings (chunk_id, dim, vector) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer embStmt.Close()

	ids := make([]string, len(docs))
	for i, doc := range docs {
		id := uuid.NewString()
		ids[i] = id

		metadata, err := json.Marshal(doc.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		if _, err := chunkStmt.ExecContext(ctx, id, doc.Metadata["source"], doc.Content, string(metadata)); err != nil {
			return nil, fmt.Errorf("failed to insert chunk: %w", err)
		}

		vec := vectors[i]
		if _, err := embStmt.ExecContext(ctx, id, len(vec), encodeVector(vec)); err != nil {
			return nil, fmt.Errorf("failed to insert embedding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return ids, nil
}

// getChunks fetches the given chunk ids, preserving the input order.
func (s *Store) getChunks(ctx context.Context, ids []string) ([]chunkRecord, error) {
	records := make([]chunkRecord, 0, len(ids))
	for _, id := range ids {
		var rec chunkRecord
		var metadata string
		query := `SELECT chunk_id, source, content, metadata FROM chunks WHERE chunk_id = ?`
		err := s.db.QueryRowContext(ctx, query, id).Scan(&rec.ChunkID, &rec.Source, &rec.Content, &metadata)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chunk %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(metadata), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", id, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// scoredChunkID pairs a chunk id with a similarity score.
type scoredChunkID struct {
	chunkID string
	score   float64
}

// searchVectors scores every stored embedding against the query
// vector and returns the top k ids. A full scan is fine at document
// collection scale; swap in an ANN index if collections grow past
// tens of thousands of chunks.
func (s *Store) searchVectors(ctx context.Context, queryVector []float32, k int) ([]scoredChunkID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chunk_id, vector FROM embeddings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	var scored []scoredChunkID
	for rows.Next() {
		var chunkID string
		var data []byte
		if err := rows.Scan(&chunkID, &data); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}

		vector, err := decodeVector(data)
		if err != nil {
			continue
		}
		scored = append(scored, scoredChunkID{chunkID: chunkID, score: cosineSimilarity(queryVector, vector)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating embeddings: %w", err)
	}

	sortByScore(scored)
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// reset removes all chunks and embeddings.
func (s *Store) reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM embeddings; DELETE FROM chunks;`)
	return err
}

// count returns the number of stored chunks.
func (s *Store) count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}
