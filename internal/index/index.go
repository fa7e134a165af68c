// Package index stores document chunks and retrieves the ones most
// relevant to a query. Two backends exist: a persistent sqlite+bleve
// hybrid and an in-memory chromem store. Both satisfy Index.
package index

import (
	"context"

	"ragserve/internal/loader"
)

// Retriever finds the chunks most relevant to a query, best first.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]loader.Document, error)
}

// Index ingests chunks and retrieves them. Reset drops all stored
// chunks so a changed data directory can be reindexed from scratch.
// Implementations must keep Reset safe against concurrent Query
// calls; the chains keep querying while a background reindex runs.
type Index interface {
	Retriever
	Add(ctx context.Context, docs []loader.Document) error
	Reset(ctx context.Context) error
	Close() error
}
