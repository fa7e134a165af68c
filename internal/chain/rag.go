// Package chain composes the retrieval and chat pipelines out of the
// retriever, prompt, llm, history and extract building blocks.
package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ragserve/internal/extract"
	"ragserve/internal/index"
	"ragserve/internal/llm"
	"ragserve/internal/prompt"
)

// RAGFunc answers a question grounded in the indexed documents.
type RAGFunc func(ctx context.Context, question string) (string, error)

// RAGOptions configures the retrieval chain.
type RAGOptions struct {
	// TopK is the number of chunks retrieved per question.
	TopK int
}

func (o RAGOptions) withDefaults() RAGOptions {
	if o.TopK <= 0 {
		o.TopK = 10
	}
	return o
}

// NewRAG builds the question-answering chain: retrieve the most
// relevant chunks, render them into the QA prompt, generate, then
// extract the text after the answer marker.
func NewRAG(client llm.Client, retriever index.Retriever, opts RAGOptions, log zerolog.Logger) RAGFunc {
	opts = opts.withDefaults()

	return func(ctx context.Context, question string) (string, error) {
		docs, err := retriever.Query(ctx, question, opts.TopK)
		if err != nil {
			return "", fmt.Errorf("retrieve context: %w", err)
		}

		contents := make([]string, len(docs))
		for i, doc := range docs {
			contents[i] = doc.Content
		}
		retrieved := strings.Join(contents, "\n\n")

		rendered, err := prompt.RenderQA(question, retrieved)
		if err != nil {
			return "", err
		}

		output, err := client.Generate(ctx, []llm.Message{
			{Role: llm.RoleHuman, Content: rendered},
		})
		if err != nil {
			return "", fmt.Errorf("generate answer: %w", err)
		}

		log.Debug().Int("chunks", len(docs)).Int("output_len", len(output)).Msg("rag chain completed")
		return extract.ExtractAnswer(output), nil
	}
}
