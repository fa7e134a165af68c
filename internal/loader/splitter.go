package loader

import "strings"

// DefaultSeparators is the separator priority order for the recursive
// splitter: paragraph break, line break, word break, then individual
// characters as the unconditional fallback.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter breaks document content into chunks no longer than
// ChunkSize, with ChunkOverlap characters repeated between consecutive
// chunks of the same document. It recursively tries separators in
// priority order, so chunk boundaries fall on the coarsest structure
// that still fits the size budget.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// NewSplitter creates a splitter with the given chunk size and overlap.
// Overlap must be smaller than the chunk size; values out of range are
// clamped rather than rejected.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize < 1 {
		chunkSize = 1
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize - 1
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   DefaultSeparators,
	}
}

// SplitDocuments splits each document into chunk documents, copying the
// source document's metadata onto every chunk.
func (s *Splitter) SplitDocuments(docs []Document) []Document {
	var out []Document
	for _, doc := range docs {
		for _, chunk := range s.SplitText(doc.Content) {
			out = append(out, Document{
				Content:  chunk,
				Metadata: cloneMetadata(doc.Metadata),
			})
		}
	}
	return out
}

// SplitText splits raw text into chunks.
func (s *Splitter) SplitText(text string) []string {
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	// Pick the first separator present in the text. The empty string
	// always matches and splits into single characters.
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	splits := splitKeepingSeparator(text, separator)

	// Merge small splits into chunks; recurse into splits that are
	// still too large with the remaining, finer separators.
	var final []string
	var good []string
	for _, piece := range splits {
		if len(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(next) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// splitKeepingSeparator splits text on separator, keeping the separator
// attached to the front of the following piece so no characters are
// lost when pieces are rejoined. Empty pieces are dropped.
func splitKeepingSeparator(text, separator string) []string {
	var splits []string
	if separator == "" {
		for _, r := range text {
			splits = append(splits, string(r))
		}
	} else {
		parts := strings.Split(text, separator)
		splits = append(splits, parts[0])
		for _, p := range parts[1:] {
			splits = append(splits, separator+p)
		}
	}

	out := splits[:0]
	for _, piece := range splits {
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// merge packs consecutive splits into chunks of at most chunkSize
// characters using a sliding window: when a chunk is emitted, splits
// are dropped from the front of the window until the retained tail is
// within the overlap budget, and the next chunk starts from that tail.
func (s *Splitter) merge(splits []string) []string {
	var chunks []string
	var window []string
	total := 0

	for _, piece := range splits {
		if total+len(piece) > s.chunkSize && len(window) > 0 {
			if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.chunkOverlap || (total+len(piece) > s.chunkSize && total > 0) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += len(piece)
	}

	if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}
