package loader

import (
	"fmt"
	"strconv"

	"github.com/ledongthuc/pdf"
)

// parsePDF extracts plain text from a PDF file, one Document per page.
// Page order within the file is preserved; empty pages are skipped.
func parsePDF(path string) ([]Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	docs := make([]Document, 0, total)

	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}

		docs = append(docs, Document{
			Content: stripNonASCII(text),
			Metadata: map[string]string{
				"source": path,
				"page":   strconv.Itoa(i),
			},
		})
	}

	return docs, nil
}
