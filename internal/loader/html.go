package loader

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// parseHTML extracts the visible text of an HTML file into a single
// Document. Script and style subtrees are skipped; the page title, if
// present, lands in metadata.
func parseHTML(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open html: %w", err)
	}
	defer f.Close()

	root, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var (
		parts []string
		title string
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if n.FirstChild != nil && title == "" {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			}
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	doc := Document{
		Content: stripNonASCII(strings.Join(parts, "\n")),
		Metadata: map[string]string{
			"source": path,
			"title":  title,
		},
	}

	return []Document{doc}, nil
}
