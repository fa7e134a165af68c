package loader

// Document is a unit of parsed source text. A PDF yields one Document
// per page, an HTML file yields a single Document. After splitting,
// each chunk is itself a Document carrying the metadata of its origin.
type Document struct {
	Content  string
	Metadata map[string]string
}

// cloneMetadata copies a metadata map so chunks of the same source
// document don't share storage.
func cloneMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// stripNonASCII removes every rune outside the 7-bit ASCII range.
// Non-ASCII text is dropped, not transliterated; this is lossy and
// intentional, downstream embedding quality depends on it staying
// deterministic.
func stripNonASCII(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}

	var b []byte
	b = make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x80 {
			b = append(b, byte(r))
		}
	}
	return string(b)
}
