package chunker

import (
	"fmt"
	"strings"
)

// Chunk is a bounded, possibly overlapping segment of a source document.
type Chunk struct {
	Index int    `json:"index"` // 1-based, stable within a material
	Text  string `json:"text"`

	// Locator. Page is set for paginated prose, LineStart/LineEnd for source code.
	Page      int `json:"page,omitempty"`
	LineStart int `json:"line_start,omitempty"`
	LineEnd   int `json:"line_end,omitempty"`
}

// Page is one page of extracted document text.
type Page struct {
	Number int
	Text   string
}

// ValidateWindow reports whether size and overlap describe a window that
// advances, i.e. size > overlap >= 0.
func ValidateWindow(size, overlap int) error {
	if size <= 0 || overlap < 0 || size <= overlap {
		return fmt.Errorf("chunker: invalid window size=%d overlap=%d (need size > overlap >= 0)", size, overlap)
	}
	return nil
}

func mustValidWindow(size, overlap int) int {
	if err := ValidateWindow(size, overlap); err != nil {
		panic(err.Error())
	}
	return size - overlap
}

// Split splits prose into windows of size words, consecutive windows sharing
// overlap words. Empty input yields no chunks.
func Split(text string, size, overlap int) []Chunk {
	return ChunkPages([]Page{{Text: text}}, size, overlap)
}

// ChunkPages chunks the concatenated word stream of all pages. Each chunk is
// located at the page of its first word.
func ChunkPages(pages []Page, size, overlap int) []Chunk {
	step := mustValidWindow(size, overlap)

	var words []string
	var pageOf []int
	for _, p := range pages {
		for _, w := range strings.Fields(p.Text) {
			words = append(words, w)
			pageOf = append(pageOf, p.Number)
		}
	}

	total := len(words)
	var chunks []Chunk
	for start := 0; start < total; start += step {
		end := start + size
		if end > total {
			end = total
		}

		slice := strings.Join(words[start:end], " ")
		if strings.TrimSpace(slice) != "" {
			chunks = append(chunks, Chunk{
				Index: len(chunks) + 1,
				Text:  slice,
				Page:  pageOf[start],
			})
		}

		if end == total {
			break
		}
	}

	return chunks
}
