package chunker

import (
	"regexp"
	"strings"
)

// definition starts: Python/JS/Go style keywords, decorators, and Haskell
// top-level type signatures ("name :: ...").
var (
	definitionPrefixes = []string{"def ", "async def ", "class ", "function ", "func ", "@"}
	haskellSignature   = regexp.MustCompile(`^[a-z_][A-Za-z0-9_']*\s*::`)
)

func isDefinitionStart(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, p := range definitionPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return haskellSignature.MatchString(line)
}

// ChunkCode splits source code into windows of size lines overlapping by
// overlap lines. Once a chunk holds minLines lines it is cut early in front of
// the next definition so functions and classes stay together. Each chunk
// records its 1-based inclusive line range.
func ChunkCode(text string, size, overlap, minLines int) []Chunk {
	mustValidWindow(size, overlap)
	if minLines <= overlap {
		minLines = overlap + 1
	}
	if minLines > size {
		minLines = size
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	total := len(lines)

	var chunks []Chunk
	start := 0
	for start < total {
		end := start + size
		if end > total {
			end = total
		}
		for b := start + minLines; b < end; b++ {
			if isDefinitionStart(lines[b]) {
				end = b
				break
			}
		}

		slice := strings.Join(lines[start:end], "\n")
		if strings.TrimSpace(slice) != "" {
			chunks = append(chunks, Chunk{
				Index:     len(chunks) + 1,
				Text:      slice,
				LineStart: start + 1,
				LineEnd:   end,
			})
		}

		if end == total {
			break
		}
		start = end - overlap
	}

	return chunks
}
