package assembler

import (
	"fmt"
	"strings"

	"haskify-be/pkg/rag/retriever"
)

const (
	MaxChunkChars = 1000
	MaxTitleChars = 40

	ContextHeader  = "CONTEXT (from course materials):"
	HistoryHeader  = "QUIZ HISTORY (most recent first):"
	ChunkSeparator = "\n---\n"
	sectionJoin    = "\n\n"
)

// AssembleContext renders retrieved chunks and an optional quiz-history
// summary into one prompt block. Sections without content are omitted, so no
// results and no history give "".
func AssembleContext(results []retriever.Result, history string) string {
	var sections []string

	if len(results) > 0 {
		parts := make([]string, len(results))
		for i, r := range results {
			parts[i] = fmt.Sprintf("[%s #%d | %s] %s",
				provenanceTitle(r.SourceTitle), r.ChunkIndex, originTag(r.Origin), truncate(r.Text, MaxChunkChars))
		}
		sections = append(sections, ContextHeader+"\n"+strings.Join(parts, ChunkSeparator))
	}

	if history = strings.TrimSpace(history); history != "" {
		sections = append(sections, HistoryHeader+"\n"+history)
	}

	return strings.Join(sections, sectionJoin)
}

func provenanceTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Material"
	}
	return truncate(title, MaxTitleChars)
}

func originTag(o retriever.Origin) string {
	if o == retriever.OriginSystem {
		return "system"
	}
	return "session"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
