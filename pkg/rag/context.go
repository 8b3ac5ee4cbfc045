package rag

import (
	"fmt"
	"strings"
)

const DefaultMaxContextChars = 6000

// ContextBuilder formats retrieved cases into a bounded textual block for
// the generation prompt. Output is deterministic: same results and budget
// always yield the same string.
type ContextBuilder struct {
	maxChars int
}

func NewContextBuilder(maxChars int) *ContextBuilder {
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}
	return &ContextBuilder{maxChars: maxChars}
}

// Assemble builds one block per result: title, court, date, relevance and
// a head excerpt of the case text. The remaining character budget is split
// evenly across the remaining results so the first case does not starve
// the later ones. The header and separators of each block count against
// its share, so the output never exceeds the configured budget. Empty
// results yield "".
func (b *ContextBuilder) Assemble(results []Result) string {
	var sb strings.Builder
	remaining := b.maxChars
	for i, res := range results {
		header := fmt.Sprintf("Case %d: %s", i+1, orUnknown(res.Title))
		var meta []string
		if res.Court != "" {
			meta = append(meta, res.Court)
		}
		if res.Date != "" {
			meta = append(meta, res.Date)
		}
		if len(meta) > 0 {
			header += " (" + strings.Join(meta, ", ") + ")"
		}
		header += fmt.Sprintf(" [relevance: %.2f]", res.Score)

		// Even split of what is left over the results still to come.
		// The header, its newline and the blank separator are charged
		// first; only the remainder of the share goes to the excerpt.
		share := remaining / (len(results) - i)
		excerptBudget := share - len(header) - len("\n") - len("\n\n")
		if excerptBudget <= 0 {
			break
		}
		excerpt := headExcerpt(res.Excerpt, excerptBudget)

		block := header + "\n" + excerpt + "\n\n"
		if len(block) > remaining {
			break
		}
		sb.WriteString(block)
		remaining -= len(block)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Untitled Case"
	}
	return s
}

// headExcerpt takes the head of text, cut at a rune boundary, with a
// trailing ellipsis when truncated. The ellipsis counts toward budget.
func headExcerpt(text string, budget int) string {
	text = strings.TrimSpace(text)
	if budget <= 0 {
		return ""
	}
	if len(text) <= budget {
		return text
	}
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	const ellipsis = "..."
	if budget <= len(ellipsis) {
		return string(runes[:budget])
	}
	return string(runes[:budget-len(ellipsis)]) + ellipsis
}
