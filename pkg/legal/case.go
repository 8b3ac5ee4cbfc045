package legal

import (
	"bufio"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CaseRecord is one legal precedent as produced by the scraper pipeline.
// All descriptive metadata is optional: scraped data is incomplete and
// the retrieval core must tolerate empty fields.
type CaseRecord struct {
	Id           string   `json:"id"`
	Title        string   `json:"title"`
	Court        string   `json:"court"`
	DecisionDate string   `json:"decision_date"`
	Judges       string   `json:"judges"`
	Url          string   `json:"url"`
	FullText     string   `json:"full_text"`
	Citations    []string `json:"citations"`
	LegalActs    []string `json:"legal_acts"`
	Category     string   `json:"category"` // the search query bucket the case was scraped under
	ScrapedAt    string   `json:"scraped_at"`
}

// EnsureID fills Id when the scraper did not provide one.
// Prefers a hash of the source URL (stable across re-scrapes), falls back
// to a hash of the full text.
func (c *CaseRecord) EnsureID() {
	if c.Id != "" {
		return
	}
	source := c.Url
	if source == "" {
		source = c.FullText
	}
	sum := sha256.Sum256([]byte(source))
	c.Id = fmt.Sprintf("case_%x", sum[:8])
}

// EmbeddingText builds the text that gets embedded for this case:
// category + title + body, whitespace-normalized. Keeping the category in
// front mirrors how the corpus was collected (cases were scraped per legal
// topic query) and measurably helps topical recall.
func (c *CaseRecord) EmbeddingText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.Category, c.Title, c.FullText} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// DisplayTitle returns the case title, deriving one from the first
// meaningful line of the full text when the scraper left it empty.
func (c *CaseRecord) DisplayTitle() string {
	if t := strings.TrimSpace(c.Title); t != "" {
		return t
	}
	for _, line := range strings.Split(c.FullText, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 10 {
			if len(line) > 100 {
				line = line[:100]
			}
			return line
		}
	}
	return "Untitled Case"
}

// ReadCasesFile loads case records from a JSON array file or a JSONL file
// (one object per line). The scraper emits both formats depending on the
// partial-file stage it was interrupted at.
func ReadCasesFile(path string) ([]CaseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cases file: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)

	// Peek at the first non-space byte to detect the format
	first, err := peekFirstByte(reader)
	if err != nil {
		return nil, fmt.Errorf("read cases file: %w", err)
	}

	if first == '[' {
		var cases []CaseRecord
		if err := json.NewDecoder(reader).Decode(&cases); err != nil {
			return nil, fmt.Errorf("decode cases array: %w", err)
		}
		return cases, nil
	}

	// JSONL
	var cases []CaseRecord
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024) // cases can be tens of KB
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var c CaseRecord
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, fmt.Errorf("decode case at line %d: %w", lineNo, err)
		}
		cases = append(cases, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan cases file: %w", err)
	}
	return cases, nil
}

func peekFirstByte(r *bufio.Reader) (byte, error) {
	for {
		b, err := r.Peek(1)
		if err != nil {
			return 0, err
		}
		if b[0] == ' ' || b[0] == '\n' || b[0] == '\r' || b[0] == '\t' {
			if _, err := r.Discard(1); err != nil {
				return 0, err
			}
			continue
		}
		return b[0], nil
	}
}

// IndexMetadata is the display subset stored next to each vector so search
// results can be rendered without re-reading the corpus file.
func (c *CaseRecord) IndexMetadata() map[string]string {
	return map[string]string{
		"title":    c.DisplayTitle(),
		"court":    c.Court,
		"date":     c.DecisionDate,
		"judges":   c.Judges,
		"url":      c.Url,
		"category": c.Category,
	}
}
