package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleEmptyResults(t *testing.T) {
	b := NewContextBuilder(1000)
	assert.Equal(t, "", b.Assemble(nil))
	assert.Equal(t, "", b.Assemble([]Result{}))
}

func TestAssembleIncludesMetadata(t *testing.T) {
	b := NewContextBuilder(2000)
	out := b.Assemble([]Result{
		{
			Title:   "A v. B",
			Court:   "High Court",
			Date:    "2020-01-15",
			Score:   0.87,
			Excerpt: "The plaintiff sued for breach of contract.",
		},
	})

	assert.Contains(t, out, "Case 1: A v. B")
	assert.Contains(t, out, "High Court")
	assert.Contains(t, out, "2020-01-15")
	assert.Contains(t, out, "0.87")
	assert.Contains(t, out, "The plaintiff sued for breach of contract.")
}

func TestAssembleEvenBudgetSplit(t *testing.T) {
	long := strings.Repeat("x", 5000)
	results := []Result{
		{Title: "First", Score: 0.9, Excerpt: long},
		{Title: "Second", Score: 0.8, Excerpt: long},
		{Title: "Third", Score: 0.7, Excerpt: long},
	}

	b := NewContextBuilder(900)
	out := b.Assemble(results)

	// The first case must not starve the later ones
	assert.Contains(t, out, "Case 1: First")
	assert.Contains(t, out, "Case 2: Second")
	assert.Contains(t, out, "Case 3: Third")
	assert.LessOrEqual(t, len(out), 900, "output never exceeds the configured bound")
}

func TestAssembleTightBudgetStaysBounded(t *testing.T) {
	long := strings.Repeat("x", 500)

	b := NewContextBuilder(100)
	out := b.Assemble([]Result{
		{Title: "A v. B", Score: 0.91, Excerpt: long},
	})

	assert.LessOrEqual(t, len(out), 100)
	assert.Contains(t, out, "Case 1: A v. B")

	// Multiple results under the same tight budget stay bounded too,
	// even when later blocks no longer fit
	out = b.Assemble([]Result{
		{Title: "A v. B", Score: 0.91, Excerpt: long},
		{Title: "C v. D", Score: 0.85, Excerpt: long},
		{Title: "E v. F", Score: 0.8, Excerpt: long},
	})
	assert.LessOrEqual(t, len(out), 100)
}

func TestAssembleBudgetSmallerThanHeader(t *testing.T) {
	b := NewContextBuilder(20)
	out := b.Assemble([]Result{
		{Title: "A very long case title that dwarfs the budget", Score: 0.9, Excerpt: "text"},
	})
	assert.Equal(t, "", out, "a block whose header alone overflows the budget is dropped")
}

func TestAssembleDeterministic(t *testing.T) {
	results := []Result{
		{Title: "A", Score: 0.9, Excerpt: strings.Repeat("a", 300)},
		{Title: "B", Score: 0.8, Excerpt: strings.Repeat("b", 300)},
	}
	b := NewContextBuilder(400)

	first := b.Assemble(results)
	second := b.Assemble(results)
	require.Equal(t, first, second)
}

func TestAssembleShortExcerptsLeaveRoomForLater(t *testing.T) {
	results := []Result{
		{Title: "Short", Score: 0.9, Excerpt: "tiny"},
		{Title: "Long", Score: 0.8, Excerpt: strings.Repeat("y", 1000)},
	}
	b := NewContextBuilder(600)
	out := b.Assemble(results)

	// The second case inherits the budget the first did not use
	idx := strings.Index(out, "Case 2: Long")
	require.Greater(t, idx, 0)
	assert.Greater(t, len(out)-idx, 300, "unused budget from earlier cases flows to later ones")
}
