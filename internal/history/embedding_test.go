package history

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestEmbedDimension(t *testing.T) {
	assert.Len(t, Embed("How much did I spend on food?"), EmbeddingDim)
	assert.Len(t, Embed(""), EmbeddingDim)
}

func TestEmbedEmptyIsZero(t *testing.T) {
	for _, v := range Embed("   ") {
		assert.Zero(t, v)
	}
}

func TestEmbedIsNormalized(t *testing.T) {
	embedding := Embed("How much did I spend on travel last month?")

	var sumSquares float64
	for _, v := range embedding {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 0.001)
}

func TestEmbedDeterministic(t *testing.T) {
	first := Embed("What was my biggest expense?")
	second := Embed("What was my biggest expense?")
	assert.Equal(t, first, second)
}

func TestEmbedSimilarQuestionsRankCloser(t *testing.T) {
	base := Embed("How much did I spend on food this month?")
	similar := Embed("How much did I spend on groceries this month?")
	unrelated := Embed("What is my salary income for the year?")

	require.NotEqual(t, base, similar)
	assert.Greater(t, cosine(base, similar), cosine(base, unrelated))
}
