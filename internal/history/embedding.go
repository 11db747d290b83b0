package history

import (
	"math"
	"strings"
)

// EmbeddingDim is the fixed dimensionality of question embeddings. The
// question_history table's vector column must match.
const EmbeddingDim = 128

// financeKeywords are binary features for the vocabulary that actually shows
// up in finance questions. Crude next to a real embedding model, but it only
// has to rank a user's own past questions, not the open web.
var financeKeywords = []string{
	"spend", "spent", "spending", "expense", "expenses", "income", "salary",
	"budget", "saving", "savings", "balance", "total", "sum", "average",
	"biggest", "largest", "top", "most", "least", "compare", "category",
	"month", "week", "day", "year", "last", "this", "recent",
	"food", "groceries", "travel", "trip", "subscription", "netflix",
	"spotify", "shopping", "amazon", "clothes", "rent", "mortgage", "bills",
	"merchant", "transaction", "transactions", "paycheck", "net",
}

// Embed converts a question into a fixed-size feature vector: letter and
// digit frequencies, finance keyword hits, and a few structural features,
// L2-normalized.
func Embed(text string) []float32 {
	embedding := make([]float32, EmbeddingDim)
	cleaned := strings.ToLower(strings.TrimSpace(text))
	if cleaned == "" {
		return embedding
	}

	// Features 0-36: character frequencies for a-z, 0-9 and space
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789 "
	counts := make(map[rune]int)
	for _, r := range cleaned {
		counts[r]++
	}
	for i, r := range chars {
		if n, ok := counts[r]; ok {
			embedding[i] = float32(n) / float32(len(cleaned))
		}
	}

	// Keyword presence features
	offset := len(chars)
	for i, keyword := range financeKeywords {
		if offset+i >= EmbeddingDim {
			break
		}
		if strings.Contains(cleaned, keyword) {
			embedding[offset+i] = 1.0
		}
	}

	// Structural features in the remaining slots
	structural := offset + len(financeKeywords)
	if structural+2 < EmbeddingDim {
		embedding[structural] = float32(len(cleaned)) / 200.0
		embedding[structural+1] = float32(strings.Count(cleaned, " ")+1) / 40.0
		embedding[structural+2] = float32(strings.Count(cleaned, "?"))
	}

	// L2 normalization
	var sumSquares float64
	for _, v := range embedding {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range embedding {
			embedding[i] *= norm
		}
	}

	return embedding
}
