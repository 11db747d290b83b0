package assistant

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/ledgerchat/ledgerchat/internal/errors"
	"github.com/ledgerchat/ledgerchat/internal/llm"
	"github.com/ledgerchat/ledgerchat/internal/observability"
	"github.com/ledgerchat/ledgerchat/internal/store"
)

// NoResultsMessage is the fixed answer for an empty result set
const NoResultsMessage = "No results found for your query."

const summaryPrompt = `You are a financial assistant. Based on these SQL query results, create a concise, human-friendly summary. Avoid markdown formatting. When the results include category or amount values, state them explicitly.
User question: %s
Query results:
%s`

// Summarizer renders a result set into a plain-language sentence via the model
type Summarizer struct {
	llm llm.Client
}

// NewSummarizer creates a summarizer on the given model client
func NewSummarizer(client llm.Client) *Summarizer {
	return &Summarizer{llm: client}
}

// Summarize turns the rows into a display-safe sentence. An empty result set
// short-circuits to the fixed message without a model call.
func (s *Summarizer) Summarize(ctx context.Context, question string, results *store.ResultSet) (string, error) {
	if results.Empty() {
		return NoResultsMessage, nil
	}

	prompt := fmt.Sprintf(summaryPrompt, question, RenderTable(results))

	start := time.Now()
	reply, err := s.llm.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	})
	observability.RecordLLMMetrics("summarize", time.Since(start), err)
	if err != nil {
		return "", errors.NewSummarizationError(err)
	}

	return CleanSummary(reply), nil
}

// RenderTable serializes a result set as a flat header+rows text block in
// the statement's column order
func RenderTable(results *store.ResultSet) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(results.Columns, " | "))
	sb.WriteString("\n")

	for _, row := range results.Rows {
		cells := make([]string, len(results.Columns))
		for i, col := range results.Columns {
			cells[i] = formatValue(row[col])
		}
		sb.WriteString(strings.Join(cells, " | "))
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

func formatValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%.2f", value)
	case time.Time:
		return value.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", value)
	}
}

var (
	emphasisRe = regexp.MustCompile(`[*_]+`)
	collapseRe = regexp.MustCompile(`\s+`)
)

// CleanSummary strips markdown emphasis, collapses whitespace and escapes
// the model's reply for safe markup display
func CleanSummary(reply string) string {
	cleaned := emphasisRe.ReplaceAllString(reply, " ")
	cleaned = strings.TrimSpace(collapseRe.ReplaceAllString(cleaned, " "))
	return html.EscapeString(cleaned)
}
