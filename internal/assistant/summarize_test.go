package assistant

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerchat/ledgerchat/internal/llm"
	"github.com/ledgerchat/ledgerchat/internal/store"
)

// fakeClient scripts the model's replies for pipeline tests
type fakeClient struct {
	replies []string
	err     error
	calls   int
}

func (f *fakeClient) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", fmt.Errorf("no scripted reply")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func TestSummarizeEmptyResults(t *testing.T) {
	client := &fakeClient{}
	s := NewSummarizer(client)

	got, err := s.Summarize(context.Background(), "How much did I spend?", &store.ResultSet{
		Columns: []string{"total"},
	})

	require.NoError(t, err)
	assert.Equal(t, NoResultsMessage, got)
	assert.Zero(t, client.calls, "empty results must not reach the model")
}

func TestSummarizeCleansReply(t *testing.T) {
	client := &fakeClient{replies: []string{"You spent **$120.00** on *Travel* <b>this month</b>"}}
	s := NewSummarizer(client)

	results := &store.ResultSet{
		Columns: []string{"total"},
		Rows:    []store.Row{{"total": 120.0}},
	}

	got, err := s.Summarize(context.Background(), "travel spend?", results)
	require.NoError(t, err)
	assert.Equal(t, "You spent $120.00 on Travel &lt;b&gt;this month&lt;/b&gt;", got)
	assert.Equal(t, 1, client.calls)
}

func TestSummarizeModelError(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("model down")}
	s := NewSummarizer(client)

	results := &store.ResultSet{
		Columns: []string{"total"},
		Rows:    []store.Row{{"total": 120.0}},
	}

	_, err := s.Summarize(context.Background(), "travel spend?", results)
	require.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	results := &store.ResultSet{
		Columns: []string{"category", "total", "date"},
		Rows: []store.Row{
			{"category": "Travel", "total": 120.5, "date": time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
			{"category": "Shopping", "total": 42.0, "date": nil},
		},
	}

	want := "category | total | date\n" +
		"Travel | 120.50 | 2026-03-14\n" +
		"Shopping | 42.00 | "

	assert.Equal(t, want, RenderTable(results))
}

func TestCleanSummary(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips emphasis",
			input: "**bold** and _italic_",
			want:  "bold and italic",
		},
		{
			name:  "collapses whitespace",
			input: "a   lot\n\nof  space",
			want:  "a lot of space",
		},
		{
			name:  "escapes markup",
			input: `<script>alert("x")</script>`,
			want:  "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;",
		},
		{
			name:  "plain text untouched",
			input: "You spent $42.00 on Shopping.",
			want:  "You spent $42.00 on Shopping.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanSummary(tt.input))
		})
	}
}
