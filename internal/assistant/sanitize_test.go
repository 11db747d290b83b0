package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerchat/ledgerchat/internal/errors"
)

func TestNewSanitizer(t *testing.T) {
	s := NewSanitizer()

	require.NotNil(t, s)
	assert.Contains(t, s.MutatingKeywords, "drop")
	assert.Contains(t, s.MutatingKeywords, "delete")
	assert.Contains(t, s.MutatingKeywords, "alter")
	assert.Contains(t, s.MutatingKeywords, "insert")
	assert.Contains(t, s.MutatingKeywords, "update")
	assert.Contains(t, s.MutatingKeywords, "truncate")
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		userID  int64
		want    string
		wantErr bool
	}{
		{
			name:   "plain select without where",
			raw:    "SELECT SUM(amount) FROM transactions",
			userID: 1,
			want:   "SELECT SUM(amount) FROM transactions WHERE user_id = 1",
		},
		{
			name:   "fenced statement",
			raw:    "```sql\nSELECT merchant FROM transactions WHERE category = 'Travel'\n```",
			userID: 1,
			want:   "SELECT merchant FROM transactions WHERE user_id = 1 AND category = 'Travel'",
		},
		{
			name:   "bare fence markers",
			raw:    "```\nSELECT merchant FROM transactions WHERE category = 'Travel'\n```",
			userID: 2,
			want:   "SELECT merchant FROM transactions WHERE user_id = 2 AND category = 'Travel'",
		},
		{
			name:   "scope inserted before order by",
			raw:    "SELECT merchant, amount FROM transactions ORDER BY amount DESC",
			userID: 7,
			want:   "SELECT merchant, amount FROM transactions WHERE user_id = 7 ORDER BY amount DESC",
		},
		{
			name:   "scope inserted before limit",
			raw:    "SELECT merchant, amount FROM transactions LIMIT 5",
			userID: 7,
			want:   "SELECT merchant, amount FROM transactions WHERE user_id = 7 LIMIT 5",
		},
		{
			name:   "existing where with group by",
			raw:    "SELECT category, SUM(amount) FROM transactions WHERE type = 'Expense' GROUP BY category",
			userID: 3,
			want:   "SELECT category, SUM(amount) FROM transactions WHERE user_id = 3 AND type = 'Expense' GROUP BY category",
		},
		{
			name:   "existing user scope untouched",
			raw:    "SELECT SUM(amount) FROM transactions WHERE user_id = 4",
			userID: 4,
			want:   "SELECT SUM(amount) FROM transactions WHERE user_id = 4",
		},
		{
			name:   "foreign user scope still gets requester scope",
			raw:    "SELECT merchant, amount FROM transactions WHERE user_id = 2",
			userID: 7,
			want:   "SELECT merchant, amount FROM transactions WHERE user_id = 7 AND user_id = 2",
		},
		{
			name:   "prefix of another id is not the requester's scope",
			raw:    "SELECT merchant FROM transactions WHERE user_id = 27",
			userID: 2,
			want:   "SELECT merchant FROM transactions WHERE user_id = 2 AND user_id = 27",
		},
		{
			name:   "curdate rewritten",
			raw:    "SELECT SUM(amount) FROM transactions WHERE date = CURDATE()",
			userID: 1,
			want:   "SELECT SUM(amount) FROM transactions WHERE user_id = 1 AND date = CURRENT_DATE",
		},
		{
			name:   "date_sub rewritten",
			raw:    "SELECT SUM(amount) FROM transactions WHERE date >= DATE_SUB(CURRENT_DATE, INTERVAL 30 DAY)",
			userID: 1,
			want:   "SELECT SUM(amount) FROM transactions WHERE user_id = 1 AND date >= CURRENT_DATE - INTERVAL '30 days'",
		},
		{
			name:   "missing group by repaired",
			raw:    "SELECT category, SUM(amount) FROM transactions WHERE type = 'Expense'",
			userID: 1,
			want:   "SELECT category, SUM(amount) FROM transactions WHERE user_id = 1 AND type = 'Expense' GROUP BY category",
		},
		{
			name:   "group by repair stays ahead of order by",
			raw:    "SELECT category, SUM(amount) AS total FROM transactions ORDER BY total DESC",
			userID: 1,
			want:   "SELECT category, SUM(amount) AS total FROM transactions WHERE user_id = 1 GROUP BY category ORDER BY total DESC",
		},
		{
			name:   "semicolon stays terminal",
			raw:    "SELECT SUM(amount) FROM transactions;",
			userID: 9,
			want:   "SELECT SUM(amount) FROM transactions WHERE user_id = 9;",
		},
		{
			name:    "non select rejected",
			raw:     "DELETE FROM transactions WHERE user_id = 1",
			userID:  1,
			wantErr: true,
		},
		{
			name:    "mutating keyword with select prefix rejected",
			raw:     "SELECT 1; DROP TABLE transactions",
			userID:  1,
			wantErr: true,
		},
		{
			name:    "lowercase keyword rejected",
			raw:     "select * from transactions; truncate transactions",
			userID:  1,
			wantErr: true,
		},
		{
			name:    "empty output rejected",
			raw:     "```sql\n```",
			userID:  1,
			wantErr: true,
		},
	}

	s := NewSanitizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Sanitize(tt.raw, tt.userID)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeUnsafeQuery))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Sanitizing vetted output must return it unchanged
func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"SELECT SUM(amount) FROM transactions",
		"SELECT merchant, amount FROM transactions ORDER BY amount DESC",
		"SELECT category, SUM(amount) FROM transactions WHERE type = 'Expense'",
		"SELECT SUM(amount) FROM transactions WHERE date >= DATE_SUB(CURRENT_DATE, INTERVAL 30 DAY);",
	}

	s := NewSanitizer()
	for _, raw := range inputs {
		first, err := s.Sanitize(raw, 7)
		require.NoError(t, err, raw)

		second, err := s.Sanitize(first, 7)
		require.NoError(t, err, first)
		assert.Equal(t, first, second)
	}
}

func TestSanitizeScopesToRequestingUser(t *testing.T) {
	s := NewSanitizer()

	got, err := s.Sanitize("SELECT SUM(amount) FROM transactions", 42)
	require.NoError(t, err)
	assert.True(t, strings.Contains(got, "user_id = 42"))
}

// A question can steer the model into emitting someone else's user_id
// predicate. The requester's scope must be injected regardless, so the
// statement can never read another user's rows.
func TestSanitizeCannotBeSteeredToAnotherUser(t *testing.T) {
	s := NewSanitizer()

	got, err := s.Sanitize("SELECT merchant, amount FROM transactions WHERE user_id = 2", 7)
	require.NoError(t, err)
	assert.Contains(t, got, "user_id = 7")

	// The injected scope leads the conjunction, ahead of the model's predicate
	assert.Equal(t, "SELECT merchant, amount FROM transactions WHERE user_id = 7 AND user_id = 2", got)

	// And the result is still a fixed point
	again, err := s.Sanitize(got, 7)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}
