package assistant

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerchat/ledgerchat/internal/errors"
	"github.com/ledgerchat/ledgerchat/internal/store"
)

// fakeStore satisfies store.Store with scripted behavior
type fakeStore struct {
	budgets     map[string]float64
	budgetsErr  error
	results     *store.ResultSet
	executeErr  error
	executedSQL string
}

func (f *fakeStore) CreateUser(ctx context.Context, username, passwordHash string) (*store.User, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeStore) AddTransaction(ctx context.Context, transaction *store.Transaction) (*store.Transaction, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeStore) ListTransactions(ctx context.Context, userID int64) ([]store.Transaction, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeStore) GetSummary(ctx context.Context, userID int64) (*store.Summary, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeStore) GetBudgets(ctx context.Context, userID int64) (map[string]float64, error) {
	if f.budgetsErr != nil {
		return nil, f.budgetsErr
	}
	return f.budgets, nil
}

func (f *fakeStore) SetBudget(ctx context.Context, userID int64, category string, amount float64) error {
	return fmt.Errorf("not implemented")
}

func (f *fakeStore) ExecuteSelect(ctx context.Context, statement string) (*store.ResultSet, error) {
	f.executedSQL = statement
	if f.executeErr != nil {
		return nil, f.executeErr
	}
	return f.results, nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                   { return nil }

func TestAnswerBudgetShortcut(t *testing.T) {
	client := &fakeClient{}
	st := &fakeStore{budgets: map[string]float64{"Travel": 900}}
	a := NewAssistant(client, st, nil)

	response, err := a.Answer(context.Background(), 1, "What is my budget for travel?")

	require.NoError(t, err)
	assert.True(t, response.Shortcut)
	assert.Equal(t, "Your budget for Travel is set at $900.00.", response.Answer)
	assert.Empty(t, response.SQL)
	assert.Zero(t, client.calls, "budget questions must not reach the model")
}

func TestAnswerBudgetShortcutClarification(t *testing.T) {
	client := &fakeClient{}
	st := &fakeStore{budgets: map[string]float64{}}
	a := NewAssistant(client, st, nil)

	response, err := a.Answer(context.Background(), 1, "what is my budget?")

	require.NoError(t, err)
	assert.True(t, response.Shortcut)
	assert.Equal(t, ClarificationMessage, response.Answer)
	assert.Zero(t, client.calls)
}

func TestAnswerBudgetLookupFailure(t *testing.T) {
	client := &fakeClient{}
	st := &fakeStore{budgetsErr: fmt.Errorf("connection refused")}
	a := NewAssistant(client, st, nil)

	_, err := a.Answer(context.Background(), 1, "travel budget")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatabaseQuery))
	assert.Zero(t, client.calls)
}

func TestAnswerFullPipeline(t *testing.T) {
	client := &fakeClient{replies: []string{
		"```sql\nSELECT SUM(amount) AS total FROM transactions WHERE category = 'Travel'\n```",
		"You spent **$120.00** on Travel.",
	}}
	st := &fakeStore{results: &store.ResultSet{
		Columns: []string{"total"},
		Rows:    []store.Row{{"total": 120.0}},
	}}
	a := NewAssistant(client, st, nil)

	response, err := a.Answer(context.Background(), 7, "How much did I spend on travel?")

	require.NoError(t, err)
	assert.False(t, response.Shortcut)
	assert.False(t, response.NoResults)
	assert.Equal(t, "SELECT SUM(amount) AS total FROM transactions WHERE user_id = 7 AND category = 'Travel'", response.SQL)
	assert.Equal(t, response.SQL, st.executedSQL, "only vetted SQL reaches the store")
	assert.Equal(t, "You spent $120.00 on Travel.", response.Answer)
	assert.Equal(t, 2, client.calls, "one translation call and one summary call")
}

func TestAnswerEmptyResults(t *testing.T) {
	client := &fakeClient{replies: []string{
		"SELECT SUM(amount) FROM transactions WHERE category = 'Other'",
		"should never be used",
	}}
	st := &fakeStore{results: &store.ResultSet{Columns: []string{"sum"}}}
	a := NewAssistant(client, st, nil)

	response, err := a.Answer(context.Background(), 1, "How much on misc?")

	require.NoError(t, err)
	assert.True(t, response.NoResults)
	assert.Equal(t, NoResultsMessage, response.Answer)
	assert.Equal(t, 1, client.calls, "empty results skip the summary call")
}

func TestAnswerUnsafeSQL(t *testing.T) {
	client := &fakeClient{replies: []string{"DROP TABLE transactions"}}
	st := &fakeStore{}
	a := NewAssistant(client, st, nil)

	_, err := a.Answer(context.Background(), 1, "remove everything")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnsafeQuery))
	assert.Empty(t, st.executedSQL, "rejected SQL must not execute")
}

func TestAnswerTranslationFailure(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("model unavailable")}
	st := &fakeStore{}
	a := NewAssistant(client, st, nil)

	_, err := a.Answer(context.Background(), 1, "How much did I spend?")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTranslation))
}

func TestAnswerExecutionFailure(t *testing.T) {
	client := &fakeClient{replies: []string{"SELECT bogus FROM transactions"}}
	st := &fakeStore{executeErr: fmt.Errorf(`column "bogus" does not exist`)}
	a := NewAssistant(client, st, nil)

	_, err := a.Answer(context.Background(), 1, "show me bogus")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeQueryExecution))

	enhanced, ok := err.(*errors.EnhancedError)
	require.True(t, ok)
	assert.Equal(t, "Could not process query. Please try rephrasing.", enhanced.Message)
}

func TestSuggestWithoutHistory(t *testing.T) {
	a := NewAssistant(&fakeClient{}, &fakeStore{}, nil)

	entries, err := a.Suggest(context.Background(), 1, "food spend", 5)
	require.NoError(t, err)
	assert.Nil(t, entries)
}
