package assistant

// SchemaContext is the fixed system instruction given to the model for
// translation. It names the transaction table, the valid type values and the
// dialect constraints. Tenant scoping is stated for context but enforced
// server-side by the safety gate, never trusted to the model.
const SchemaContext = `You are an assistant that converts natural language into SQL for a PostgreSQL transactions database.
- The table schema is: transactions(id, date, merchant, amount, category, type, user_id).
- 'type' can be 'Expense' or 'Income'.
- Use PostgreSQL syntax only (CURRENT_DATE, INTERVAL '30 days', DATE_TRUNC('month', CURRENT_DATE), etc.).
- Queries are answered for a single user; the server restricts results by user_id.
- Only return SQL, no markdown.`

// PresetQuestions is the fixed quick-question list offered to clients
var PresetQuestions = []string{
	"How much did I spend on Food & Drinks this month?",
	"What's my biggest expense this week?",
	"Show me all Travel expenses in the last 30 days.",
	"What's my total spending by category?",
	"List my top 5 most expensive transactions.",
	"What's my total income this month?",
	"Compare my income vs expenses this month.",
	"What's my net savings this month?",
	"What is my budget for shopping?",
}
