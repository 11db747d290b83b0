package assistant

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledgerchat/ledgerchat/internal/errors"
)

// Sanitizer validates and rewrites model-generated SQL before execution.
// The model's output is untrusted text; nothing reaches the database without
// passing through Sanitize.
type Sanitizer struct {
	// MutatingKeywords rejected anywhere in the statement, as substrings.
	// Substring semantics are deliberate: coarse, but they cannot be
	// sidestepped by creative whitespace the way token checks can.
	MutatingKeywords []string
}

// NewSanitizer creates a sanitizer with the standard keyword set
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		MutatingKeywords: []string{"drop", "delete", "alter", "insert", "update", "truncate"},
	}
}

var (
	curdateRe = regexp.MustCompile(`(?i)CURDATE\(\)`)
	dateSubRe = regexp.MustCompile(`(?i)DATE_SUB\(\s*CURRENT_DATE\s*,\s*INTERVAL\s+'?(\d+)'?\s*DAYS?\s*\)`)
	whereRe   = regexp.MustCompile(`(?i)\bWHERE\b`)
	// Insertion points for a new WHERE clause. spec'd trailing keywords are
	// ORDER BY and LIMIT; GROUP BY is included so the inserted clause stays
	// ahead of it in statements that already aggregate.
	trailingRe  = regexp.MustCompile(`(?i)\b(GROUP\s+BY|ORDER\s+BY|LIMIT)\b`)
	orderLimRe  = regexp.MustCompile(`(?i)\b(ORDER\s+BY|LIMIT)\b`)
	aggregateRe = regexp.MustCompile(`(?i)\b(SUM|AVG|COUNT)\s*\(`)
	groupByRe   = regexp.MustCompile(`(?i)\bGROUP\s+BY\b`)
	categoryRe  = regexp.MustCompile(`(?i)\bcategory\b`)
)

// Sanitize turns candidate SQL into a vetted statement scoped to the given
// user, or fails with an UNSAFE_QUERY error. Each rewrite is idempotent:
// running Sanitize on its own output returns it unchanged.
func (s *Sanitizer) Sanitize(raw string, userID int64) (string, error) {
	stmt := stripFences(raw)

	// Dialect normalization: the model occasionally slips into MySQL idioms
	stmt = curdateRe.ReplaceAllString(stmt, "CURRENT_DATE")
	stmt = dateSubRe.ReplaceAllString(stmt, "CURRENT_DATE - INTERVAL '$1 days'")

	original := stmt
	stmt = s.injectUserScope(stmt, userID)
	stmt = s.repairGroupBy(stmt)

	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(stmt)), "select") {
		return "", errors.NewUnsafeQueryError(raw)
	}

	// Keyword check runs against the pre-injection text: the injected
	// clauses are ours, the rest is the model's and stays untrusted.
	lowerOriginal := strings.ToLower(original)
	for _, keyword := range s.MutatingKeywords {
		if strings.Contains(lowerOriginal, keyword) {
			return "", errors.NewUnsafeQueryError(raw)
		}
	}

	return stmt, nil
}

// stripFences removes markdown code fence markers and surrounding whitespace
func stripFences(raw string) string {
	stmt := strings.ReplaceAll(raw, "```sql", "")
	stmt = strings.ReplaceAll(stmt, "```", "")
	return strings.TrimSpace(stmt)
}

// injectUserScope forces the requester's user_id predicate into the
// statement. After the first WHERE when one exists, otherwise as a new WHERE
// clause ahead of any trailing GROUP BY/ORDER BY/LIMIT, otherwise appended
// before the terminating semicolon.
//
// Injection is skipped only when the statement already carries this exact
// user's predicate (the idempotence case). A user_id predicate naming anyone
// else is model output steered by the question text; the requester's scope
// is injected in front of it and the conjunction returns nothing.
func (s *Sanitizer) injectUserScope(stmt string, userID int64) string {
	ownScopeRe := regexp.MustCompile(fmt.Sprintf(`(?i)\buser_id\s*=\s*%d\b`, userID))
	if ownScopeRe.MatchString(stmt) {
		return stmt
	}

	scope := fmt.Sprintf("user_id = %d", userID)

	if loc := whereRe.FindStringIndex(stmt); loc != nil {
		return stmt[:loc[1]] + " " + scope + " AND" + stmt[loc[1]:]
	}

	if loc := trailingRe.FindStringIndex(stmt); loc != nil {
		return strings.TrimRight(stmt[:loc[0]], " \t\n") + " WHERE " + scope + " " + stmt[loc[0]:]
	}

	return appendClause(stmt, "WHERE "+scope)
}

// repairGroupBy patches a recurring model failure mode: aggregates over
// category with the GROUP BY left off. Not a general SQL rewriter.
func (s *Sanitizer) repairGroupBy(stmt string) string {
	if !aggregateRe.MatchString(stmt) || groupByRe.MatchString(stmt) || !categoryRe.MatchString(stmt) {
		return stmt
	}

	if loc := orderLimRe.FindStringIndex(stmt); loc != nil {
		return strings.TrimRight(stmt[:loc[0]], " \t\n") + " GROUP BY category " + stmt[loc[0]:]
	}

	return appendClause(stmt, "GROUP BY category")
}

// appendClause adds a clause at the end of the statement, keeping a
// terminating semicolon terminal
func appendClause(stmt, clause string) string {
	trimmed := strings.TrimRight(stmt, "; \t\n")
	hadSemicolon := strings.Contains(stmt[len(trimmed):], ";")

	out := trimmed + " " + clause
	if hadSemicolon {
		out += ";"
	}
	return out
}
