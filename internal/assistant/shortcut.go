package assistant

import (
	"fmt"
	"strings"
)

// ClarificationMessage is returned when a budget question names no known category
const ClarificationMessage = "I couldn't detect a category from your question. Try: 'What is my budget for shopping?'"

// ContainsBudgetKeyword reports whether the question should take the budget
// shortcut instead of the translation pipeline.
func ContainsBudgetKeyword(question string) bool {
	return strings.Contains(strings.ToLower(question), "budget")
}

// AnswerBudgetQuestion answers a budget question directly from stored
// values. Budget lookups are exact-value reads: they must never pass through
// the model, which could paraphrase or hallucinate the number.
func AnswerBudgetQuestion(question string, budgets map[string]float64) string {
	category, ok := ResolveCategory(question)
	if !ok {
		return ClarificationMessage
	}

	amount, ok := budgets[string(category)]
	if !ok {
		return fmt.Sprintf("No budget set for %s.", category)
	}

	return fmt.Sprintf("Your budget for %s is set at $%.2f.", category, amount)
}
