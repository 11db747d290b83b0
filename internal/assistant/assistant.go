// Package assistant implements the natural-language-to-SQL chat pipeline:
// budget shortcut, translation, safety gate, execution and summarization.
package assistant

import (
	"context"
	"time"

	"github.com/ledgerchat/ledgerchat/internal/errors"
	"github.com/ledgerchat/ledgerchat/internal/history"
	"github.com/ledgerchat/ledgerchat/internal/llm"
	"github.com/ledgerchat/ledgerchat/internal/observability"
	"github.com/ledgerchat/ledgerchat/internal/store"
)

// QueryRequest is an incoming natural language question
type QueryRequest struct {
	Question string `json:"question" binding:"required"`
}

// QueryResponse is the processed answer for one question
type QueryResponse struct {
	Question       string           `json:"question"`
	Answer         string           `json:"answer"`
	SQL            string           `json:"sql,omitempty"`
	Results        *store.ResultSet `json:"results,omitempty"`
	Shortcut       bool             `json:"shortcut"`
	NoResults      bool             `json:"no_results,omitempty"`
	ProcessingTime time.Duration    `json:"processing_time_ms"`
}

// Assistant is the pipeline service. One Answer call is one synchronous
// chain: no internal concurrency, no retries, no state shared between
// requests outside the store.
type Assistant struct {
	llm           llm.Client
	store         store.Store
	history       history.Store
	sanitizer     *Sanitizer
	summarizer    *Summarizer
	logger        *observability.Logger
	healthChecker *observability.HealthChecker
}

// NewAssistant creates the pipeline service. The history store may be nil;
// suggestions are then disabled but answering still works.
func NewAssistant(client llm.Client, st store.Store, hist history.Store) *Assistant {
	return &Assistant{
		llm:        client,
		store:      st,
		history:    hist,
		sanitizer:  NewSanitizer(),
		summarizer: NewSummarizer(client),
		logger:     observability.NewLogger("assistant"),
	}
}

// SetHealthChecker sets the health checker served on the health endpoint
func (a *Assistant) SetHealthChecker(hc *observability.HealthChecker) {
	a.healthChecker = hc
}

// Answer runs the full pipeline for one question on behalf of a user
func (a *Assistant) Answer(ctx context.Context, userID int64, question string) (*QueryResponse, error) {
	start := time.Now()

	var (
		response      *QueryResponse
		processingErr error
		errorType     string
	)

	defer func() {
		duration := time.Since(start)
		shortcut := response != nil && response.Shortcut
		observability.RecordQuestionMetrics(duration, processingErr == nil, shortcut, errorType)

		if processingErr != nil {
			a.logger.Error(ctx, "Question processing failed", processingErr, map[string]interface{}{
				"question":    question,
				"duration_ms": duration.Milliseconds(),
				"error_type":  errorType,
			})
		} else {
			a.logger.Info(ctx, "Question answered", map[string]interface{}{
				"question":    question,
				"duration_ms": duration.Milliseconds(),
				"shortcut":    shortcut,
			})
		}
	}()

	// Budget questions never reach the model
	if ContainsBudgetKeyword(question) {
		budgets, err := a.store.GetBudgets(ctx, userID)
		if err != nil {
			errorType = "budget_lookup"
			processingErr = errors.NewDatabaseQueryError(err, "fetching budgets")
			return nil, processingErr
		}

		response = &QueryResponse{
			Question:       question,
			Answer:         AnswerBudgetQuestion(question, budgets),
			Shortcut:       true,
			ProcessingTime: time.Since(start),
		}
		return response, nil
	}

	// Translate
	raw, err := a.translate(ctx, question)
	if err != nil {
		errorType = "translation"
		processingErr = errors.NewTranslationError(err)
		return nil, processingErr
	}

	// Safety gate
	vetted, err := a.sanitizer.Sanitize(raw, userID)
	if err != nil {
		errorType = "unsafe_query"
		processingErr = err
		observability.GetGlobalMetrics().Inc(observability.MetricUnsafeRejections, nil)
		return nil, processingErr
	}

	// Execute; a single read-only statement, never retried
	results, err := a.store.ExecuteSelect(ctx, vetted)
	if err != nil {
		errorType = "execution"
		processingErr = errors.NewQueryExecutionError(err)
		observability.GetGlobalMetrics().Inc(observability.MetricExecutionFailures, nil)
		return nil, processingErr
	}

	// Summarize
	answer, err := a.summarizer.Summarize(ctx, question, results)
	if err != nil {
		errorType = "summarization"
		processingErr = err
		return nil, processingErr
	}

	if results.Empty() {
		observability.GetGlobalMetrics().Inc(observability.MetricEmptyResults, nil)
	} else {
		a.recordHistory(ctx, userID, question, vetted)
	}

	response = &QueryResponse{
		Question:       question,
		Answer:         answer,
		SQL:            vetted,
		Results:        results,
		NoResults:      results.Empty(),
		ProcessingTime: time.Since(start),
	}
	return response, nil
}

// translate asks the model for a single SQL statement. Text in, text out;
// validation is the safety gate's job.
func (a *Assistant) translate(ctx context.Context, question string) (string, error) {
	start := time.Now()
	raw, err := a.llm.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: SchemaContext},
		{Role: llm.RoleUser, Content: question},
	})
	observability.RecordLLMMetrics("translate", time.Since(start), err)
	return raw, err
}

// recordHistory stores the answered question for future suggestions.
// Best-effort: a history failure never fails the answer.
func (a *Assistant) recordHistory(ctx context.Context, userID int64, question, vetted string) {
	if a.history == nil {
		return
	}
	if err := a.history.Record(ctx, userID, question, vetted, history.Embed(question)); err != nil {
		a.logger.Warn(ctx, "Failed to record question history", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Suggest returns past questions similar to the given text
func (a *Assistant) Suggest(ctx context.Context, userID int64, text string, limit int) ([]history.Entry, error) {
	if a.history == nil {
		return nil, nil
	}
	return a.history.FindSimilar(ctx, userID, history.Embed(text), limit)
}
