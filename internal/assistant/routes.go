package assistant

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledgerchat/ledgerchat/internal/errors"
	"github.com/ledgerchat/ledgerchat/internal/observability"
	"github.com/ledgerchat/ledgerchat/internal/store"
)

// AuthMiddleware is the authentication hook the routes depend on
type AuthMiddleware interface {
	Middleware() gin.HandlerFunc
}

// SetupRoutes configures the HTTP surface with optional authentication
func (a *Assistant) SetupRoutes(authMiddleware AuthMiddleware) *gin.Engine {
	r := gin.New()

	logger := observability.NewLogger("http")
	r.Use(observability.RecoveryMiddleware(logger))
	r.Use(observability.CORSMiddleware())
	r.Use(observability.RequestLoggingMiddleware(logger))

	// Public health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if a.healthChecker != nil {
			response := a.healthChecker.GetHealthResponse(c.Request.Context())
			statusCode := http.StatusOK
			if response.Status == observability.HealthStatusUnhealthy {
				statusCode = http.StatusServiceUnavailable
			}
			c.JSON(statusCode, response)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "ledgerchat",
			"version": "1.0.0",
		})
	})

	r.GET("/metrics", observability.MetricsEndpointHandler(observability.GetGlobalMetrics()))

	api := r.Group("/api/v1")
	if authMiddleware != nil {
		api.Use(authMiddleware.Middleware())
	}
	{
		api.POST("/query", a.handleQuery)
		api.GET("/presets", a.handleGetPresets)
		api.GET("/suggestions", a.handleGetSuggestions)
		api.GET("/categories", a.handleGetCategories)

		api.GET("/transactions", a.handleListTransactions)
		api.POST("/transactions", a.handleAddTransaction)
		api.GET("/summary", a.handleGetSummary)

		api.GET("/budgets", a.handleGetBudgets)
		api.PUT("/budgets", a.handleSetBudget)
	}

	return r
}

func (a *Assistant) handleQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		enhancedErr := errors.NewInvalidInputError("request body", err.Error())
		c.JSON(http.StatusBadRequest, formatErrorResponse(enhancedErr))
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, formatErrorResponse(errors.New(errors.ErrCodeNotAuthenticated, "Authentication required")))
		return
	}

	response, err := a.Answer(c.Request.Context(), userID, req.Question)
	if err != nil {
		c.JSON(getErrorStatusCode(err), formatErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, response)
}

func (a *Assistant) handleGetPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": PresetQuestions})
}

func (a *Assistant) handleGetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": Categories})
}

func (a *Assistant) handleGetSuggestions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, formatErrorResponse(errors.New(errors.ErrCodeNotAuthenticated, "Authentication required")))
		return
	}

	text := c.Query("q")
	if text == "" {
		c.JSON(http.StatusOK, gin.H{"suggestions": PresetQuestions})
		return
	}

	entries, err := a.Suggest(c.Request.Context(), userID, text, 5)
	if err != nil {
		enhancedErr := errors.NewDatabaseQueryError(err, "fetching suggestions")
		c.JSON(http.StatusInternalServerError, formatErrorResponse(enhancedErr))
		return
	}

	suggestions := make([]string, 0, len(entries))
	for _, entry := range entries {
		suggestions = append(suggestions, entry.Question)
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// TransactionRequest is the body for adding a transaction
type TransactionRequest struct {
	Date     string  `json:"date" binding:"required"`
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount" binding:"required"`
	Category string  `json:"category" binding:"required"`
	Type     string  `json:"type" binding:"required"`
}

func (a *Assistant) handleAddTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, formatErrorResponse(errors.New(errors.ErrCodeNotAuthenticated, "Authentication required")))
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, formatErrorResponse(errors.NewInvalidInputError("request body", err.Error())))
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, formatErrorResponse(errors.NewInvalidInputError("date", "expected YYYY-MM-DD")))
		return
	}

	if req.Type != store.TypeExpense && req.Type != store.TypeIncome {
		c.JSON(http.StatusBadRequest, formatErrorResponse(errors.NewInvalidInputError("type", "must be Expense or Income")))
		return
	}

	if !ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, formatErrorResponse(errors.New(errors.ErrCodeInvalidCategory, "Unknown category").
			WithDetails(req.Category)))
		return
	}

	transaction := &store.Transaction{
		Date:     date,
		Merchant: req.Merchant,
		Amount:   req.Amount,
		Category: req.Category,
		Type:     req.Type,
		UserID:   userID,
	}

	created, err := a.store.AddTransaction(c.Request.Context(), transaction)
	if err != nil {
		enhancedErr := errors.NewDatabaseQueryError(err, "adding transaction")
		c.JSON(http.StatusInternalServerError, formatErrorResponse(enhancedErr))
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (a *Assistant) handleListTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, formatErrorResponse(errors.New(errors.ErrCodeNotAuthenticated, "Authentication required")))
		return
	}

	transactions, err := a.store.ListTransactions(c.Request.Context(), userID)
	if err != nil {
		enhancedErr := errors.NewDatabaseQueryError(err, "fetching transactions")
		c.JSON(http.StatusInternalServerError, formatErrorResponse(enhancedErr))
		return
	}

	if transactions == nil {
		transactions = []store.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "count": len(transactions)})
}

func (a *Assistant) handleGetSummary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, formatErrorResponse(errors.New(errors.ErrCodeNotAuthenticated, "Authentication required")))
		return
	}

	summary, err := a.store.GetSummary(c.Request.Context(), userID)
	if err != nil {
		enhancedErr := errors.NewDatabaseQueryError(err, "computing summary")
		c.JSON(http.StatusInternalServerError, formatErrorResponse(enhancedErr))
		return
	}

	c.JSON(http.StatusOK, summary)
}

// BudgetRequest is the body for setting a budget
type BudgetRequest struct {
	Category string  `json:"category" binding:"required"`
	Amount   float64 `json:"amount"`
}

func (a *Assistant) handleGetBudgets(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, formatErrorResponse(errors.New(errors.ErrCodeNotAuthenticated, "Authentication required")))
		return
	}

	budgets, err := a.store.GetBudgets(c.Request.Context(), userID)
	if err != nil {
		enhancedErr := errors.NewDatabaseQueryError(err, "fetching budgets")
		c.JSON(http.StatusInternalServerError, formatErrorResponse(enhancedErr))
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}

func (a *Assistant) handleSetBudget(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, formatErrorResponse(errors.New(errors.ErrCodeNotAuthenticated, "Authentication required")))
		return
	}

	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, formatErrorResponse(errors.NewInvalidInputError("request body", err.Error())))
		return
	}

	if !ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, formatErrorResponse(errors.New(errors.ErrCodeInvalidCategory, "Unknown category").
			WithDetails(req.Category)))
		return
	}

	if req.Amount < 0 {
		c.JSON(http.StatusBadRequest, formatErrorResponse(errors.NewInvalidInputError("amount", "must not be negative")))
		return
	}

	if err := a.store.SetBudget(c.Request.Context(), userID, req.Category, req.Amount); err != nil {
		enhancedErr := errors.NewDatabaseQueryError(err, "setting budget")
		c.JSON(http.StatusInternalServerError, formatErrorResponse(enhancedErr))
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": req.Category, "amount": req.Amount})
}

// currentUserID reads the authenticated user's ID set by the auth middleware
func currentUserID(c *gin.Context) (int64, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

// formatErrorResponse formats an error into a user-facing response body
func formatErrorResponse(err error) gin.H {
	if enhancedErr, ok := err.(*errors.EnhancedError); ok {
		body := gin.H{
			"code":    enhancedErr.Code,
			"message": enhancedErr.Message,
		}
		if enhancedErr.Details != "" {
			body["details"] = enhancedErr.Details
		}
		if enhancedErr.Suggestion != "" {
			body["suggestion"] = enhancedErr.Suggestion
		}
		return gin.H{"error": body}
	}

	return gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	}
}

// getErrorStatusCode maps pipeline errors to HTTP status codes
func getErrorStatusCode(err error) int {
	if enhancedErr, ok := err.(*errors.EnhancedError); ok {
		switch enhancedErr.Code {
		case errors.ErrCodeInvalidInput, errors.ErrCodeMissingRequired, errors.ErrCodeInvalidCategory:
			return http.StatusBadRequest
		case errors.ErrCodeUnsafeQuery:
			return http.StatusBadRequest
		case errors.ErrCodeInvalidCredentials, errors.ErrCodeNotAuthenticated:
			return http.StatusUnauthorized
		case errors.ErrCodeQueryExecution:
			return http.StatusUnprocessableEntity
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
