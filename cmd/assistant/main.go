package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/ledgerchat/ledgerchat/internal/assistant"
	"github.com/ledgerchat/ledgerchat/internal/auth"
	"github.com/ledgerchat/ledgerchat/internal/config"
	"github.com/ledgerchat/ledgerchat/internal/history"
	"github.com/ledgerchat/ledgerchat/internal/llm"
	"github.com/ledgerchat/ledgerchat/internal/observability"
	"github.com/ledgerchat/ledgerchat/internal/session"
	"github.com/ledgerchat/ledgerchat/internal/store"
)

func main() {
	ctx := context.Background()
	logger := observability.NewLogger("main")

	// Load configuration from the secret provider chain
	cfg := config.NewDefaultLoader().MustLoad(ctx)
	if err := cfg.ValidateWithContext(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	gin.SetMode(cfg.Server.GinMode)

	// Initialize Redis client for sessions
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Initialize the transaction store
	st, err := store.NewPostgresStore(store.PostgresConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to initialize store:", err)
	}
	defer st.Close()

	// Question history shares the store's connection pool
	hist := history.NewPostgresHistory(st.DB())

	// Initialize LLM client behind a circuit breaker
	openaiClient, err := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	if err != nil {
		log.Fatal("Failed to initialize LLM client:", err)
	}
	llmClient := llm.NewCircuitBreakerClient(openaiClient, "openai", llm.DefaultCircuitBreakerConfig)

	// Initialize sessions and auth
	sessions := session.NewManager(rdb, cfg.Auth.SessionExpiry)
	authManager, err := auth.NewManager(auth.Config{
		JWTSecret:     cfg.Auth.JWTSecret,
		JWTExpiry:     cfg.Auth.JWTExpiry,
		SessionExpiry: cfg.Auth.SessionExpiry,
		RateLimit:     cfg.Auth.RateLimit,
	}, st, sessions)
	if err != nil {
		log.Fatal("Failed to initialize auth manager:", err)
	}

	// Register health checks
	healthChecker := observability.NewHealthChecker()
	healthChecker.Register("database", observability.DatabaseHealthCheck(func(ctx context.Context) error {
		return st.Ping(ctx)
	}))
	healthChecker.Register("redis", observability.RedisHealthCheck(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}))
	// The model probe costs a completion; cache it so public health traffic
	// cannot drive API spend
	healthChecker.Register("llm", observability.CachedHealthCheck(
		observability.LLMHealthCheck(func(ctx context.Context) error {
			_, err := llmClient.Complete(ctx, []llm.Message{
				{Role: llm.RoleUser, Content: "ping"},
			})
			return err
		}),
		5*time.Minute,
	))

	// Create the assistant pipeline and its HTTP surface
	service := assistant.NewAssistant(llmClient, st, hist)
	service.SetHealthChecker(healthChecker)
	router := service.SetupRoutes(authManager)

	// Auth endpoints are public, everything under /api/v1 is not
	authHandlers := auth.NewHandlers(authManager)
	authHandlers.SetupRoutes(router.Group("/api/v1/auth"))

	logger.Info(ctx, "Assistant starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"version": "1.0.0",
	})
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Error(ctx, "Failed to start server", err, nil)
		log.Fatal("Failed to start server:", err)
	}
}
