// Package auth handles account registration, login and request
// authentication. Users live in PostgreSQL, sessions in Redis.
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/ledgerchat/ledgerchat/internal/errors"
	"github.com/ledgerchat/ledgerchat/internal/observability"
	"github.com/ledgerchat/ledgerchat/internal/session"
	"github.com/ledgerchat/ledgerchat/internal/store"
)

// Claims represents JWT claims
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Config holds authentication configuration
type Config struct {
	JWTSecret     string
	JWTExpiry     time.Duration
	SessionExpiry time.Duration
	RateLimit     int
}

// Manager handles authentication against the user store
type Manager struct {
	config   Config
	store    store.Store
	sessions *session.Manager
}

// NewManager creates an authentication manager
func NewManager(config Config, st store.Store, sessions *session.Manager) (*Manager, error) {
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	if config.JWTExpiry == 0 {
		config.JWTExpiry = 24 * time.Hour
	}
	if config.SessionExpiry == 0 {
		config.SessionExpiry = 7 * 24 * time.Hour
	}
	if config.RateLimit == 0 {
		config.RateLimit = 100
	}

	return &Manager{
		config:   config,
		store:    st,
		sessions: sessions,
	}, nil
}

// RateLimit exposes the configured per-client request limit
func (m *Manager) RateLimit() int {
	return m.config.RateLimit
}

// Register creates a new account with a bcrypt password hash
func (m *Manager) Register(ctx context.Context, username, password string) (*store.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewInvalidInputError("credentials", "username and password are required")
	}

	if _, err := m.store.GetUserByUsername(ctx, username); err == nil {
		return nil, apperrors.New(apperrors.ErrCodeUserExists, "Username already exists").
			WithSuggestion("Pick a different username or log in instead")
	} else if err != sql.ErrNoRows {
		return nil, apperrors.NewDatabaseQueryError(err, "checking username")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := m.store.CreateUser(ctx, username, string(hashed))
	if err != nil {
		return nil, apperrors.NewDatabaseQueryError(err, "creating user")
	}

	return user, nil
}

// LoginResult carries the artifacts issued on a successful login
type LoginResult struct {
	User      *store.User `json:"user"`
	Token     string      `json:"token"`
	SessionID string      `json:"session_id"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Login verifies credentials and issues a JWT and a Redis session
func (m *Manager) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	observability.GetGlobalMetrics().Inc(observability.MetricAuthAttempts, nil)

	user, err := m.store.GetUserByUsername(ctx, username)
	if err != nil {
		observability.GetGlobalMetrics().Inc(observability.MetricAuthFailure, nil)
		return nil, apperrors.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		observability.GetGlobalMetrics().Inc(observability.MetricAuthFailure, nil)
		return nil, apperrors.NewInvalidCredentialsError()
	}

	token, expiresAt, err := m.issueToken(user)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTokenCreation, "Failed to create token")
	}

	sessionID, err := m.sessions.Create(ctx, user.ID, user.Username)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSessionCreation, "Failed to create session")
	}

	observability.GetGlobalMetrics().Inc(observability.MetricAuthSuccess, nil)
	return &LoginResult{
		User:      user,
		Token:     token,
		SessionID: sessionID,
		ExpiresAt: expiresAt,
	}, nil
}

// Logout invalidates a session
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	return m.sessions.Delete(ctx, sessionID)
}

// ValidateToken parses and verifies a JWT, returning its claims
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.config.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// ValidateSession resolves a session ID to its session data
func (m *Manager) ValidateSession(ctx context.Context, sessionID string) (*session.Session, error) {
	return m.sessions.Get(ctx, sessionID)
}

func (m *Manager) issueToken(user *store.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.config.JWTExpiry)
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "ledgerchat",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.config.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
