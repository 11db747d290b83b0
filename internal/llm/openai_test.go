package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClient(t *testing.T) {
	tests := []struct {
		name      string
		apiKey    string
		model     string
		wantErr   bool
		wantModel string
	}{
		{
			name:      "valid configuration",
			apiKey:    "sk-test",
			model:     "gpt-4o-mini",
			wantModel: "gpt-4o-mini",
		},
		{
			name:      "default model",
			apiKey:    "sk-test",
			model:     "",
			wantModel: DefaultModel,
		},
		{
			name:    "missing API key",
			apiKey:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewOpenAIClient(tt.apiKey, tt.model)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, client.model)
		})
	}
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var request chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "gpt-4o-mini", request.Model)
		require.Len(t, request.Messages, 2)
		assert.Equal(t, RoleSystem, request.Messages[0].Role)
		assert.Equal(t, RoleUser, request.Messages[1].Role)

		json.NewEncoder(w).Encode(chatResponse{
			ID: "chatcmpl-test",
			Choices: []chatChoice{
				{Message: Message{Role: "assistant", Content: "SELECT SUM(amount) FROM transactions"}},
			},
		})
	}))
	defer server.Close()

	client, err := NewOpenAIClient("sk-test", "gpt-4o-mini")
	require.NoError(t, err)
	client.WithBaseURL(server.URL)

	got, err := client.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "You translate questions to SQL"},
		{Role: RoleUser, Content: "How much did I spend?"},
	})

	require.NoError(t, err)
	assert.Equal(t, "SELECT SUM(amount) FROM transactions", got)
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{ID: "chatcmpl-test"})
	}))
	defer server.Close()

	client, err := NewOpenAIClient("sk-test", "")
	require.NoError(t, err)
	client.WithBaseURL(server.URL)

	_, err = client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestCompleteAPIErrors(t *testing.T) {
	tests := []struct {
		name        string
		statusCode  int
		errContains string
	}{
		{
			name:        "unauthorized",
			statusCode:  http.StatusUnauthorized,
			errContains: "invalid API key",
		},
		{
			name:        "rate limited",
			statusCode:  http.StatusTooManyRequests,
			errContains: "rate limit exceeded",
		},
		{
			name:        "bad request",
			statusCode:  http.StatusBadRequest,
			errContains: "bad request",
		},
		{
			name:        "server error",
			statusCode:  http.StatusInternalServerError,
			errContains: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				json.NewEncoder(w).Encode(apiErrorResponse{
					Error: apiError{Message: "nope", Type: "test"},
				})
			}))
			defer server.Close()

			client, err := NewOpenAIClient("sk-test", "")
			require.NoError(t, err)
			client.WithBaseURL(server.URL)

			_, err = client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

// Each Complete call makes exactly one HTTP attempt, failures included
func TestCompleteDoesNotRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(apiErrorResponse{Error: apiError{Message: "boom"}})
	}))
	defer server.Close()

	client, err := NewOpenAIClient("sk-test", "")
	require.NoError(t, err)
	client.WithBaseURL(server.URL)

	_, err = client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}
