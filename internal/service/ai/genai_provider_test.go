package ai

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/kapu/liqu-discord-bot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

func newTestGenAIProvider(t *testing.T, handler http.HandlerFunc) *GenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewGenAIProvider(context.Background(), GenAIConfig{
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: server.URL,
	}, zap.NewNop())
	require.NoError(t, err)
	return provider
}

func TestGenAIProvider_Answer(t *testing.T) {
	provider := newTestGenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hel"},{"text":"lo"}]}}]}`)
	})

	answer, err := provider.Answer(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello", answer)
}

func TestGenAIProvider_EmptyCandidatesSoftDegrades(t *testing.T) {
	provider := newTestGenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	})

	answer, err := provider.Answer(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, constants.UnexpectedResponseReply, answer)
}

func TestGenAIProvider_ServerErrorIsFetchError(t *testing.T) {
	provider := newTestGenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`)
	})

	_, err := provider.Answer(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, errors.IsFetchError(err))
}

func TestExtractTextFromGeminiResponse(t *testing.T) {
	assert.Equal(t, "", extractTextFromGeminiResponse(nil))
	assert.Equal(t, "", extractTextFromGeminiResponse(&genai.GenerateContentResponse{}))
	assert.Equal(t, "ab", extractTextFromGeminiResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "a"}, nil, {Text: "b"}}},
		}},
	}))
}

func TestGenAIStatusCode(t *testing.T) {
	assert.Equal(t, 0, genaiStatusCode(stderrors.New("dial tcp: connection refused")))
	assert.Equal(t, 429, genaiStatusCode(genai.APIError{Code: 429}))
}
