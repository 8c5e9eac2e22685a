package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/weather-stories/internal/llm"
)

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "upstream error", "type": "server_error"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
}

func TestGenerate_Success(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "a story")
	defer srv.Close()

	c := llm.NewOpenAI("test-key", srv.URL+"/v1", "test-model")
	out, err := c.Generate(context.Background(), "write a story")
	require.NoError(t, err)
	assert.Equal(t, "a story", out)
}

func TestGenerate_ServiceUnavailableIsRetryable(t *testing.T) {
	srv := chatServer(t, http.StatusServiceUnavailable, "")
	defer srv.Close()

	c := llm.NewOpenAI("test-key", srv.URL+"/v1", "test-model")
	_, err := c.Generate(context.Background(), "write a story")
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrUnavailable)
}

func TestGenerate_OtherStatusIsFatal(t *testing.T) {
	srv := chatServer(t, http.StatusBadRequest, "")
	defer srv.Close()

	c := llm.NewOpenAI("test-key", srv.URL+"/v1", "test-model")
	_, err := c.Generate(context.Background(), "write a story")
	require.Error(t, err)
	assert.NotErrorIs(t, err, llm.ErrUnavailable)
}
