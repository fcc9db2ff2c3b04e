package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlexGustafsson/chronicler/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		var request map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "claude-test", request["model"])
		assert.Equal(t, float64(512), request["max_tokens"])

		system, ok := request["system"].([]any)
		require.True(t, ok)
		require.Len(t, system, 1)
		assert.Equal(t, "validate", system[0].(map[string]any)["text"])

		messages, ok := request["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 1)
		assert.Equal(t, "user", messages[0].(map[string]any)["role"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "Rating: 4"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 3}
		}`))
	}))
	defer server.Close()

	client := NewClient("secret", "claude-test", &Options{BaseURL: server.URL})

	res, err := client.Chat(context.Background(), &llm.ChatRequest{
		Messages:    llm.NewPrompt("validate", "the article"),
		Temperature: 0.5,
		MaxTokens:   512,
	})
	require.NoError(t, err)

	assert.Equal(t, "Rating: 4", res.Message.Content)
}
