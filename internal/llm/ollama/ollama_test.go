package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/AlexGustafsson/chronicler/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var request map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "llama3", request["model"])
		assert.Equal(t, false, request["stream"])

		options, ok := request["options"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 0.5, options["temperature"])
		assert.Equal(t, float64(500), options["num_predict"])

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"1066: "},"done":false}` + "\n"))
		w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"Battle of Hastings"},"done":true}` + "\n"))
	}))
	defer server.Close()

	base, err := url.Parse(server.URL)
	require.NoError(t, err)

	client := NewClient(base, "llama3", nil)
	res, err := client.Chat(context.Background(), &llm.ChatRequest{
		Messages:    llm.NewPrompt("find events", "1066"),
		Temperature: 0.5,
		MaxTokens:   500,
	})
	require.NoError(t, err)

	assert.Equal(t, llm.RoleAssistant, res.Message.Role)
	assert.Equal(t, "1066: Battle of Hastings", res.Message.Content)
}
