package gemini

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/AlexGustafsson/chronicler/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleOf(t *testing.T) {
	assert.Equal(t, "model", roleOf(llm.RoleAssistant))
	assert.Equal(t, "user", roleOf(llm.RoleUser))
}

func TestChat(t *testing.T) {
	apiKey, ok := os.LookupEnv("GEMINI_API_KEY")
	if !ok {
		t.Skip("GEMINI_API_KEY not set")
	}

	client, err := NewClient(context.Background(), apiKey, "")
	require.NoError(t, err)
	defer client.Close()

	res, err := client.Chat(context.Background(), &llm.ChatRequest{
		Messages:  llm.NewPrompt("Add the numbers provided by the user. Respond only with the sum, nothing else.", "1 2"),
		MaxTokens: 16,
	})
	require.NoError(t, err)

	assert.Equal(t, "3", strings.TrimSpace(res.Message.Content))
}
