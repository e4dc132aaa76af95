package genai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"koatrip-agent/internal/domain"
)

func TestNewClient_ValidatesInputs(t *testing.T) {
	_, err := NewClient("", "gpt-4o-mini", nil)
	require.ErrorContains(t, err, "api key")

	_, err = NewClient("sk-test", "  ", nil)
	require.ErrorContains(t, err, "model")
}

func TestNewClient_AppliesOptions(t *testing.T) {
	schema := map[string]any{"type": "object"}
	client, err := NewClient("sk-test", "gpt-4o-mini", nil,
		WithBaseURL("http://localhost:11434/v1"),
		WithResponseSchema(schema),
	)
	require.NoError(t, err)
	require.Equal(t, schema, client.schema)

	// A blank base URL is ignored rather than breaking the client.
	client, err = NewClient("sk-test", "gpt-4o-mini", nil, WithBaseURL("  "))
	require.NoError(t, err)
	require.Nil(t, client.schema)
}

func TestStreamChat_RequiresMessages(t *testing.T) {
	client, err := NewClient("sk-test", "gpt-4o-mini", nil)
	require.NoError(t, err)

	_, err = client.StreamChat(context.Background(), nil)
	require.ErrorContains(t, err, "at least one message")
}

func TestToMessageParams_MapsRoles(t *testing.T) {
	params := toMessageParams([]domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "Eres Koa."},
		{Role: domain.RoleUser, Content: "Hola"},
		{Role: domain.RoleAssistant, Content: "¡Hola! ¿A dónde viajamos?"},
	})
	require.Len(t, params, 3)
	require.NotNil(t, params[0].OfSystem)
	require.NotNil(t, params[1].OfUser)
	require.NotNil(t, params[2].OfAssistant)
}
