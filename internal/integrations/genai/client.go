// Package genai streams chat completions from an OpenAI-compatible
// endpoint and exposes them as the fragment-channel convention the rest of
// the application consumes.
package genai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/samber/lo"

	"koatrip-agent/internal/domain"
	"koatrip-agent/internal/logger"
)

// Client streams assistant replies for a conversation transcript.
type Client struct {
	api    openai.Client
	model  string
	schema map[string]any
	log    *logger.Logger
}

type Option func(*Client) []option.RequestOption

// WithBaseURL points the client at a non-default (OpenAI-compatible)
// endpoint.
func WithBaseURL(baseURL string) Option {
	return func(*Client) []option.RequestOption {
		baseURL = strings.TrimSpace(baseURL)
		if baseURL == "" {
			return nil
		}
		return []option.RequestOption{option.WithBaseURL(baseURL)}
	}
}

// WithResponseSchema constrains every reply to the given JSON schema via the
// structured-output response format.
func WithResponseSchema(schema map[string]any) Option {
	return func(c *Client) []option.RequestOption {
		c.schema = schema
		return nil
	}
}

// NewClient creates a streaming client for the given API key and model.
func NewClient(apiKey, model string, log *logger.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("genai: api key must not be empty")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("genai: model must not be empty")
	}
	if log == nil {
		log = logger.Nop()
	}
	c := &Client{model: model, log: log}

	requestOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, opt := range opts {
		requestOpts = append(requestOpts, opt(c)...)
	}
	c.api = openai.NewClient(requestOpts...)
	return c, nil
}

// StreamChat starts a streaming completion for the transcript and returns a
// channel of text fragments. The channel is closed after the last fragment;
// a hard stream failure is delivered as exactly one fragment carrying the
// error before closure, so the consumer is never left hanging. Malformed
// upstream chunks are skipped without aborting the stream.
func (c *Client) StreamChat(ctx context.Context, messages []domain.ChatMessage) (<-chan domain.StreamFragment, error) {
	if len(messages) == 0 {
		return nil, errors.New("genai: at least one message is required")
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: toMessageParams(messages),
	}
	if c.schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "itinerary",
					Strict: openai.Bool(true),
					Schema: c.schema,
				},
			},
		}
	}

	stream := c.api.Chat.Completions.NewStreaming(ctx, params)
	out := make(chan domain.StreamFragment)
	go func() {
		defer close(out)
		defer stream.Close()
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case out <- domain.StreamFragment{Text: delta}:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil {
			c.log.Warn("chat stream interrupted", "err", err)
			select {
			case out <- domain.StreamFragment{Err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

func toMessageParams(messages []domain.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	return lo.Map(messages, func(m domain.ChatMessage, _ int) openai.ChatCompletionMessageParamUnion {
		switch m.Role {
		case domain.RoleSystem:
			return openai.SystemMessage(m.Content)
		case domain.RoleAssistant:
			return openai.AssistantMessage(m.Content)
		default:
			return openai.UserMessage(m.Content)
		}
	})
}
