// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm sends single-prompt completion requests to a text-generation
// service. Stages depend on the Completer interface so tests can supply a
// mock; OpenAIClient is the production implementation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/pdiddy/content-engine/pkg/types"
)

// DefaultModel is used when the configuration names no model.
const DefaultModel = "gpt-4o"

// ErrEmptyResponse is returned when the service answers without any text.
var ErrEmptyResponse = errors.New("empty completion")

// ErrNoAPIKey is returned by NewOpenAIClient when no key is configured.
var ErrNoAPIKey = errors.New("text-generation api key is empty")

// Request is one completion request: a single user-role prompt.
type Request struct {
	Prompt      string
	Temperature float64

	// MaxTokens is the completion ceiling; zero sends none.
	MaxTokens int

	// JSON asks the service for a JSON object response.
	JSON bool
}

// Completer abstracts the text-generation service.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// OpenAIClient calls the OpenAI Chat Completions API (or any compatible server).
type OpenAIClient struct {
	client openai.Client
	model  string
}

var _ Completer = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client from configuration. SDK retries are
// disabled: a failed call is reported to the caller, which logs and skips.
func NewOpenAIClient(cfg types.AIConfig) (*OpenAIClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(base, "/")+"/"))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Model returns the model identifier sent with every request.
func (c *OpenAIClient) Model() string { return c.model }

// Complete sends the prompt and returns the text of the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}
