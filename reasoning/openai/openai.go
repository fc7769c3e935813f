// Package openai implements reasoning.Service on the OpenAI Chat Completions API.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/racelab/pitwall/reasoning"
)

// Options configures the OpenAI service adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
}

// Service wraps the OpenAI Chat Completions API behind reasoning.Service.
type Service struct {
	client *openai.Client
	opts   Options
}

// New creates an OpenAI-backed reasoning service using the official client.
func New(optFns ...func(o *Options)) *Service {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.2,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)

	return &Service{client: &client, opts: opts}
}

// NewFromClient creates a service from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Service {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.2,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Service{client: client, opts: opts}
}

// Evaluate implements reasoning.Service.
func (s *Service) Evaluate(ctx context.Context, req reasoning.Request) (*reasoning.Verdict, error) {
	prompt, err := reasoning.UserPrompt(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               s.opts.Model,
		Temperature:         openai.Float(s.opts.Temperature),
		MaxCompletionTokens: openai.Int(s.opts.MaxCompletionTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(reasoning.SystemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, classify(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, reasoning.Transient(fmt.Errorf("openai: empty response"))
	}

	return reasoning.ParseVerdict(resp.Choices[0].Message.Content)
}

// classify maps SDK errors into the retryable / terminal split the
// coordinator's retry policy keys on.
func classify(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		if reasoning.RetryableStatus(apierr.StatusCode) {
			return reasoning.Transient(fmt.Errorf("openai api error: %w", err))
		}
		return fmt.Errorf("openai api error: %w", err)
	}
	return reasoning.Transient(fmt.Errorf("openai call failed: %w", err))
}

// Info implements reasoning.Service.
func (s *Service) Info() reasoning.Info {
	return reasoning.Info{Name: s.opts.Model, Provider: "openai"}
}
