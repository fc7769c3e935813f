// Package anthropic implements reasoning.Service on the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/racelab/pitwall/reasoning"
)

// Options configures the Anthropic service adapter.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Service wraps the Anthropic Messages API behind reasoning.Service.
type Service struct {
	client *anthropic.Client
	opts   Options
}

// New creates an Anthropic-backed reasoning service using the official client.
func New(optFns ...func(o *Options)) *Service {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.2,
		MaxTokens:   1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Service{client: &client, opts: opts}
}

// NewFromClient creates a service from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Service {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.2,
		MaxTokens:   1024,
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

	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       s.opts.Model,
		MaxTokens:   s.opts.MaxTokens,
		Temperature: anthropic.Float(s.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: reasoning.SystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, classify(err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	if text == "" {
		return nil, reasoning.Transient(fmt.Errorf("anthropic: empty response"))
	}

	return reasoning.ParseVerdict(text)
}

// classify maps SDK errors into the retryable / terminal split the
// coordinator's retry policy keys on.
func classify(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		if reasoning.RetryableStatus(apierr.StatusCode) {
			return reasoning.Transient(fmt.Errorf("anthropic api error: %w", err))
		}
		return fmt.Errorf("anthropic api error: %w", err)
	}
	// Network-level failures without a status are worth retrying.
	return reasoning.Transient(fmt.Errorf("anthropic call failed: %w", err))
}

// Info implements reasoning.Service.
func (s *Service) Info() reasoning.Info {
	return reasoning.Info{Name: string(s.opts.Model), Provider: "anthropic"}
}
