package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/user/site-crawler/internal/summary"
)

// ErrEmptyAnalysis is returned when the model answers without any text.
var ErrEmptyAnalysis = errors.New("summarizer returned no text")

// Options configures SummarizerImpl.
type Options struct {
	APIKey    string
	Model     string
	MaxTokens int64
	MaxChars  int
	Logger    *zap.Logger
	// RequestOptions are appended to the client options, e.g. option.WithBaseURL.
	RequestOptions []option.RequestOption
}

// SummarizerImpl asks a Claude model for a structured business analysis of
// the crawled text.
type SummarizerImpl struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	maxChars  int
	logger    *zap.Logger
}

// NewSummarizer creates a new instance of SummarizerImpl.
func NewSummarizer(opts Options) *SummarizerImpl {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1500
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	clientOpts := append([]option.RequestOption{option.WithAPIKey(opts.APIKey)}, opts.RequestOptions...)
	return &SummarizerImpl{
		client:    anthropic.NewClient(clientOpts...),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		maxChars:  opts.MaxChars,
		logger:    opts.Logger,
	}
}

// Summarize sends the prepared prompt and returns the text of the answer.
func (s *SummarizerImpl) Summarize(ctx context.Context, content, about string) (string, error) {
	prompt := summary.BuildPrompt(content, about, s.maxChars)
	s.logger.Debug("requesting analysis",
		zap.String("model", s.model),
		zap.Int("prompt_chars", len(prompt)),
		zap.Bool("has_about", about != ""),
	)

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(s.model),
		MaxTokens:   s.maxTokens,
		Temperature: anthropic.Float(0.7),
		System: []anthropic.TextBlockParam{
			{Text: summary.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyAnalysis
	}
	return b.String(), nil
}
