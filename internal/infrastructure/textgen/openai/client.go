// Package openai implements text generation on the OpenAI chat completions
// API or any endpoint compatible with it.
package openai

import (
	"context"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/textgen"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

const systemPrompt = "You are an industrial energy-efficiency and carbon-reduction consultant."

// Recorder receives one observation per completed call.
type Recorder interface {
	RecordTextGen(provider string, err error, d time.Duration)
}

// Client implements advisory.TextGenerator.
type Client struct {
	api     *goopenai.Client
	cfg     textgen.Config
	limiter *rate.Limiter
	logger  logging.Logger
	rec     Recorder
}

// NewClient builds a Client.  rec may be nil.
func NewClient(cfg textgen.Config, logger logging.Logger, rec Recorder) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Client{
		api:     goopenai.NewClientWithConfig(apiCfg),
		cfg:     cfg,
		limiter: textgen.NewLimiter(cfg.RequestsPerMinute),
		logger:  logger,
		rec:     rec,
	}, nil
}

// GenerateText sends prompt as a single user turn and returns the first
// choice's content.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := textgen.Wait(ctx, c.limiter); err != nil {
		return "", err
	}
	ctx, cancel := textgen.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		c.record(err, start)
		c.logger.Warn("openai completion failed", logging.String("model", c.cfg.Model), logging.Err(err))
		return "", errors.Wrap(err, errors.ErrCodeTextGenFailed, "openai completion failed")
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		err := errors.New(errors.ErrCodeTextGenEmpty, "openai returned no content")
		c.record(err, start)
		return "", err
	}

	c.record(nil, start)
	c.logger.Debug("openai completion",
		logging.String("model", c.cfg.Model),
		logging.Int("total_tokens", resp.Usage.TotalTokens),
		logging.Duration("latency", time.Since(start)))
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) record(err error, start time.Time) {
	if c.rec != nil {
		c.rec.RecordTextGen("openai", err, time.Since(start))
	}
}
