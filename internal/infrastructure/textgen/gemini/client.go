// Package gemini implements text generation on the Gemini API.
package gemini

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/textgen"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

const systemInstruction = "You are an industrial energy-efficiency and carbon-reduction consultant."

// Recorder receives one observation per completed call.
type Recorder interface {
	RecordTextGen(provider string, err error, d time.Duration)
}

// Client implements advisory.TextGenerator.
type Client struct {
	api     *genai.Client
	cfg     textgen.Config
	limiter *rate.Limiter
	logger  logging.Logger
	rec     Recorder
}

// NewClient builds a Client against the Gemini developer API.  rec may be nil.
func NewClient(ctx context.Context, cfg textgen.Config, logger logging.Logger, rec Recorder) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	api, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTextGenNotConfigured, "create gemini client")
	}
	return &Client{
		api:     api,
		cfg:     cfg,
		limiter: textgen.NewLimiter(cfg.RequestsPerMinute),
		logger:  logger,
		rec:     rec,
	}, nil
}

// GenerateText runs a single-turn generation and returns the concatenated
// text parts of the first candidate.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := textgen.Wait(ctx, c.limiter); err != nil {
		return "", err
	}
	ctx, cancel := textgen.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	gc := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(c.cfg.Temperature),
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}
	if c.cfg.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(c.cfg.MaxTokens)
	}

	start := time.Now()
	resp, err := c.api.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), gc)
	if err != nil {
		c.record(err, start)
		c.logger.Warn("gemini generation failed", logging.String("model", c.cfg.Model), logging.Err(err))
		return "", errors.Wrap(err, errors.ErrCodeTextGenFailed, "gemini generation failed")
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		err := errors.New(errors.ErrCodeTextGenEmpty, "gemini returned no content")
		c.record(err, start)
		return "", err
	}

	c.record(nil, start)
	c.logger.Debug("gemini generation",
		logging.String("model", c.cfg.Model),
		logging.Duration("latency", time.Since(start)))
	return text, nil
}

func (c *Client) record(err error, start time.Time) {
	if c.rec != nil {
		c.rec.RecordTextGen("gemini", err, time.Since(start))
	}
}
