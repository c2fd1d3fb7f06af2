// Package textgen holds settings shared by the text-generation providers.
package textgen

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// Config tunes a provider client.
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	Temperature       float32
	MaxTokens         int
	RequestsPerMinute int
	Timeout           time.Duration
}

// Validate checks the fields every provider needs.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New(errors.ErrCodeTextGenNotConfigured, "api key required")
	}
	if c.Model == "" {
		return errors.New(errors.ErrCodeTextGenNotConfigured, "model required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New(errors.ErrCodeValidation, "temperature must be between 0 and 2")
	}
	if c.RequestsPerMinute < 0 {
		return errors.New(errors.ErrCodeValidation, "requests per minute must be >= 0")
	}
	return nil
}

// NewLimiter returns a limiter allowing rpm calls per minute with a burst of
// one.  rpm <= 0 disables limiting.
func NewLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
}

// Wait blocks on l and maps a cancelled wait to a rate-limit error.
func Wait(ctx context.Context, l *rate.Limiter) error {
	if err := l.Wait(ctx); err != nil {
		return errors.Wrap(err, errors.CodeRateLimit, "text generation rate limit wait aborted")
	}
	return nil
}

// WithTimeout bounds ctx by d when d > 0.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
