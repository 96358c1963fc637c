// Package textassist rewrites report descriptions and suggests categories
// with a language model. Every failure degrades to a usable default.
package textassist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"

	"github.com/erazemk/lostfound/internal/model"
)

// Defaults for Options fields left at zero.
const (
	DefaultTimeout       = 8 * time.Second
	DefaultMaxConcurrent = 4
	DefaultTripAfter     = 5
	DefaultOpenFor       = 30 * time.Second
)

var errEmptyReply = errors.New("empty reply")

// Options bound calls to the generator.
type Options struct {
	Timeout       time.Duration
	MaxConcurrent int64
	TripAfter     uint32
	OpenFor       time.Duration
}

// Assistant wraps a Generator with a timeout, a concurrency cap and a
// circuit breaker.
type Assistant struct {
	gen     Generator
	timeout time.Duration
	sem     *semaphore.Weighted
	breaker *gobreaker.CircuitBreaker[string]
}

// New creates an Assistant. A nil generator disables assistance: Enhance
// returns its input and Categorize returns Other.
func New(gen Generator, opts Options) *Assistant {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.TripAfter == 0 {
		opts.TripAfter = DefaultTripAfter
	}
	if opts.OpenFor <= 0 {
		opts.OpenFor = DefaultOpenFor
	}

	tripAfter := opts.TripAfter
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "textassist",
		MaxRequests: 1,
		Timeout:     opts.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		IsSuccessful: func(err error) bool {
			// A caller going away says nothing about the backend.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Assistant{
		gen:     gen,
		timeout: opts.Timeout,
		sem:     semaphore.NewWeighted(opts.MaxConcurrent),
		breaker: breaker,
	}
}

// Enabled reports whether a generator is configured.
func (a *Assistant) Enabled() bool {
	return a != nil && a.gen != nil
}

// Enhance rewrites an item description to be clearer. It returns text
// unchanged when assistance is unavailable or fails.
func (a *Assistant) Enhance(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" || !a.Enabled() {
		return text
	}

	reply, err := a.generate(ctx, enhancePrompt(text))
	if err != nil {
		slog.Warn("text enhancement failed", "error", err)
		return text
	}
	return reply
}

// Categorize suggests a category for a report. It returns Other when
// assistance is unavailable, fails, or replies with an unknown category.
func (a *Assistant) Categorize(ctx context.Context, title, description string) model.Category {
	if !a.Enabled() {
		return model.CategoryOther
	}

	reply, err := a.generate(ctx, categorizePrompt(title, description))
	if err != nil {
		slog.Warn("categorization failed", "error", err)
		return model.CategoryOther
	}

	cat, ok := model.ParseCategory(strings.Trim(reply, "\"'`.* \n"))
	if !ok {
		slog.Debug("categorization returned unknown category", "reply", reply)
		return model.CategoryOther
	}
	return cat
}

func (a *Assistant) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for a free slot: %w", err)
	}
	defer a.sem.Release(1)

	return a.breaker.Execute(func() (string, error) {
		reply, err := a.gen.Generate(ctx, prompt)
		if err != nil {
			return "", err
		}
		reply = strings.TrimSpace(reply)
		if reply == "" {
			return "", errEmptyReply
		}
		return reply, nil
	})
}

func enhancePrompt(text string) string {
	return "Rewrite the following description of a lost or found item so it is clear, " +
		"concise and helpful for identifying the item. Keep every factual detail, " +
		"do not invent new ones, and reply with the rewritten description only.\n\n" +
		"Description:\n" + text
}

func categorizePrompt(title, description string) string {
	names := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		names[i] = string(c)
	}
	return "Classify this lost-and-found report into exactly one of these categories: " +
		strings.Join(names, ", ") + ".\nReply with the category name only.\n\n" +
		"Title: " + title + "\nDescription: " + description
}
