// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package nlparser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/aura/internal/config"
	"github.com/tomtom215/aura/internal/logging"
	"github.com/tomtom215/aura/internal/metrics"
)

const breakerName = "nlparser"

// maxResponseBytes caps how much of a completion response is read.
const maxResponseBytes = 1 << 20

const parseSystemPrompt = "You are a JSON parsing API. Always respond with valid JSON only."

const parsePromptTemplate = `You are an expert event search query parser. Parse the following user query and extract:
1. Event categories (Techno, Hip-Hop, House, Jazz, Comedy, Theater, etc.)
2. Max price willing to pay (if mentioned)
3. Time slot preference (Early Evening, Evening, Late Night, Afternoon, All Day)
4. Location/neighborhood preferences
5. Age restrictions (21+, 18+, All Ages)
6. Vibe keywords (intimate, energetic, chill, underground, mainstream, etc.)

Query: %q

Respond ONLY with valid JSON (no markdown, no code blocks):
{"categories": ["category1"], "price_max": null, "time_slot": null, "location": null, "age_restriction": null, "vibe_keywords": ["keyword1"]}`

const explainPromptTemplate = `Summarize why we found %d events for this search in 1 short sentence.

User query: %q
Parsed as:
- Categories: %s
- Max price: %s
- Time: %s
- Location: %s

Respond with just 1 sentence explanation.`

// Client calls an OpenAI-compatible chat completions endpoint. Calls go
// through a local rate limiter and a circuit breaker, and each call is
// bounded by the configured timeout regardless of the caller's deadline.
type Client struct {
	http    *http.Client
	cfg     config.ParserConfig
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[string]
}

// NewClient builds a client. httpClient may be nil.
func NewClient(cfg *config.ParserConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	limit := rate.Inf
	if cfg.RateLimitPerSecond > 0 {
		limit = rate.Limit(cfg.RateLimitPerSecond)
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	metrics.SetParserCircuitState("closed")

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= maxFailures
			if trip {
				logging.Warn().
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("[CIRCUIT BREAKER] Opening parser circuit")
			}
			return trip
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logging.Info().
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("[CIRCUIT BREAKER] Parser state transition")
			metrics.SetParserCircuitState(stateToString(to))
		},
	})

	return &Client{
		http:    httpClient,
		cfg:     *cfg,
		limiter: rate.NewLimiter(limit, burst),
		cb:      cb,
	}
}

// Parse asks the model for a structured intent.
func (c *Client) Parse(ctx context.Context, query string) (ParsedIntent, error) {
	content, err := c.complete(ctx, []chatMessage{
		{Role: "system", Content: parseSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(parsePromptTemplate, query)},
	}, c.cfg.Temperature, c.cfg.MaxTokens)
	if err != nil {
		return ParsedIntent{}, err
	}

	intent, err := decodeIntent(content)
	if err != nil {
		metrics.RecordParserOutcome("unavailable")
		return ParsedIntent{}, fmt.Errorf("%w: %w", ErrParserUnavailable, err)
	}
	metrics.RecordParserOutcome("success")
	return intent, nil
}

// Explain asks the model for a one-sentence summary of a result set.
func (c *Client) Explain(ctx context.Context, query string, intent ParsedIntent, count int) (string, error) {
	categories := "any"
	if len(intent.Categories) > 0 {
		categories = strings.Join(intent.Categories, ", ")
	}
	price := "no limit"
	if intent.PriceMax != nil {
		price = fmt.Sprintf("$%.0f", *intent.PriceMax)
	}
	slot := orDefault(intent.TimeSlot, "any time")
	location := orDefault(intent.Location, "nearby")

	content, err := c.complete(ctx, []chatMessage{
		{Role: "user", Content: fmt.Sprintf(explainPromptTemplate, count, query, categories, price, slot, location)},
	}, 0.7, 100)
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: empty explanation", ErrParserUnavailable)
	}
	return content, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// complete performs one rate-limited, breaker-guarded completion call and
// maps every failure onto ErrParserTimeout or ErrParserUnavailable.
func (c *Client) complete(ctx context.Context, msgs []chatMessage, temperature float64, maxTokens int) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordParserOutcome("rejected")
		return "", fmt.Errorf("%w: rate limited: %w", ErrParserUnavailable, err)
	}

	start := time.Now()
	content, err := c.cb.Execute(func() (string, error) {
		return c.do(ctx, chatRequest{
			Model:       c.cfg.Model,
			Messages:    msgs,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		})
	})
	if err == nil {
		logging.Debug().Dur("duration", time.Since(start)).Msg("Parser completion succeeded")
		return content, nil
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordParserOutcome("rejected")
		return "", fmt.Errorf("%w: %w", ErrParserUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		metrics.RecordParserOutcome("timeout")
		return "", fmt.Errorf("%w after %s", ErrParserTimeout, time.Since(start).Round(time.Millisecond))
	default:
		metrics.RecordParserOutcome("unavailable")
		return "", fmt.Errorf("%w: %w", ErrParserUnavailable, err)
	}
}

func (c *Client) do(ctx context.Context, body chatRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var decoded chatResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		return "", fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}

// decodeIntent parses the model's JSON answer, tolerating a surrounding
// markdown code fence.
func decodeIntent(content string) (ParsedIntent, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimPrefix(content, "json")
		if i := strings.LastIndex(content, "```"); i >= 0 {
			content = content[:i]
		}
		content = strings.TrimSpace(content)
	}

	var intent ParsedIntent
	if err := json.Unmarshal([]byte(content), &intent); err != nil {
		return ParsedIntent{}, fmt.Errorf("invalid intent JSON: %w", err)
	}
	if intent.Categories == nil {
		intent.Categories = []string{}
	}
	if intent.VibeKeywords == nil {
		intent.VibeKeywords = []string{}
	}
	if intent.PriceMax != nil && *intent.PriceMax < 0 {
		intent.PriceMax = nil
	}
	return intent, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
