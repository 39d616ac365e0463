// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package nlparser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/aura/internal/config"
)

func testConfig(baseURL string) *config.ParserConfig {
	return &config.ParserConfig{
		Enabled:            true,
		BaseURL:            baseURL,
		APIKey:             "sk-test",
		Model:              "gpt-4-turbo",
		Temperature:        0.3,
		MaxTokens:          500,
		Timeout:            time.Second,
		BreakerMaxFailures: 2,
		BreakerTimeout:     time.Minute,
		BreakerInterval:    time.Minute,
	}
}

// completionServer answers every request with content, recording the last
// decoded request body.
func completionServer(t *testing.T, status int, content string, last *chatRequest, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if r.URL.Path != "/chat/completions" || r.Header.Get("Authorization") != "Bearer sk-test" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if last != nil {
			_ = json.NewDecoder(r.Body).Decode(last)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded"}}`))
			return
		}
		body, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Parse(t *testing.T) {
	t.Parallel()

	var got chatRequest
	srv := completionServer(t, http.StatusOK,
		`{"categories":["Techno"],"price_max":40,"time_slot":"Late Night","location":"Brooklyn","age_restriction":null,"vibe_keywords":["underground"]}`,
		&got, nil)

	c := NewClient(testConfig(srv.URL), srv.Client())
	intent, err := c.Parse(context.Background(), "techno in Brooklyn tonight under $40")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(intent.Categories) != 1 || intent.Categories[0] != "Techno" {
		t.Errorf("Categories = %v", intent.Categories)
	}
	if intent.PriceMax == nil || *intent.PriceMax != 40 {
		t.Errorf("PriceMax = %v", intent.PriceMax)
	}
	if intent.TimeSlot != "Late Night" || intent.Location != "Brooklyn" || intent.AgeRestriction != "" {
		t.Errorf("intent = %+v", intent)
	}
	if got.Model != "gpt-4-turbo" || got.Temperature != 0.3 || got.MaxTokens != 500 || len(got.Messages) != 2 {
		t.Errorf("request = %+v", got)
	}
	if !strings.Contains(got.Messages[1].Content, "techno in Brooklyn tonight under $40") {
		t.Error("query missing from prompt")
	}
}

func TestClient_ParseFencedJSON(t *testing.T) {
	t.Parallel()

	srv := completionServer(t, http.StatusOK, "```json\n{\"categories\":[\"Jazz\"]}\n```", nil, nil)
	c := NewClient(testConfig(srv.URL), srv.Client())

	intent, err := c.Parse(context.Background(), "jazz")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(intent.Categories) != 1 || intent.VibeKeywords == nil {
		t.Errorf("intent = %+v", intent)
	}
}

func TestClient_ParseErrors(t *testing.T) {
	t.Parallel()

	t.Run("server error", func(t *testing.T) {
		t.Parallel()
		srv := completionServer(t, http.StatusInternalServerError, "", nil, nil)
		_, err := NewClient(testConfig(srv.URL), srv.Client()).Parse(context.Background(), "jazz")
		if !errors.Is(err, ErrParserUnavailable) || !strings.Contains(err.Error(), "upstream exploded") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()
		srv := completionServer(t, http.StatusOK, "sure! here is jazz", nil, nil)
		_, err := NewClient(testConfig(srv.URL), srv.Client()).Parse(context.Background(), "jazz")
		if !errors.Is(err, ErrParserUnavailable) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })

		cfg := testConfig(srv.URL)
		cfg.Timeout = 50 * time.Millisecond
		start := time.Now()
		_, err := NewClient(cfg, srv.Client()).Parse(context.Background(), "jazz")
		if !errors.Is(err, ErrParserTimeout) {
			t.Errorf("err = %v, want ErrParserTimeout", err)
		}
		if time.Since(start) > 2*time.Second {
			t.Error("timeout not enforced")
		}
	})
}

func TestClient_BreakerOpens(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := completionServer(t, http.StatusBadGateway, "", nil, &calls)
	c := NewClient(testConfig(srv.URL), srv.Client())

	for i := 0; i < 2; i++ {
		if _, err := c.Parse(context.Background(), "jazz"); !errors.Is(err, ErrParserUnavailable) {
			t.Fatalf("call %d: err = %v", i, err)
		}
	}
	_, err := c.Parse(context.Background(), "jazz")
	if !errors.Is(err, ErrParserUnavailable) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err = %v, want open breaker", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server saw %d calls, want 2", calls.Load())
	}
}

func TestClient_Explain(t *testing.T) {
	t.Parallel()

	var got chatRequest
	srv := completionServer(t, http.StatusOK, "  Found 3 late-night techno parties in Brooklyn.  ", &got, nil)
	c := NewClient(testConfig(srv.URL), srv.Client())

	price := 40.0
	text, err := c.Explain(context.Background(), "techno", ParsedIntent{Categories: []string{"Techno"}, PriceMax: &price}, 3)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if text != "Found 3 late-night techno parties in Brooklyn." {
		t.Errorf("text = %q", text)
	}
	if got.Temperature != 0.7 || got.MaxTokens != 100 {
		t.Errorf("request = %+v", got)
	}
	if p := got.Messages[0].Content; !strings.Contains(p, "Techno") || !strings.Contains(p, "$40") || !strings.Contains(p, "nearby") {
		t.Errorf("prompt = %q", p)
	}
}

func TestKeywordParser(t *testing.T) {
	t.Parallel()

	p := NewKeywordParser()
	tests := []struct {
		query    string
		category string
		price    float64
		slot     string
		location string
		age      string
	}{
		{"techno in Brooklyn tonight under $40", "techno", 40, slotEvening, "brooklyn", ""},
		{"late night jazz near west village", "jazz", -1, slotLateNight, "west village", ""},
		{"free comedy this afternoon, 21+", "comedy", 0, slotAfternoon, "", "21+"},
		{"after work networking in flatiron", "networking", -1, slotEarlyEvening, "flatiron", ""},
		{"all ages art below 15", "art", 15, "", "", "All Ages"},
		{"freelance networking", "networking", -1, "", "", ""},
		{"carefree jazz", "jazz", -1, "", "", ""},
	}
	for _, tt := range tests {
		intent, err := p.Parse(context.Background(), tt.query)
		if err != nil {
			t.Fatalf("%q: %v", tt.query, err)
		}
		if len(intent.Categories) == 0 || intent.Categories[0] != tt.category {
			t.Errorf("%q: categories = %v", tt.query, intent.Categories)
		}
		switch {
		case tt.price < 0 && intent.PriceMax != nil:
			t.Errorf("%q: unexpected price %v", tt.query, *intent.PriceMax)
		case tt.price >= 0 && (intent.PriceMax == nil || *intent.PriceMax != tt.price):
			t.Errorf("%q: price = %v, want %v", tt.query, intent.PriceMax, tt.price)
		}
		if intent.TimeSlot != tt.slot || intent.Location != tt.location || intent.AgeRestriction != tt.age {
			t.Errorf("%q: intent = %+v", tt.query, intent)
		}
	}
}

func TestKeywordParser_Fallback(t *testing.T) {
	t.Parallel()

	intent, err := NewKeywordParser().Parse(context.Background(), "surprise me")
	if err != nil {
		t.Fatal(err)
	}
	if intent.HasConstraints() || len(intent.VibeKeywords) != 1 || intent.VibeKeywords[0] != "general" {
		t.Errorf("intent = %+v, want fallback", intent)
	}

	text, _ := NewKeywordParser().Explain(context.Background(), "surprise me", intent, 4)
	if text != DefaultExplanation {
		t.Errorf("Explain = %q", text)
	}
}
