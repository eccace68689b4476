// Package web provides the web-search suggestion source. It queries an
// OpenSearch-compatible suggestion endpoint and turns each phrase into
// a web-search action.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
)

// SourceID is the identity of the web suggestion source.
const SourceID domain.SourceID = "web/suggest"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// Config holds the endpoint configuration.
type Config struct {
	// SuggestURL is the OpenSearch suggestion endpoint. The query text
	// is passed as the "q" parameter.
	SuggestURL string

	// SearchURL is the search action endpoint. The chosen phrase is
	// passed as the "q" parameter; the result becomes the suggestion's
	// action payload.
	SearchURL string

	// Label is the display name shown for the source.
	Label string

	// RequestsPerSecond is the sustained request rate. Zero means the
	// default of 5 requests per second.
	RequestsPerSecond float64

	// BurstSize is the token bucket burst. Zero means a burst of 5.
	BurstSize int
}

// DefaultConfig returns a DuckDuckGo-backed configuration.
func DefaultConfig() Config {
	return Config{
		SuggestURL: "https://duckduckgo.com/ac/",
		SearchURL:  "https://duckduckgo.com/",
		Label:      "Web Search",
	}
}

// Ensure Source implements the interface.
var _ driven.SuggestionSource = (*Source)(nil)

// Source queries the suggestion endpoint with a client-side rate limit.
// Every keystroke reaches this source, so the limiter protects the
// endpoint from fast typists more than from bugs.
type Source struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
}

// NewSource creates a web suggestion source. A nil client uses a
// default with DefaultTimeout.
func NewSource(cfg Config, client *http.Client) *Source {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5.0
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 5
	}
	return &Source{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Info returns the source's identity and display metadata.
func (s *Source) Info() domain.SourceInfo {
	label := s.cfg.Label
	if label == "" {
		label = "Web Search"
	}
	return domain.SourceInfo{
		ID:    SourceID,
		Label: label,
		Icon:  "globe",
		// A phrase with no completions can still complete once extended.
		QueryAfterZeroResults: true,
	}
}

// Query fetches suggestion phrases for the text.
func (s *Source) Query(ctx context.Context, text string, maxResults int) domain.SourceResult {
	if err := s.limiter.Wait(ctx); err != nil {
		return domain.SourceResult{SourceID: SourceID, Err: err}
	}

	phrases, err := s.fetch(ctx, text)
	if err != nil {
		return domain.SourceResult{SourceID: SourceID, Err: err}
	}
	if maxResults > 0 && len(phrases) > maxResults {
		phrases = phrases[:maxResults]
	}

	suggestions := make([]domain.Suggestion, 0, len(phrases))
	for _, phrase := range phrases {
		suggestions = append(suggestions, s.suggestion(phrase))
	}
	return domain.SourceResult{SourceID: SourceID, Suggestions: suggestions}
}

// ValidateShortcut refreshes a previously chosen phrase. A web search
// never goes stale; the action URL is rebuilt in case the search
// endpoint changed.
func (s *Source) ValidateShortcut(_ context.Context, shortcut domain.Shortcut) (*domain.Suggestion, error) {
	sugg := s.suggestion(shortcut.Suggestion.Title)
	sugg.ShortcutID = shortcut.ID
	return &sugg, nil
}

// suggestion builds the web-search suggestion for a phrase.
func (s *Source) suggestion(phrase string) domain.Suggestion {
	return domain.Suggestion{
		SourceID: SourceID,
		Title:    phrase,
		Icon:     "search",
		Intent:   "web-search",
		Extra:    s.searchURL(phrase),
	}
}

// searchURL builds the action URL for a phrase.
func (s *Source) searchURL(phrase string) string {
	u, err := url.Parse(s.cfg.SearchURL)
	if err != nil {
		return s.cfg.SearchURL
	}
	q := u.Query()
	q.Set("q", phrase)
	u.RawQuery = q.Encode()
	return u.String()
}

// fetch queries the endpoint and decodes the OpenSearch response:
// a two-element array of the echoed query and the phrase list.
func (s *Source) fetch(ctx context.Context, text string) ([]string, error) {
	u, err := url.Parse(s.cfg.SuggestURL)
	if err != nil {
		return nil, fmt.Errorf("parsing suggest URL: %w", err)
	}
	q := u.Query()
	q.Set("q", text)
	q.Set("type", "list")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching suggestions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggestion endpoint returned %s: %w", resp.Status, domain.ErrSourceUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(payload) < 2 {
		return nil, nil
	}

	var phrases []string
	if err := json.Unmarshal(payload[1], &phrases); err != nil {
		return nil, fmt.Errorf("decoding phrases: %w", err)
	}
	return phrases, nil
}
