// Package github provides a GitHub repository suggestion source backed
// by the repository search API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
)

// SourceID is the identity of the GitHub repository source.
const SourceID domain.SourceID = "github/repos"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// Ensure Source implements the interface.
var _ driven.SuggestionSource = (*Source)(nil)

// Source suggests repositories matching the query text. The search API
// has a much tighter quota than the rest of the GitHub API, so requests
// go through a conservative client-side limiter.
type Source struct {
	gh      *gh.Client
	limiter *rate.Limiter
}

// NewSource creates a GitHub source authenticated with a static access
// token. Works for both PAT and OAuth access tokens; an empty token
// uses unauthenticated access with its stricter quota.
func NewSource(ctx context.Context, token string) *Source {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = DefaultTimeout
	} else {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return NewSourceWithClient(gh.NewClient(httpClient))
}

// NewSourceWithClient creates a source around an existing go-github
// client. Useful for tests and custom transports.
func NewSourceWithClient(client *gh.Client) *Source {
	return &Source{
		gh: client,
		// Search API quota is 30 requests/minute when authenticated.
		limiter: rate.NewLimiter(rate.Limit(0.5), 2),
	}
}

// Info returns the source's identity and display metadata.
func (s *Source) Info() domain.SourceInfo {
	return domain.SourceInfo{
		ID:    SourceID,
		Label: "GitHub",
		Icon:  "github",
	}
}

// Query searches repositories matching the text.
func (s *Source) Query(ctx context.Context, text string, maxResults int) domain.SourceResult {
	if err := s.limiter.Wait(ctx); err != nil {
		return domain.SourceResult{SourceID: SourceID, Err: err}
	}

	opts := &gh.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: maxResults},
	}
	result, _, err := s.gh.Search.Repositories(ctx, text, opts)
	if err != nil {
		return domain.SourceResult{SourceID: SourceID, Err: fmt.Errorf("searching repositories: %w", err)}
	}

	suggestions := make([]domain.Suggestion, 0, len(result.Repositories))
	for _, repo := range result.Repositories {
		if maxResults > 0 && len(suggestions) == maxResults {
			break
		}
		suggestions = append(suggestions, repoSuggestion(repo))
	}
	return domain.SourceResult{SourceID: SourceID, Suggestions: suggestions}
}

// ValidateShortcut checks that the repository still exists. A 404 means
// the shortcut is gone for good; any other failure leaves it as shown.
func (s *Source) ValidateShortcut(ctx context.Context, shortcut domain.Shortcut) (*domain.Suggestion, error) {
	owner, name, ok := strings.Cut(shortcut.Suggestion.Title, "/")
	if !ok {
		return nil, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	repo, _, err := s.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		var ghErr *gh.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting repository: %w", err)
	}

	sugg := repoSuggestion(repo)
	sugg.ShortcutID = shortcut.ID
	return &sugg, nil
}

// repoSuggestion maps a repository to a suggestion.
func repoSuggestion(repo *gh.Repository) domain.Suggestion {
	return domain.Suggestion{
		SourceID: SourceID,
		Title:    repo.GetFullName(),
		Subtitle: repo.GetDescription(),
		Icon:     "github",
		Intent:   "open-url",
		Extra:    repo.GetHTMLURL(),
	}
}
