// Package github implements the RepositoryClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
	"github.com/ericfisherdev/forkmonkey/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepositoryClient = (*Client)(nil)

// Client implements the driven.RepositoryClient port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client, PAT auth when token is non-empty)
//
// An empty token yields an unauthenticated client with the stricter anonymous
// rate limit.
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// GetRepository fetches a single repository. A 404 is reported as
// driven.ErrRepositoryNotFound.
func (c *Client) GetRepository(ctx context.Context, fullName string) (*model.RepositoryRef, error) {
	owner, repo, err := splitRepo(fullName)
	if err != nil {
		return nil, err
	}

	r, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if isNotFound(resp) {
			return nil, fmt.Errorf("fetching repository %s: %w", fullName, driven.ErrRepositoryNotFound)
		}
		return nil, fmt.Errorf("fetching repository %s: %w", fullName, err)
	}

	logRateLimit(resp, fullName, 0, 1)

	ref := mapRepository(r)
	return &ref, nil
}

// ListForks fetches one page of direct forks, newest first. The listing does
// not embed each fork's parent, so forks without one are attributed to the
// listed repository.
func (c *Client) ListForks(ctx context.Context, fullName string, page, perPage int) ([]model.RepositoryRef, int, error) {
	owner, repo, err := splitRepo(fullName)
	if err != nil {
		return nil, 0, err
	}

	opts := &gh.RepositoryListForksOptions{
		Sort: "newest",
		ListOptions: gh.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	forks, resp, err := c.gh.Repositories.ListForks(ctx, owner, repo, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("listing forks for %s (page %d): %w", fullName, page, err)
	}

	logRateLimit(resp, fullName+"/forks", page, len(forks))

	refs := make([]model.RepositoryRef, 0, len(forks))
	for _, f := range forks {
		ref := mapRepository(f)
		if ref.Parent == "" {
			ref.Parent = fullName
		}
		refs = append(refs, ref)
	}

	return refs, resp.NextPage, nil
}

// GetFile fetches and decodes the file at path. Missing paths and directories
// are reported as driven.ErrFileNotFound.
func (c *Client) GetFile(ctx context.Context, fullName, path string) ([]byte, error) {
	owner, repo, err := splitRepo(fullName)
	if err != nil {
		return nil, err
	}

	file, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		if isNotFound(resp) {
			return nil, fmt.Errorf("fetching %s from %s: %w", path, fullName, driven.ErrFileNotFound)
		}
		return nil, fmt.Errorf("fetching %s from %s: %w", path, fullName, err)
	}

	logRateLimit(resp, fullName+"/contents/"+path, 0, 1)

	if file == nil {
		return nil, fmt.Errorf("fetching %s from %s: path is a directory: %w", path, fullName, driven.ErrFileNotFound)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding %s from %s: %w", path, fullName, err)
	}

	return []byte(content), nil
}

// mapRepository converts a go-github Repository to a domain RepositoryRef.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapRepository(r *gh.Repository) model.RepositoryRef {
	var parent string
	if r.GetFork() {
		parent = r.GetParent().GetFullName()
	}

	return model.RepositoryRef{
		Owner:     r.GetOwner().GetLogin(),
		Name:      r.GetName(),
		FullName:  r.GetFullName(),
		URL:       r.GetHTMLURL(),
		IsFork:    r.GetFork(),
		Parent:    parent,
		CreatedAt: r.GetCreatedAt().Time,
		UpdatedAt: r.GetUpdatedAt().Time,
	}
}

// isNotFound reports whether the API answered 404.
func isNotFound(resp *gh.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
