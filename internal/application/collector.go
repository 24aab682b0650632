// Package application contains the fork network scan pipeline: traversal,
// per-repository extraction, and the derived-view builders.
package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
	"github.com/ericfisherdev/forkmonkey/internal/domain/port/driven"
)

// Traversal bounds used when the configuration does not override them.
const (
	DefaultMaxRepos     = 100
	DefaultMaxForkPages = 2
	DefaultForkPageSize = 100
)

// Collector gathers the members of a fork network: the root followed by its
// direct forks, bounded by a repository cap and a page budget. Forks of forks
// are not descended into.
type Collector struct {
	client   driven.RepositoryClient
	maxRepos int
	maxPages int
	pageSize int
}

// NewCollector creates a Collector. Non-positive bounds fall back to the defaults.
func NewCollector(client driven.RepositoryClient, maxRepos, maxPages, pageSize int) *Collector {
	if maxRepos <= 0 {
		maxRepos = DefaultMaxRepos
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxForkPages
	}
	if pageSize <= 0 {
		pageSize = DefaultForkPageSize
	}

	return &Collector{
		client:   client,
		maxRepos: maxRepos,
		maxPages: maxPages,
		pageSize: pageSize,
	}
}

// Collect returns the root and its forks in listing order, deduplicated by
// full name. A failed page fetch ends the traversal and keeps what was
// collected so far.
func (c *Collector) Collect(ctx context.Context, root model.RepositoryRef) []model.RepositoryRef {
	repos := []model.RepositoryRef{root}
	seen := map[string]bool{root.FullName: true}

	if len(repos) >= c.maxRepos {
		return repos
	}

	page := 1
	for fetched := 0; fetched < c.maxPages; fetched++ {
		forks, next, err := c.client.ListForks(ctx, root.FullName, page, c.pageSize)
		if err != nil {
			slog.Warn("fork listing truncated",
				"repo", root.FullName,
				"page", page,
				"collected", len(repos),
				"error", err,
			)
			return repos
		}

		slog.Debug("fork page fetched", "repo", root.FullName, "page", page, "count", len(forks))

		for _, fork := range forks {
			if seen[fork.FullName] {
				continue
			}
			seen[fork.FullName] = true
			repos = append(repos, fork)

			if len(repos) >= c.maxRepos {
				slog.Info("repository cap reached", "repo", root.FullName, "cap", c.maxRepos)
				return repos
			}
		}

		if next == 0 {
			break
		}
		page = next
	}

	return repos
}
