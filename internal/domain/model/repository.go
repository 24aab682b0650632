package model

import "time"

// RepositoryRef identifies a repository in the fork network as returned by the
// hosting API. It is immutable once fetched.
type RepositoryRef struct {
	Owner     string
	Name      string
	FullName  string // owner/name
	URL       string
	IsFork    bool
	Parent    string // Full name of the parent repository; empty unless IsFork.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AgeDays returns the number of whole days between CreatedAt and now.
// A zero or future CreatedAt yields 0.
func (r RepositoryRef) AgeDays(now time.Time) int {
	if r.CreatedAt.IsZero() || now.Before(r.CreatedAt) {
		return 0
	}
	return int(now.Sub(r.CreatedAt).Hours() / 24)
}
