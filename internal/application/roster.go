package application

import (
	"time"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
)

// BuildRoster publishes every record, in extraction order, under the scanned root.
func BuildRoster(sourceRepo string, records []model.CreatureRecord, generatedAt time.Time) model.Roster {
	entries := make([]model.RosterEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, model.RosterEntry{
			Owner:     r.Repository.Owner,
			Repo:      r.Repository.Name,
			FullName:  r.Repository.FullName,
			URL:       r.Repository.URL,
			IsRoot:    r.IsRoot,
			Parent:    optionalString(r.Repository.Parent),
			CreatedAt: formatTime(r.Repository.CreatedAt),
			UpdatedAt: optionalTime(r.Repository.UpdatedAt),
			Stats:     r.Stats,
			SVG:       optionalString(r.SVG),
			DNA:       r.DNA,
		})
	}

	return model.Roster{
		LastUpdated: formatTime(generatedAt),
		SourceRepo:  sourceRepo,
		TotalForks:  len(entries),
		Forks:       entries,
	}
}

// formatTime renders t as RFC 3339 in UTC; the zero time renders empty.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func optionalTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := formatTime(t)
	return &s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
