package application

import (
	"cmp"
	"slices"
	"time"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
)

// BuildLeaderboard ranks records by rarity score, highest first. Equal scores
// keep their input order and still receive distinct consecutive ranks.
func BuildLeaderboard(records []model.CreatureRecord, generatedAt time.Time) model.Leaderboard {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b model.CreatureRecord) int {
		return cmp.Compare(b.Stats.RarityScore, a.Stats.RarityScore)
	})

	rankings := make([]model.Ranking, 0, len(sorted))
	for i, r := range sorted {
		rankings = append(rankings, model.Ranking{
			Rank:          i + 1,
			Owner:         r.Repository.Owner,
			Repo:          r.Repository.Name,
			FullName:      r.Repository.FullName,
			URL:           r.Repository.URL,
			RarityScore:   r.Stats.RarityScore,
			Generation:    r.Stats.Generation,
			AgeDays:       r.Stats.AgeDays,
			MutationCount: r.Stats.MutationCount,
			IsRoot:        r.IsRoot,
			SVG:           optionalString(r.SVG),
		})
	}

	return model.Leaderboard{
		LastUpdated: formatTime(generatedAt),
		TotalRanked: len(rankings),
		Rankings:    rankings,
	}
}
