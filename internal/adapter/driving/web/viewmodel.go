package web

import (
	"cmp"
	"maps"
	"slices"
	"strconv"
	"time"

	vm "github.com/ericfisherdev/forkmonkey/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
)

// topRankedLimit is how many leaderboard rows the summary page shows.
const topRankedLimit = 5

// toSummaryViewModel combines a run with its statistics and leaderboard snapshots.
func toSummaryViewModel(run model.ScanRun, stats model.NetworkStats, leaderboard model.Leaderboard) vm.SummaryViewModel {
	summary := vm.SummaryViewModel{
		HasRun:       true,
		RootRepo:     run.RootRepo,
		RunID:        run.ID,
		FinishedAt:   run.FinishedAt.UTC().Format(time.RFC3339),
		ReposScanned: run.ReposScanned,
		TotalMonkeys: stats.TotalMonkeys,
		ActiveToday:  stats.ActiveToday,
		AvgRarity:    formatScore(stats.AvgRarity),
		MaxRarity:    formatScore(stats.MaxRarity),
		MinRarity:    formatScore(stats.MinRarity),
		Generations:  toGenerationViewModels(stats.Generations),
	}

	for _, r := range leaderboard.Rankings[:min(topRankedLimit, len(leaderboard.Rankings))] {
		summary.TopRanked = append(summary.TopRanked, vm.RankingViewModel{
			Rank:        r.Rank,
			FullName:    r.FullName,
			URL:         r.URL,
			RarityScore: formatScore(r.RarityScore),
			Generation:  r.Generation,
			IsRoot:      r.IsRoot,
		})
	}

	summary.MostCommonTrait = toTraitViewModel(stats.MostCommonTrait)
	summary.RarestTrait = toTraitViewModel(stats.RarestTrait)

	return summary
}

// toGenerationViewModels orders the histogram numerically; keys that are not
// integers sort last, lexically.
func toGenerationViewModels(generations map[string]int) []vm.GenerationViewModel {
	keys := slices.SortedFunc(maps.Keys(generations), func(a, b string) int {
		na, errA := strconv.Atoi(a)
		nb, errB := strconv.Atoi(b)
		switch {
		case errA == nil && errB == nil:
			return cmp.Compare(na, nb)
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		default:
			return cmp.Compare(a, b)
		}
	})

	rows := make([]vm.GenerationViewModel, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, vm.GenerationViewModel{Generation: k, Count: generations[k]})
	}
	return rows
}

func toTraitViewModel(tc *model.TraitCount) *vm.TraitViewModel {
	if tc == nil {
		return nil
	}
	return &vm.TraitViewModel{Trait: tc.Trait, Value: tc.Value, Count: tc.Count}
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
