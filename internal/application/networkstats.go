package application

import (
	"cmp"
	"maps"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
)

// BuildNetworkStats aggregates the generation histogram, rarity extremes,
// same-day activity and trait frequencies across all records. An empty record
// set yields a well-formed snapshot of zeros.
func BuildNetworkStats(records []model.CreatureRecord, generatedAt time.Time) model.NetworkStats {
	stats := model.NetworkStats{
		LastUpdated:       formatTime(generatedAt),
		TotalMonkeys:      len(records),
		Generations:       map[string]int{},
		TraitDistribution: map[string]map[string]int{},
	}
	if len(records) == 0 {
		return stats
	}

	tally := make(map[model.TraitKey]int)
	var sum float64
	minRarity, maxRarity := math.Inf(1), math.Inf(-1)

	for _, r := range records {
		stats.Generations[strconv.Itoa(r.Stats.Generation)]++

		score := r.Stats.RarityScore
		sum += score
		minRarity = min(minRarity, score)
		maxRarity = max(maxRarity, score)

		if sameUTCDay(r.Repository.UpdatedAt, generatedAt) {
			stats.ActiveToday++
		}

		for name, raw := range r.Traits() {
			tally[model.TraitKey{Trait: name, Value: model.TraitLabel(raw)}]++
		}
	}

	stats.AvgRarity = round2(sum / float64(len(records)))
	stats.MaxRarity = round2(maxRarity)
	stats.MinRarity = round2(minRarity)
	stats.MostCommonTrait, stats.RarestTrait = traitExtremes(tally)

	for key, count := range tally {
		values, ok := stats.TraitDistribution[key.Trait]
		if !ok {
			values = map[string]int{}
			stats.TraitDistribution[key.Trait] = values
		}
		values[key.Value] = count
	}

	return stats
}

// traitExtremes returns the most and least frequent (trait, value) pairs.
// Ties on count resolve to the lexicographically smallest pair.
func traitExtremes(tally map[model.TraitKey]int) (mostCommon, rarest *model.TraitCount) {
	keys := slices.SortedFunc(maps.Keys(tally), func(a, b model.TraitKey) int {
		return cmp.Or(cmp.Compare(a.Trait, b.Trait), cmp.Compare(a.Value, b.Value))
	})

	for _, key := range keys {
		count := tally[key]
		if mostCommon == nil || count > mostCommon.Count {
			mostCommon = &model.TraitCount{Trait: key.Trait, Value: key.Value, Count: count}
		}
		if rarest == nil || count < rarest.Count {
			rarest = &model.TraitCount{Trait: key.Trait, Value: key.Value, Count: count}
		}
	}

	return mostCommon, rarest
}

// sameUTCDay reports whether t falls on the same UTC calendar day as ref.
// The zero time never does.
func sameUTCDay(t, ref time.Time) bool {
	if t.IsZero() {
		return false
	}
	y1, m1, d1 := t.UTC().Date()
	y2, m2, d2 := ref.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
