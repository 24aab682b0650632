// Package viewmodel defines presentation-ready structs for the summary page.
// View models decouple page rendering from the snapshot document types.
package viewmodel

// SummaryViewModel holds everything the summary page shows about the latest run.
type SummaryViewModel struct {
	HasRun bool

	RootRepo     string
	RunID        string
	FinishedAt   string
	ReposScanned int

	TotalMonkeys int
	ActiveToday  int
	AvgRarity    string
	MaxRarity    string
	MinRarity    string

	Generations     []GenerationViewModel
	TopRanked       []RankingViewModel
	MostCommonTrait *TraitViewModel
	RarestTrait     *TraitViewModel
}

// GenerationViewModel is one row of the generation histogram.
type GenerationViewModel struct {
	Generation string
	Count      int
}

// RankingViewModel is one leaderboard row.
type RankingViewModel struct {
	Rank        int
	FullName    string
	URL         string
	RarityScore string
	Generation  int
	IsRoot      bool
}

// TraitViewModel is a trait value with its number of occurrences.
type TraitViewModel struct {
	Trait string
	Value string
	Count int
}
