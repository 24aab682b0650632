package model

// SnapshotKind names one of the four derived views produced per run.
type SnapshotKind string

const (
	SnapshotRoster      SnapshotKind = "roster"
	SnapshotLeaderboard SnapshotKind = "leaderboard"
	SnapshotGenealogy   SnapshotKind = "genealogy"
	SnapshotStatistics  SnapshotKind = "statistics"
)

// SnapshotKinds lists every kind in publication order.
var SnapshotKinds = []SnapshotKind{
	SnapshotRoster,
	SnapshotLeaderboard,
	SnapshotGenealogy,
	SnapshotStatistics,
}

// FileName returns the fixed file name the front end reads the kind from.
func (k SnapshotKind) FileName() string {
	switch k {
	case SnapshotRoster:
		return "community_data.json"
	case SnapshotLeaderboard:
		return "leaderboard.json"
	case SnapshotGenealogy:
		return "family_tree.json"
	case SnapshotStatistics:
		return "network_stats.json"
	default:
		return ""
	}
}

// Valid reports whether k is one of the known kinds.
func (k SnapshotKind) Valid() bool {
	return k.FileName() != ""
}

// SnapshotDocument is an encoded snapshot ready to be persisted.
type SnapshotDocument struct {
	Kind SnapshotKind
	Body []byte
}

// Roster is the flat list of every creature found in the network.
type Roster struct {
	LastUpdated string        `json:"last_updated"`
	SourceRepo  string        `json:"source_repo"`
	TotalForks  int           `json:"total_forks"`
	Forks       []RosterEntry `json:"forks"`
}

// RosterEntry is one creature record as published in the roster.
type RosterEntry struct {
	Owner     string         `json:"owner"`
	Repo      string         `json:"repo"`
	FullName  string         `json:"full_name"`
	URL       string         `json:"url"`
	IsRoot    bool           `json:"is_root"`
	Parent    *string        `json:"parent"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt *string        `json:"updated_at"`
	Stats     CreatureStats  `json:"monkey_stats"`
	SVG       *string        `json:"monkey_svg"`
	DNA       *GeneticRecord `json:"monkey_dna"`
}

// Leaderboard ranks creatures by rarity score.
type Leaderboard struct {
	LastUpdated string    `json:"last_updated"`
	TotalRanked int       `json:"total_ranked"`
	Rankings    []Ranking `json:"rankings"`
}

// Ranking is a leaderboard row with the fields needed to render it standalone.
type Ranking struct {
	Rank          int     `json:"rank"`
	Owner         string  `json:"owner"`
	Repo          string  `json:"repo"`
	FullName      string  `json:"full_name"`
	URL           string  `json:"url"`
	RarityScore   float64 `json:"rarity_score"`
	Generation    int     `json:"generation"`
	AgeDays       int     `json:"age_days"`
	MutationCount int     `json:"mutation_count"`
	IsRoot        bool    `json:"is_root"`
	SVG           *string `json:"monkey_svg"`
}

// Genealogy is the parent/children forest of the network.
type Genealogy struct {
	LastUpdated string          `json:"last_updated"`
	Root        string          `json:"root"`
	TotalNodes  int             `json:"total_nodes"`
	Nodes       []GenealogyNode `json:"nodes"`
}

// GenealogyNode is one creature in the genealogy. Parent may name a repository
// that has no node of its own.
type GenealogyNode struct {
	ID          string   `json:"id"`
	Owner       string   `json:"owner"`
	Repo        string   `json:"repo"`
	URL         string   `json:"url"`
	Parent      *string  `json:"parent"`
	Children    []string `json:"children"`
	IsRoot      bool     `json:"is_root"`
	RarityScore float64  `json:"rarity_score"`
	Generation  int      `json:"generation"`
	SVG         *string  `json:"monkey_svg"`
}

// NetworkStats holds aggregates across every creature in the network.
type NetworkStats struct {
	LastUpdated       string                    `json:"last_updated"`
	TotalMonkeys      int                       `json:"total_monkeys"`
	ActiveToday       int                       `json:"active_today"`
	Generations       map[string]int            `json:"generations"`
	AvgRarity         float64                   `json:"avg_rarity"`
	MaxRarity         float64                   `json:"max_rarity"`
	MinRarity         float64                   `json:"min_rarity"`
	RarestTrait       *TraitCount               `json:"rarest_trait"`
	MostCommonTrait   *TraitCount               `json:"most_common_trait"`
	TraitDistribution map[string]map[string]int `json:"trait_distribution"`
}

// TraitCount is a (trait, value) pair with its number of occurrences.
type TraitCount struct {
	Trait string `json:"trait"`
	Value string `json:"value"`
	Count int    `json:"count"`
}
