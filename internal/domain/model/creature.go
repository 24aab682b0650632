package model

import (
	"bytes"
	"encoding/json"
)

// Default values applied when a stats document omits a field or when stats are
// synthesized for a repository that only has an SVG or genetic record.
const (
	DefaultGeneration    = 1
	DefaultRarityScore   = 0.0
	DefaultMutationCount = 0
)

// CreatureStats is the normalized content of a repository's stats document.
// Known fields carry their defaults already; Extra keeps every other top-level
// key so the roster can re-emit the document as committed.
type CreatureStats struct {
	Generation    int
	RarityScore   float64
	AgeDays       int
	MutationCount int
	Traits        map[string]json.RawMessage
	Extra         map[string]json.RawMessage
}

// DefaultStats returns the stats synthesized for a creature without a stats document.
func DefaultStats(ageDays int) CreatureStats {
	return CreatureStats{
		Generation:    DefaultGeneration,
		RarityScore:   DefaultRarityScore,
		AgeDays:       ageDays,
		MutationCount: DefaultMutationCount,
	}
}

// MarshalJSON emits the known fields merged over the preserved extra keys.
func (s CreatureStats) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+5)
	for k, v := range s.Extra {
		out[k] = v
	}
	out["generation"] = s.Generation
	out["rarity_score"] = s.RarityScore
	out["age_days"] = s.AgeDays
	out["mutation_count"] = s.MutationCount
	if len(s.Traits) > 0 {
		out["traits"] = s.Traits
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// GeneticRecord is a repository's DNA document. Raw is the document as
// committed; Traits is its "traits" object when present.
type GeneticRecord struct {
	Raw    json.RawMessage
	Traits map[string]json.RawMessage
}

// MarshalJSON re-emits the raw document.
func (g GeneticRecord) MarshalJSON() ([]byte, error) {
	if len(g.Raw) == 0 {
		return []byte("null"), nil
	}
	return g.Raw, nil
}

// CreatureRecord is the unit of aggregation: one inhabited repository.
// Stats is always populated for records returned by extraction.
type CreatureRecord struct {
	Repository RepositoryRef
	IsRoot     bool
	Stats      CreatureStats
	SVG        string // Empty when the repository has no SVG.
	DNA        *GeneticRecord
}

// FullName returns the owning repository's full name.
func (r CreatureRecord) FullName() string {
	return r.Repository.FullName
}

// Traits returns the stats traits, falling back to the genetic record's traits
// when the stats carry none.
func (r CreatureRecord) Traits() map[string]json.RawMessage {
	if len(r.Stats.Traits) > 0 {
		return r.Stats.Traits
	}
	if r.DNA != nil {
		return r.DNA.Traits
	}
	return nil
}
