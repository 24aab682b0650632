package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
	"github.com/ericfisherdev/forkmonkey/internal/domain/port/driven"
)

// Well-known paths of the creature documents inside each repository.
const (
	StatsPath = "monkey_data/stats.json"
	SVGPath   = "monkey_data/monkey.svg"
	DNAPath   = "monkey_data/dna.json"
)

var (
	errEmptyDocument = errors.New("empty document")
	errUnsafeSVG     = errors.New("svg empty after sanitizing")
)

// Extractor reads the creature documents of a single repository and
// normalizes them into a CreatureRecord.
type Extractor struct {
	client    driven.RepositoryClient
	sanitizer *SVGSanitizer
	now       func() time.Time
}

// NewExtractor creates an Extractor. A nil sanitizer publishes SVG unchanged;
// a nil clock uses time.Now.
func NewExtractor(client driven.RepositoryClient, sanitizer *SVGSanitizer, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{
		client:    client,
		sanitizer: sanitizer,
		now:       now,
	}
}

// Extract returns the repository's creature, or nil when the repository holds
// neither a stats document nor an SVG. The three documents are fetched
// independently and any failure only marks that document absent. When stats
// are absent they are synthesized from defaults and the repository age.
func (e *Extractor) Extract(ctx context.Context, repo model.RepositoryRef, rootFullName string) *model.CreatureRecord {
	stats, err := e.fetchStats(ctx, repo.FullName)
	logAbsent(repo.FullName, StatsPath, err)

	svg, err := e.fetchSVG(ctx, repo.FullName)
	logAbsent(repo.FullName, SVGPath, err)

	dna, err := e.fetchDNA(ctx, repo.FullName)
	logAbsent(repo.FullName, DNAPath, err)

	if err := ctx.Err(); err != nil {
		slog.Error("repository scan aborted", "repo", repo.FullName, "error", err)
		return nil
	}

	if stats == nil && svg == "" {
		return nil
	}

	record := &model.CreatureRecord{
		Repository: repo,
		IsRoot:     repo.FullName == rootFullName,
		SVG:        svg,
		DNA:        dna,
	}
	if stats != nil {
		record.Stats = *stats
	} else {
		record.Stats = model.DefaultStats(repo.AgeDays(e.now()))
	}

	return record
}

func (e *Extractor) fetchStats(ctx context.Context, fullName string) (*model.CreatureStats, error) {
	data, err := e.client.GetFile(ctx, fullName, StatsPath)
	if err != nil {
		return nil, err
	}
	return parseStats(data)
}

func (e *Extractor) fetchSVG(ctx context.Context, fullName string) (string, error) {
	data, err := e.client.GetFile(ctx, fullName, SVGPath)
	if err != nil {
		return "", err
	}

	svg := string(data)
	if strings.TrimSpace(svg) == "" {
		return "", errEmptyDocument
	}

	if e.sanitizer != nil {
		svg = e.sanitizer.Sanitize(svg)
		if strings.TrimSpace(svg) == "" {
			return "", errUnsafeSVG
		}
	}

	return svg, nil
}

func (e *Extractor) fetchDNA(ctx context.Context, fullName string) (*model.GeneticRecord, error) {
	data, err := e.client.GetFile(ctx, fullName, DNAPath)
	if err != nil {
		return nil, err
	}
	return parseGeneticRecord(data)
}

// logAbsent records why a document was treated as absent. Missing files are
// the common case and only logged at debug level.
func logAbsent(fullName, path string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, driven.ErrFileNotFound):
		slog.Debug("document not found", "repo", fullName, "path", path)
	default:
		slog.Warn("document unavailable", "repo", fullName, "path", path, "error", err)
	}
}

// parseStats decodes a stats document. Each known field is defaulted on its
// own when missing or mistyped; unknown fields are kept in Extra.
func parseStats(data []byte) (*model.CreatureStats, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding stats: %w", err)
	}
	if len(doc) == 0 {
		return nil, errEmptyDocument
	}

	stats := model.CreatureStats{
		Generation:    model.DefaultGeneration,
		RarityScore:   model.DefaultRarityScore,
		MutationCount: model.DefaultMutationCount,
	}

	take := func(key string) json.RawMessage {
		raw := doc[key]
		delete(doc, key)
		return raw
	}

	if n, ok := decodeInt(take("generation")); ok && n >= 1 {
		stats.Generation = n
	}
	if f, ok := decodeFloat(take("rarity_score")); ok {
		stats.RarityScore = f
	}
	if n, ok := decodeInt(take("age_days")); ok {
		stats.AgeDays = max(n, 0)
	}
	if n, ok := decodeInt(take("mutation_count")); ok {
		stats.MutationCount = max(n, 0)
	}
	// Traits that are not a non-empty object stay in the document as committed.
	if raw, ok := doc["traits"]; ok {
		if stats.Traits = decodeTraits(raw); stats.Traits != nil {
			delete(doc, "traits")
		}
	}

	if len(doc) > 0 {
		stats.Extra = doc
	}

	return &stats, nil
}

// parseGeneticRecord decodes a DNA document, keeping it verbatim alongside its
// traits object.
func parseGeneticRecord(data []byte) (*model.GeneticRecord, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding dna: %w", err)
	}
	if len(doc) == 0 {
		return nil, errEmptyDocument
	}

	raw := make(json.RawMessage, len(data))
	copy(raw, data)

	return &model.GeneticRecord{
		Raw:    raw,
		Traits: decodeTraits(doc["traits"]),
	}, nil
}

func decodeFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f *float64
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return 0, false
	}
	if math.IsNaN(*f) || math.IsInf(*f, 0) {
		return 0, false
	}
	return *f, true
}

// decodeInt truncates a JSON number; values outside the int32 range are
// rejected.
func decodeInt(raw json.RawMessage) (int, bool) {
	f, ok := decodeFloat(raw)
	if !ok {
		return 0, false
	}
	f = math.Trunc(f)
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func decodeTraits(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var traits map[string]json.RawMessage
	if err := json.Unmarshal(raw, &traits); err != nil || len(traits) == 0 {
		return nil
	}
	return traits
}
