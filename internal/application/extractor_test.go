package application_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/forkmonkey/internal/application"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="400"><circle cx="200" cy="200" r="80" fill="#8B4513"/></svg>`

func newTestExtractor(client *fakeRepositoryClient) *application.Extractor {
	return application.NewExtractor(client, nil, fixedClock)
}

func TestExtract_AllDocuments(t *testing.T) {
	client := newFakeClient()
	client.addFile("root/m", application.StatsPath, `{"generation": 3, "rarity_score": 71.25, "age_days": 40, "mutation_count": 5, "traits": {"body_color": {"value": "golden", "rarity": "legendary"}}}`)
	client.addFile("root/m", application.SVGPath, testSVG)
	client.addFile("root/m", application.DNAPath, `{"dna_hash": "abc123", "traits": {"eyes": "laser"}}`)

	record := newTestExtractor(client).Extract(context.Background(), repoRef("root/m", ""), "root/m")

	require.NotNil(t, record)
	assert.True(t, record.IsRoot)
	assert.Equal(t, "root/m", record.FullName())
	assert.Equal(t, 3, record.Stats.Generation)
	assert.InDelta(t, 71.25, record.Stats.RarityScore, 1e-9)
	assert.Equal(t, 40, record.Stats.AgeDays)
	assert.Equal(t, 5, record.Stats.MutationCount)
	assert.Contains(t, record.Stats.Traits, "body_color")
	assert.Equal(t, testSVG, record.SVG)
	require.NotNil(t, record.DNA)
	assert.Contains(t, record.DNA.Traits, "eyes")
	assert.JSONEq(t, `{"dna_hash": "abc123", "traits": {"eyes": "laser"}}`, string(record.DNA.Raw))
}

func TestExtract_IsRootMatchesFullNameOnly(t *testing.T) {
	client := newFakeClient()
	client.addFile("alice/m", application.SVGPath, testSVG)

	record := newTestExtractor(client).Extract(context.Background(), repoRef("alice/m", "root/m"), "root/m")

	require.NotNil(t, record)
	assert.False(t, record.IsRoot)
}

func TestExtract_SVGOnlySynthesizesDefaultStats(t *testing.T) {
	client := newFakeClient()
	client.addFile("alice/m", application.SVGPath, testSVG)

	record := newTestExtractor(client).Extract(context.Background(), repoRef("alice/m", "root/m"), "root/m")

	require.NotNil(t, record)
	assert.Equal(t, 1, record.Stats.Generation)
	assert.Zero(t, record.Stats.RarityScore)
	assert.Equal(t, 10, record.Stats.AgeDays, "age is computed from the repository creation date")
	assert.Zero(t, record.Stats.MutationCount)
	assert.Nil(t, record.DNA)
}

func TestExtract_DNAOnlyIsNotACreature(t *testing.T) {
	client := newFakeClient()
	client.addFile("alice/m", application.DNAPath, `{"traits": {"eyes": "laser"}}`)

	record := newTestExtractor(client).Extract(context.Background(), repoRef("alice/m", "root/m"), "root/m")

	assert.Nil(t, record)
}

func TestExtract_NoDocuments(t *testing.T) {
	client := newFakeClient()

	record := newTestExtractor(client).Extract(context.Background(), repoRef("alice/m", "root/m"), "root/m")

	assert.Nil(t, record)
	assert.Equal(t, 3, client.fileCalls, "every document is attempted")
}

func TestExtract_MalformedStatsFallsBackToDefaults(t *testing.T) {
	client := newFakeClient()
	client.addFile("alice/m", application.StatsPath, `{"generation": 2,`)
	client.addFile("alice/m", application.SVGPath, testSVG)

	record := newTestExtractor(client).Extract(context.Background(), repoRef("alice/m", "root/m"), "root/m")

	require.NotNil(t, record)
	assert.Equal(t, 1, record.Stats.Generation)
	assert.Equal(t, 10, record.Stats.AgeDays)
	assert.Equal(t, testSVG, record.SVG)
}

func TestExtract_MalformedStatsWithoutSVG(t *testing.T) {
	client := newFakeClient()
	client.addFile("alice/m", application.StatsPath, `not json`)
	client.addFile("alice/m", application.DNAPath, `{"traits": {}}`)

	record := newTestExtractor(client).Extract(context.Background(), repoRef("alice/m", "root/m"), "root/m")

	assert.Nil(t, record)
}

func TestExtract_EmptyDocumentsCountAsAbsent(t *testing.T) {
	client := newFakeClient()
	client.addFile("alice/m", application.StatsPath, `{}`)
	client.addFile("alice/m", application.SVGPath, "  \n")

	record := newTestExtractor(client).Extract(context.Background(), repoRef("alice/m", "root/m"), "root/m")

	assert.Nil(t, record)
}

func TestExtract_PartialStatsAreDefaulted(t *testing.T) {
	client := newFakeClient()
	client.addFile("alice/m", application.StatsPath, `{"rarity_score": 12.5, "generation": "two"}`)

	record := newTestExtractor(client).Extract(context.Background(), repoRef("alice/m", "root/m"), "root/m")

	require.NotNil(t, record)
	assert.Equal(t, 1, record.Stats.Generation, "mistyped generation falls back to the default")
	assert.InDelta(t, 12.5, record.Stats.RarityScore, 1e-9)
	assert.Zero(t, record.Stats.AgeDays, "a stats document without age_days does not use the repository age")
	assert.Zero(t, record.Stats.MutationCount)
	assert.Empty(t, record.SVG)
}

func TestExtract_StatsKeepUnknownFields(t *testing.T) {
	client := newFakeClient()
	client.addFile("alice/m", application.StatsPath, `{"generation": 2, "name": "Bubbles", "dna_hash": "ff00"}`)

	record := newTestExtractor(client).Extract(context.Background(), repoRef("alice/m", "root/m"), "root/m")
	require.NotNil(t, record)

	encoded, err := json.Marshal(record.Stats)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"generation": 2,
		"rarity_score": 0,
		"age_days": 0,
		"mutation_count": 0,
		"name": "Bubbles",
		"dna_hash": "ff00"
	}`, string(encoded))
}

func TestExtract_OutOfRangeStatsAreDefaulted(t *testing.T) {
	tests := []struct {
		name          string
		stats         string
		wantGen       int
		wantAge       int
		wantMutations int
	}{
		{
			name:          "huge numbers",
			stats:         `{"generation": 1e20, "age_days": 1e20, "mutation_count": -1e20, "rarity_score": 3}`,
			wantGen:       1,
			wantAge:       0,
			wantMutations: 0,
		},
		{
			name:          "zero generation",
			stats:         `{"generation": 0, "rarity_score": 3}`,
			wantGen:       1,
		},
		{
			name:          "negative counts",
			stats:         `{"generation": -4, "age_days": -3, "mutation_count": -2, "rarity_score": 3}`,
			wantGen:       1,
			wantAge:       0,
			wantMutations: 0,
		},
		{
			name:          "in range",
			stats:         `{"generation": 7.9, "age_days": 12, "mutation_count": 3, "rarity_score": 3}`,
			wantGen:       7,
			wantAge:       12,
			wantMutations: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient()
			client.addFile("alice/m", application.StatsPath, tt.stats)

			record := newTestExtractor(client).Extract(context.Background(), repoRef("alice/m", "root/m"), "root/m")

			require.NotNil(t, record)
			assert.Equal(t, tt.wantGen, record.Stats.Generation)
			assert.Equal(t, tt.wantAge, record.Stats.AgeDays)
			assert.Equal(t, tt.wantMutations, record.Stats.MutationCount)
		})
	}
}

func TestExtract_StatsKeepUnusableTraits(t *testing.T) {
	tests := []struct {
		name   string
		traits string
	}{
		{name: "array", traits: `["x"]`},
		{name: "empty object", traits: `{}`},
		{name: "string", traits: `"spotted"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient()
			client.addFile("alice/m", application.StatsPath, `{"generation": 2, "traits": `+tt.traits+`}`)

			record := newTestExtractor(client).Extract(context.Background(), repoRef("alice/m", "root/m"), "root/m")
			require.NotNil(t, record)
			assert.Empty(t, record.Stats.Traits)

			encoded, err := json.Marshal(record.Stats)
			require.NoError(t, err)

			var doc map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(encoded, &doc))
			require.Contains(t, doc, "traits")
			assert.JSONEq(t, tt.traits, string(doc["traits"]))
		})
	}
}

func TestExtract_TransientFailureOnlyDropsThatDocument(t *testing.T) {
	client := newFakeClient()
	client.addFile("alice/m", application.StatsPath, `{"generation": 4, "rarity_score": 9}`)
	client.fileErrs["alice/m:"+application.SVGPath] = errUnavailable
	client.fileErrs["alice/m:"+application.DNAPath] = errUnavailable

	record := newTestExtractor(client).Extract(context.Background(), repoRef("alice/m", "root/m"), "root/m")

	require.NotNil(t, record)
	assert.Equal(t, 4, record.Stats.Generation)
	assert.Empty(t, record.SVG)
	assert.Nil(t, record.DNA)
}

func TestExtract_SanitizesSVG(t *testing.T) {
	client := newFakeClient()
	client.addFile("mallory/m", application.SVGPath,
		`<svg width="400" height="400" onload="steal()"><script>steal()</script><circle cx="1" cy="1" r="1" fill="red"/></svg>`)

	extractor := application.NewExtractor(client, application.NewSVGSanitizer(), fixedClock)
	record := extractor.Extract(context.Background(), repoRef("mallory/m", "root/m"), "root/m")

	require.NotNil(t, record)
	assert.Contains(t, record.SVG, "<svg")
	assert.Contains(t, record.SVG, "<circle")
	assert.NotContains(t, record.SVG, "script")
	assert.NotContains(t, record.SVG, "onload")
}

func TestExtract_CanceledContext(t *testing.T) {
	client := newFakeClient()
	client.addFile("alice/m", application.SVGPath, testSVG)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	record := newTestExtractor(client).Extract(ctx, repoRef("alice/m", "root/m"), "root/m")

	assert.Nil(t, record)
}
