package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/canonmap/pkg/catalog"
	"github.com/agentstation/canonmap/pkg/reconcile"
	"github.com/agentstation/canonmap/pkg/schema"
)

func mustGenerator(t *testing.T, opts ...Option) *Generator {
	t.Helper()
	g, err := New(opts...)
	require.NoError(t, err)
	return g
}

func baseSnapshot() *schema.TenantSchemaSnapshot {
	return &schema.TenantSchemaSnapshot{
		TenantID:     "acme",
		DiscoveredAt: time.Now().UTC(),
		EntityTypes:  map[string]schema.EntityType{},
	}
}

func TestGenerateScoresCustomMetadata(t *testing.T) {
	snap := baseSnapshot()
	snap.CustomMetadata = map[string]schema.CustomMetadataSet{
		"Governance": {
			Name: "Governance",
			Attributes: []schema.CustomMetadataAttribute{
				{
					Name:        "dataOwner",
					DisplayName: "Data Owner",
					Description: "Person accountable for this asset",
					Type:        schema.TypeString,
				},
			},
		},
	}

	g := mustGenerator(t)
	report, err := g.Generate(context.Background(), snap, nil)
	require.NoError(t, err)
	require.Len(t, report.Recommendations, 1)

	r := report.Recommendations[0]
	assert.Equal(t, "custom_metadata/Governance.dataOwner", r.Path)
	assert.Equal(t, SourceCustomMetadata, r.SourceType)
	assert.Equal(t, catalog.SignalOwnership, r.Signal)
	// base 0.5 + name 0.2 + display 0.15 + description 0.1 = 0.95
	assert.InDelta(t, 0.95, r.Confidence, 1e-9)
	assert.Equal(t, 1, report.BySignal[catalog.SignalOwnership])
	assert.Equal(t, 1, report.ByConfidence[BucketHigh])
}

func TestGenerateScoresClassification(t *testing.T) {
	snap := baseSnapshot()
	snap.Classifications = []schema.Classification{
		{Name: "PII", Description: "Personally identifiable information"},
	}

	g := mustGenerator(t)
	report, err := g.Generate(context.Background(), snap, nil)
	require.NoError(t, err)
	require.Len(t, report.Recommendations, 1)

	r := report.Recommendations[0]
	assert.Equal(t, "classification/PII", r.Path)
	assert.Equal(t, catalog.SignalSensitivity, r.Signal)
	// base 0.4 + name 0.2 (description mentions "identifiable", not a
	// sensitivity keyword on its own, but "Personally identifiable
	// information" contains no pattern term; only the name matches)
	assert.InDelta(t, 0.6, r.Confidence, 1e-9)
}

func TestGenerateScoresHighPopulationAttribute(t *testing.T) {
	snap := baseSnapshot()
	snap.EntityTypes = map[string]schema.EntityType{
		"Table": {Name: "Table", Attributes: []string{"certificateStatus", "name"}},
	}
	snap.Population = []schema.PopulationStat{
		{AssetType: "Table", Attribute: "certificateStatus", TotalAssets: 100, PopulatedAssets: 80, Rate: 0.8},
		{AssetType: "Table", Attribute: "name", TotalAssets: 100, PopulatedAssets: 100, Rate: 1.0},
	}

	g := mustGenerator(t)
	report, err := g.Generate(context.Background(), snap, nil)
	require.NoError(t, err)
	require.Len(t, report.Recommendations, 1)

	r := report.Recommendations[0]
	assert.Equal(t, "attribute/certificateStatus", r.Path)
	assert.Equal(t, catalog.SignalTrust, r.Signal)
	// base 0.6 + name 0.2 + population 0.15 = 0.95
	assert.InDelta(t, 0.95, r.Confidence, 1e-9)
	require.NotNil(t, r.PopulationRate)
	assert.InDelta(t, 0.8, *r.PopulationRate, 1e-9)
}

func TestGenerateSkipsLowPopulationAttributes(t *testing.T) {
	snap := baseSnapshot()
	snap.EntityTypes = map[string]schema.EntityType{
		"Table": {Name: "Table", Attributes: []string{"ownerUsers"}},
	}
	snap.Population = []schema.PopulationStat{
		{AssetType: "Table", Attribute: "ownerUsers", TotalAssets: 100, PopulatedAssets: 10, Rate: 0.1},
	}

	g := mustGenerator(t)
	report, err := g.Generate(context.Background(), snap, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Recommendations)
}

func TestGenerateClassificationUsageBonus(t *testing.T) {
	snap := baseSnapshot()
	snap.Classifications = []schema.Classification{
		{Name: "Confidential", UsageCount: 0},
		{Name: "PII", UsageCount: 90},
	}

	g := mustGenerator(t)
	report, err := g.Generate(context.Background(), snap, nil)
	require.NoError(t, err)
	require.Len(t, report.Recommendations, 2)

	// The heavily applied classification carries the population bonus and
	// outranks the unused one: 0.4 + name 0.2 + usage 0.15 vs 0.4 + name 0.2.
	first := report.Recommendations[0]
	assert.Equal(t, "classification/PII", first.Path)
	assert.InDelta(t, 0.75, first.Confidence, 1e-9)
	require.NotNil(t, first.PopulationRate)
	assert.InDelta(t, 1.0, *first.PopulationRate, 1e-9)

	second := report.Recommendations[1]
	assert.Equal(t, "classification/Confidential", second.Path)
	assert.InDelta(t, 0.6, second.Confidence, 1e-9)
	assert.Nil(t, second.PopulationRate)
}

func TestGenerateFirstPatternWins(t *testing.T) {
	snap := baseSnapshot()
	// "piiOwner" matches both sensitivity and ownership; the sensitivity row
	// is earlier in the table and must win.
	snap.Classifications = []schema.Classification{{Name: "piiOwner"}}

	g := mustGenerator(t)
	report, err := g.Generate(context.Background(), snap, nil)
	require.NoError(t, err)
	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, catalog.SignalSensitivity, report.Recommendations[0].Signal)
}

func TestGenerateSkipsMappedPaths(t *testing.T) {
	snap := baseSnapshot()
	snap.Classifications = []schema.Classification{{Name: "PII"}}

	rec := &reconcile.Report{
		Results: []reconcile.Result{
			{
				FieldID: "sensitivity_tags",
				Status:  reconcile.StatusClassification,
				Match: &reconcile.Match{
					Kind: catalog.SourceClassification,
					Path: "PII",
				},
			},
		},
	}

	g := mustGenerator(t)
	report, err := g.Generate(context.Background(), snap, rec)
	require.NoError(t, err)
	assert.Empty(t, report.Recommendations)
}

func TestGenerateSortsByConfidenceThenPopulation(t *testing.T) {
	snap := baseSnapshot()
	snap.CustomMetadata = map[string]schema.CustomMetadataSet{
		"Ops": {
			Name: "Ops",
			Attributes: []schema.CustomMetadataAttribute{
				{Name: "refreshSla", Type: schema.TypeString}, // freshness, 0.5+0.2
			},
		},
	}
	snap.Classifications = []schema.Classification{
		{Name: "Confidential"}, // sensitivity, 0.4+0.2
	}
	snap.EntityTypes = map[string]schema.EntityType{
		"Table": {Name: "Table", Attributes: []string{"ownerUsers"}},
	}
	snap.Population = []schema.PopulationStat{
		{AssetType: "Table", Attribute: "ownerUsers", TotalAssets: 10, PopulatedAssets: 9, Rate: 0.9},
	}

	g := mustGenerator(t)
	report, err := g.Generate(context.Background(), snap, nil)
	require.NoError(t, err)
	require.Len(t, report.Recommendations, 3)

	// attribute: 0.6+0.2+0.15 = 0.95 > custom metadata 0.7 > classification 0.6
	assert.Equal(t, "attribute/ownerUsers", report.Recommendations[0].Path)
	assert.Equal(t, "custom_metadata/Ops.refreshSla", report.Recommendations[1].Path)
	assert.Equal(t, "classification/Confidential", report.Recommendations[2].Path)
}

func TestImprovementSuggestionsThreeStructural(t *testing.T) {
	snap := baseSnapshot() // no custom metadata, classifications, or domains

	g := mustGenerator(t)
	suggestions := g.ImprovementSuggestions(snap, &reconcile.Report{})

	require.Len(t, suggestions, 3)
	for _, s := range suggestions {
		assert.Equal(t, PriorityHigh, s.Priority)
	}
}

func TestImprovementSuggestionsBucketsUnmatchedBySignal(t *testing.T) {
	snap := baseSnapshot()
	snap.Domains = []schema.Domain{{GUID: "d1", Name: "Finance"}}
	snap.Classifications = []schema.Classification{{Name: "PII"}}
	snap.CustomMetadata = map[string]schema.CustomMetadataSet{"X": {Name: "X"}}

	rec := &reconcile.Report{
		Results: []reconcile.Result{
			{FieldID: "owner_users", FieldName: "Owner Users", Status: reconcile.StatusNotFound},
			{FieldID: "owner_groups", FieldName: "Owner Groups", Status: reconcile.StatusNotFound},
			{FieldID: "freshness_sla", FieldName: "Freshness SLA", Status: reconcile.StatusNotFound},
			{FieldID: "description", FieldName: "Description", Status: reconcile.StatusMatched},
		},
	}

	g := mustGenerator(t)
	suggestions := g.ImprovementSuggestions(snap, rec)
	require.Len(t, suggestions, 2)

	bySignal := make(map[catalog.Signal]ImprovementSuggestion)
	for _, s := range suggestions {
		bySignal[s.Signal] = s
	}

	ownership := bySignal[catalog.SignalOwnership]
	assert.Equal(t, PriorityHigh, ownership.Priority)
	assert.Equal(t, []string{"owner_groups", "owner_users"}, ownership.FieldIDs)

	freshness := bySignal[catalog.SignalFreshness]
	assert.Equal(t, PriorityLow, freshness.Priority)
	assert.Equal(t, []string{"freshness_sla"}, freshness.FieldIDs)
}
