package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/canonmap/pkg/catalog"
	"github.com/agentstation/canonmap/pkg/schema"
)

func attributeField(id, displayName string, aliases ...string) catalog.Field {
	return catalog.Field{
		ID:          id,
		DisplayName: displayName,
		Category:    catalog.CategoryOwnership,
		Aliases:     aliases,
		Source:      catalog.FieldSource{Kind: catalog.SourceAttribute, Attribute: camelCase(id)},
		Lifecycle:   catalog.LifecycleActive,
	}
}

func testSnapshot(attributes ...string) *schema.TenantSchemaSnapshot {
	return &schema.TenantSchemaSnapshot{
		TenantID:     "acme",
		DiscoveredAt: time.Now().UTC(),
		EntityTypes: map[string]schema.EntityType{
			"Table": {Name: "Table", Attributes: attributes},
		},
	}
}

func mustReconciler(t *testing.T, fields []catalog.Field, opts ...Option) *Reconciler {
	t.Helper()
	cat, err := catalog.New(fields...)
	require.NoError(t, err)
	r, err := New(cat, opts...)
	require.NoError(t, err)
	return r
}

func TestFieldExactAttributeMatch(t *testing.T) {
	f := attributeField("owner_users", "Owner Users", "adminUsers")
	r := mustReconciler(t, []catalog.Field{f})

	result := r.Field(f, testSnapshot("ownerUsers", "name"))
	assert.Equal(t, StatusMatched, result.Status)
	require.NotNil(t, result.Match)
	assert.Equal(t, "ownerUsers", result.Match.Path)
	assert.Equal(t, 1.0, result.Match.Confidence)
}

func TestFieldAliasMatch(t *testing.T) {
	f := attributeField("owner_users", "Owner Users", "adminUsers")
	r := mustReconciler(t, []catalog.Field{f})

	result := r.Field(f, testSnapshot("adminUsers"))
	assert.Equal(t, StatusAliasMatched, result.Status)
	require.NotNil(t, result.Match)
	assert.Equal(t, "adminUsers", result.Match.Path)
	assert.Equal(t, 0.9, result.Match.Confidence)
}

func TestFieldNotFoundEmitsOrderedSuggestions(t *testing.T) {
	f := attributeField("data_steward", "Data Steward")
	r := mustReconciler(t, []catalog.Field{f})

	result := r.Field(f, testSnapshot("name", "dataStewardEmail"))
	assert.Equal(t, StatusNotFound, result.Status)
	assert.Nil(t, result.Match)
	require.NotEmpty(t, result.Suggestions)

	first := result.Suggestions[0]
	assert.Equal(t, ActionCreateCustomMetadata, first.Action)
	require.NotNil(t, first.Template)
	assert.Equal(t, "dataSteward", first.Template.Attribute)

	last := result.Suggestions[len(result.Suggestions)-1]
	assert.Equal(t, ActionSkip, last.Action)

	var mapped *Suggestion
	for i := range result.Suggestions {
		if result.Suggestions[i].Action == ActionMapExistingAttribute {
			mapped = &result.Suggestions[i]
		}
	}
	require.NotNil(t, mapped)
	assert.Contains(t, mapped.Target, "dataStewardEmail")
}

func TestSuggestClassificationOnlyWhenTenantHasAny(t *testing.T) {
	f := catalog.Field{
		ID:          "pii_flag",
		DisplayName: "PII Flag",
		Category:    catalog.CategorySensitivity,
		Source:      catalog.FieldSource{Kind: catalog.SourceAttribute, Attribute: "piiFlag"},
		Lifecycle:   catalog.LifecycleActive,
	}
	r := mustReconciler(t, []catalog.Field{f})

	hasAction := func(suggestions []Suggestion, action SuggestionAction) bool {
		for _, s := range suggestions {
			if s.Action == action {
				return true
			}
		}
		return false
	}

	// Without classifications the suggestion would be unactionable.
	bare := r.Field(f, testSnapshot("name"))
	require.Equal(t, StatusNotFound, bare.Status)
	assert.False(t, hasAction(bare.Suggestions, ActionUseClassification))

	tagged := testSnapshot("name")
	tagged.Classifications = []schema.Classification{{Name: "Restricted"}}
	result := r.Field(f, tagged)
	require.Equal(t, StatusNotFound, result.Status)
	assert.True(t, hasAction(result.Suggestions, ActionUseClassification))
}

func TestFieldTwoStrongMatchesForceAmbiguous(t *testing.T) {
	f := catalog.Field{
		ID:          "sensitivity_tags",
		DisplayName: "Sensitivity Tags",
		Category:    catalog.CategorySensitivity,
		Aliases:     []string{"sensitivityTags"},
		Source: catalog.FieldSource{
			Kind:           catalog.SourceClassification,
			Classification: &catalog.ClassificationRef{Pattern: `(?i)pii`},
		},
		Lifecycle: catalog.LifecycleActive,
	}
	r := mustReconciler(t, []catalog.Field{f})

	snap := testSnapshot("sensitivityTags")
	snap.Classifications = []schema.Classification{{Name: "PII"}}

	result := r.Field(f, snap)
	assert.Equal(t, StatusAmbiguous, result.Status)
	require.NotNil(t, result.Match)
	assert.Len(t, result.Alternatives, 1)
	assert.GreaterOrEqual(t, result.Match.Confidence, 0.8)
	assert.GreaterOrEqual(t, result.Alternatives[0].Confidence, 0.8)
}

func TestFieldCustomMetadataExactMatch(t *testing.T) {
	f := catalog.Field{
		ID:          "data_quality_score",
		DisplayName: "Data Quality Score",
		Category:    catalog.CategoryQuality,
		Source: catalog.FieldSource{
			Kind:           catalog.SourceCustomMetadata,
			CustomMetadata: &catalog.CustomMetadataRef{Set: "Data Quality", Attribute: "qualityScore"},
		},
		Lifecycle: catalog.LifecycleActive,
	}
	r := mustReconciler(t, []catalog.Field{f})

	snap := testSnapshot("name")
	snap.CustomMetadata = map[string]schema.CustomMetadataSet{
		"Data Quality": {
			Name:        "xJq9",
			DisplayName: "Data Quality",
			Attributes:  []schema.CustomMetadataAttribute{{Name: "qualityScore", Type: schema.TypeNumber}},
		},
	}

	result := r.Field(f, snap)
	assert.Equal(t, StatusCMMatched, result.Status)
	require.NotNil(t, result.Match)
	assert.Equal(t, "Data Quality.qualityScore", result.Match.Path)
}

func TestFieldCustomMetadataFuzzySuggestion(t *testing.T) {
	f := attributeField("certification_notes", "Certification Notes")
	r := mustReconciler(t, []catalog.Field{f})

	snap := testSnapshot("name")
	snap.CustomMetadata = map[string]schema.CustomMetadataSet{
		"Governance": {
			Name: "Governance",
			Attributes: []schema.CustomMetadataAttribute{
				{Name: "certificationNotesInternal", Type: schema.TypeString},
			},
		},
	}

	result := r.Field(f, snap)
	assert.Equal(t, StatusCMSuggested, result.Status)
	require.NotNil(t, result.Match)
	assert.Equal(t, 0.7, result.Match.Confidence)
}

func TestFieldClassificationEnumerationMatch(t *testing.T) {
	f := catalog.Field{
		ID:          "compliance_tags",
		DisplayName: "Compliance Tags",
		Category:    catalog.CategorySensitivity,
		Source: catalog.FieldSource{
			Kind:           catalog.SourceClassification,
			Classification: &catalog.ClassificationRef{Names: []string{"GDPR", "HIPAA"}},
		},
		Lifecycle: catalog.LifecycleActive,
	}
	r := mustReconciler(t, []catalog.Field{f})

	snap := testSnapshot()
	snap.Classifications = []schema.Classification{{Name: "HIPAA"}}

	result := r.Field(f, snap)
	assert.Equal(t, StatusClassification, result.Status)
	require.NotNil(t, result.Match)
	assert.Equal(t, "HIPAA", result.Match.Path)
	assert.Equal(t, 1.0, result.Match.Confidence)
}

func TestFieldRelationshipMatch(t *testing.T) {
	f := catalog.Field{
		ID:          "term_guids",
		DisplayName: "Glossary Terms",
		Category:    catalog.CategoryGovernance,
		Source:      catalog.FieldSource{Kind: catalog.SourceRelationship, Relationship: "meanings"},
		Lifecycle:   catalog.LifecycleActive,
	}
	r := mustReconciler(t, []catalog.Field{f})

	snap := testSnapshot()
	snap.EntityTypes["Table"] = schema.EntityType{
		Name:                   "Table",
		RelationshipAttributes: []string{"meanings"},
	}

	result := r.Field(f, snap)
	assert.Equal(t, StatusMatched, result.Status)
	require.NotNil(t, result.Match)
	assert.Equal(t, catalog.SourceRelationship, result.Match.Kind)
	assert.Equal(t, "meanings", result.Match.Path)
}

func TestFieldExcluded(t *testing.T) {
	f := attributeField("owner_users", "Owner Users")
	r := mustReconciler(t, []catalog.Field{f}, WithExcludedFields("owner_users"))

	result := r.Field(f, testSnapshot("ownerUsers"))
	assert.Equal(t, StatusExcluded, result.Status)
	assert.Nil(t, result.Match)
}

func TestFieldExactOnlyDropsAliasCandidates(t *testing.T) {
	f := attributeField("owner_users", "Owner Users", "adminUsers")
	r := mustReconciler(t, []catalog.Field{f}, WithExactOnly(true))

	result := r.Field(f, testSnapshot("adminUsers"))
	assert.Equal(t, StatusNotFound, result.Status)
}

func TestAllProducesOneResultPerField(t *testing.T) {
	fields := []catalog.Field{
		attributeField("owner_users", "Owner Users", "adminUsers"),
		attributeField("description", "Description"),
		attributeField("data_steward", "Data Steward"),
	}
	r := mustReconciler(t, fields)

	report, err := r.All(context.Background(), testSnapshot("ownerUsers", "description"))
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	seen := make(map[string]bool)
	valid := map[Status]bool{
		StatusMatched: true, StatusAliasMatched: true, StatusCMMatched: true,
		StatusCMSuggested: true, StatusClassification: true, StatusNotFound: true,
		StatusAmbiguous: true, StatusExcluded: true,
	}
	for _, res := range report.Results {
		assert.False(t, seen[res.FieldID], "duplicate result for %s", res.FieldID)
		seen[res.FieldID] = true
		assert.True(t, valid[res.Status], "unexpected status %s", res.Status)
	}
}

func TestAllScore(t *testing.T) {
	fields := make([]catalog.Field, 0, 10)
	attrs := make([]string, 0, 8)

	// 6 exact matches, 2 alias matches, 2 not found.
	exact := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta"}
	for _, id := range exact {
		fields = append(fields, attributeField(id, id))
		attrs = append(attrs, id)
	}
	fields = append(fields,
		attributeField("owner_users", "Owner Users", "adminUsers"),
		attributeField("owner_groups", "Owner Groups", "adminGroups"),
		attributeField("missing_one", "Missing One"),
		attributeField("missing_two", "Missing Two"),
	)
	attrs = append(attrs, "adminUsers", "adminGroups")

	r := mustReconciler(t, fields)
	report, err := r.All(context.Background(), testSnapshot(attrs...))
	require.NoError(t, err)

	assert.Equal(t, 6, report.Summary.Matched)
	assert.Equal(t, 2, report.Summary.AliasMatched)
	assert.Equal(t, 2, report.Summary.NotFound)
	assert.Equal(t, 10, report.Summary.Total)
	assert.InDelta(t, 0.8, report.Score, 1e-9)
}

func TestAllLifecycleFiltering(t *testing.T) {
	fields := []catalog.Field{
		attributeField("active_field", "Active Field"),
		{
			ID: "experimental_field", DisplayName: "Experimental Field",
			Category:  catalog.CategoryUsage,
			Source:    catalog.FieldSource{Kind: catalog.SourceAttribute, Attribute: "x"},
			Lifecycle: catalog.LifecycleExperimental,
		},
		{
			ID: "deprecated_field", DisplayName: "Deprecated Field",
			Category:  catalog.CategoryUsage,
			Source:    catalog.FieldSource{Kind: catalog.SourceAttribute, Attribute: "y"},
			Lifecycle: catalog.LifecycleDeprecated,
		},
	}

	r := mustReconciler(t, fields)
	report, err := r.All(context.Background(), testSnapshot("activeField"))
	require.NoError(t, err)
	assert.Len(t, report.Results, 2) // experimental excluded by default

	r = mustReconciler(t, fields, WithExperimental(true), WithSkipDeprecated(true))
	report, err = r.All(context.Background(), testSnapshot("activeField"))
	require.NoError(t, err)
	assert.Len(t, report.Results, 2) // experimental in, deprecated out
}

func TestAllIsDeterministic(t *testing.T) {
	fields := []catalog.Field{
		attributeField("owner_users", "Owner Users", "adminUsers"),
		attributeField("description", "Description"),
	}
	r := mustReconciler(t, fields)
	snap := testSnapshot("ownerUsers", "description")

	first, err := r.All(context.Background(), snap)
	require.NoError(t, err)
	second, err := r.All(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Score, second.Score)
}

func TestAssetTypeScoping(t *testing.T) {
	f := attributeField("row_count", "Row Count")
	r := mustReconciler(t, []catalog.Field{f}, WithAssetTypes("View"))

	snap := &schema.TenantSchemaSnapshot{
		TenantID: "acme",
		EntityTypes: map[string]schema.EntityType{
			"Table": {Name: "Table", Attributes: []string{"rowCount"}},
			"View":  {Name: "View", Attributes: []string{"name"}},
		},
	}

	result := r.Field(f, snap)
	assert.Equal(t, StatusNotFound, result.Status)
}
