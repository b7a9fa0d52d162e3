package tenantconfig

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/canonmap/pkg/catalog"
	"github.com/agentstation/canonmap/pkg/errors"
	"github.com/agentstation/canonmap/pkg/reconcile"
)

func matchedResult(fieldID, path string) reconcile.Result {
	return reconcile.Result{
		FieldID: fieldID,
		Status:  reconcile.StatusMatched,
		Match: &reconcile.Match{
			Kind:       catalog.SourceAttribute,
			Path:       path,
			Confidence: 1.0,
		},
	}
}

func testReport(results ...reconcile.Result) *reconcile.Report {
	return &reconcile.Report{
		TenantID:     "acme",
		ReconciledAt: time.Now().UTC(),
		Results:      results,
	}
}

func TestNewFromReportSeedsMappings(t *testing.T) {
	report := testReport(
		matchedResult("owner_users", "ownerUsers"),
		reconcile.Result{
			FieldID: "data_quality_score",
			Status:  reconcile.StatusCMSuggested,
			Match: &reconcile.Match{
				Kind:       catalog.SourceCustomMetadata,
				Path:       "Data Quality.qualityScore",
				Confidence: 0.7,
			},
		},
		reconcile.Result{FieldID: "freshness_sla", Status: reconcile.StatusNotFound},
		reconcile.Result{FieldID: "view_score", Status: reconcile.StatusExcluded},
	)

	cfg := NewFromReport("acme", "https://acme.example.com", report)

	assert.Equal(t, "acme", cfg.TenantID)
	assert.Equal(t, 1, cfg.Version)
	require.Len(t, cfg.Mappings, 2)

	owner, ok := cfg.Mapping("owner_users")
	require.True(t, ok)
	assert.Equal(t, StatusAuto, owner.Status)
	assert.Equal(t, "ownerUsers", owner.Source.Path)

	quality, ok := cfg.Mapping("data_quality_score")
	require.True(t, ok)
	assert.Equal(t, StatusPending, quality.Status)

	_, ok = cfg.Mapping("freshness_sla")
	assert.False(t, ok)
	assert.True(t, cfg.IsExcluded("view_score"))
	require.NotNil(t, cfg.LastReconciledAt)
}

func TestMutatorsArePure(t *testing.T) {
	cfg := NewFromReport("acme", "https://acme.example.com",
		testReport(matchedResult("owner_users", "ownerUsers")))

	confirmed, err := cfg.Confirm("owner_users", "reviewer@acme.com")
	require.NoError(t, err)

	// Input untouched.
	original, _ := cfg.Mapping("owner_users")
	assert.Equal(t, StatusAuto, original.Status)
	assert.Equal(t, 1, cfg.Version)

	updated, _ := confirmed.Mapping("owner_users")
	assert.Equal(t, StatusConfirmed, updated.Status)
	assert.Equal(t, "reviewer@acme.com", updated.ConfirmedBy)
	require.NotNil(t, updated.ConfirmedAt)
	assert.Equal(t, 2, confirmed.Version)
}

func TestVersionIncrementsOnEveryMutation(t *testing.T) {
	cfg := NewFromReport("acme", "https://acme.example.com",
		testReport(matchedResult("owner_users", "ownerUsers")))

	var err error
	cfg, err = cfg.Confirm("owner_users", "reviewer")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Version)

	cfg, err = cfg.AddCustomField(CustomField{
		ID:          "finance_code",
		DisplayName: "Finance Code",
		Source:      TenantSource{Kind: catalog.SourceAttribute, Path: "financeCode"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Version)

	cfg, err = cfg.AddClassificationMapping(ClassificationMapping{
		Classification: "PII",
		Signal:         catalog.SignalSensitivity,
		Weight:         0.9,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Version)

	cfg, err = cfg.Exclude("view_score")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Version)

	cfg, err = cfg.Include("view_score")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Version)
}

func TestConfirmUnknownFieldFails(t *testing.T) {
	cfg := NewFromReport("acme", "https://acme.example.com", testReport())

	_, err := cfg.Confirm("nope", "reviewer")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestOverrideCreatesOrReplaces(t *testing.T) {
	cfg := NewFromReport("acme", "https://acme.example.com",
		testReport(matchedResult("owner_users", "ownerUsers")))

	cfg, err := cfg.Override("owner_users",
		TenantSource{Kind: catalog.SourceAttribute, Path: "adminUsers"}, "reviewer")
	require.NoError(t, err)

	m, _ := cfg.Mapping("owner_users")
	assert.Equal(t, StatusConfirmed, m.Status)
	assert.Equal(t, "adminUsers", m.Source.Path)

	cfg, err = cfg.Override("brand_new",
		TenantSource{Kind: catalog.SourceAttribute, Path: "brandNew"}, "reviewer")
	require.NoError(t, err)
	m, ok := cfg.Mapping("brand_new")
	require.True(t, ok)
	assert.Equal(t, StatusConfirmed, m.Status)
}

func TestExcludeDropsMapping(t *testing.T) {
	cfg := NewFromReport("acme", "https://acme.example.com",
		testReport(matchedResult("owner_users", "ownerUsers")))

	cfg, err := cfg.Exclude("owner_users")
	require.NoError(t, err)
	assert.True(t, cfg.IsExcluded("owner_users"))
	_, ok := cfg.Mapping("owner_users")
	assert.False(t, ok)
}

func TestMergePreservesHumanDecisions(t *testing.T) {
	cfg := NewFromReport("acme", "https://acme.example.com",
		testReport(matchedResult("owner_users", "ownerUsers")))
	cfg, err := cfg.Confirm("owner_users", "reviewer")
	require.NoError(t, err)

	// New report proposes a different source for the confirmed field.
	merged, err := cfg.Merge(testReport(matchedResult("owner_users", "adminUsers")))
	require.NoError(t, err)

	m, _ := merged.Mapping("owner_users")
	assert.Equal(t, StatusConfirmed, m.Status)
	assert.Equal(t, "ownerUsers", m.Source.Path)
	assert.Equal(t, "reviewer", m.ConfirmedBy)
}

func TestMergeRetainsDecisionsAbsentFromReport(t *testing.T) {
	cfg := NewFromReport("acme", "https://acme.example.com",
		testReport(matchedResult("owner_users", "ownerUsers")))
	cfg, err := cfg.Reject("owner_users", "reviewer")
	require.NoError(t, err)

	// The field transiently fails to enumerate.
	merged, err := cfg.Merge(testReport(matchedResult("description", "description")))
	require.NoError(t, err)

	m, ok := merged.Mapping("owner_users")
	require.True(t, ok)
	assert.Equal(t, StatusRejected, m.Status)

	d, ok := merged.Mapping("description")
	require.True(t, ok)
	assert.Equal(t, StatusAuto, d.Status)
}

func TestMergeReplacesAutoAndDropsStale(t *testing.T) {
	cfg := NewFromReport("acme", "https://acme.example.com", testReport(
		matchedResult("owner_users", "ownerUsers"),
		matchedResult("stale_field", "staleAttr"),
	))

	merged, err := cfg.Merge(testReport(matchedResult("owner_users", "adminUsers")))
	require.NoError(t, err)

	m, _ := merged.Mapping("owner_users")
	assert.Equal(t, "adminUsers", m.Source.Path)

	_, ok := merged.Mapping("stale_field")
	assert.False(t, ok, "auto mapping absent from new report should be dropped")
}

func TestMergeIsIdempotent(t *testing.T) {
	cfg := NewFromReport("acme", "https://acme.example.com",
		testReport(matchedResult("owner_users", "ownerUsers")))
	cfg, err := cfg.Confirm("owner_users", "reviewer")
	require.NoError(t, err)

	report := testReport(
		matchedResult("owner_users", "adminUsers"),
		matchedResult("description", "description"),
	)

	once, err := cfg.Merge(report)
	require.NoError(t, err)
	twice, err := once.Merge(report)
	require.NoError(t, err)

	assert.Equal(t, once.Mappings, twice.Mappings)
	assert.Equal(t, once.ExcludedFields, twice.ExcludedFields)
	assert.Equal(t, once.Version+1, twice.Version)
}

func TestMergeSkipsExcludedFields(t *testing.T) {
	cfg := NewFromReport("acme", "https://acme.example.com", testReport())
	cfg, err := cfg.Exclude("view_score")
	require.NoError(t, err)

	merged, err := cfg.Merge(testReport(matchedResult("view_score", "viewScore")))
	require.NoError(t, err)

	_, ok := merged.Mapping("view_score")
	assert.False(t, ok)
	assert.True(t, merged.IsExcluded("view_score"))
}

func TestCompleteness(t *testing.T) {
	cfg := Configuration{
		TenantID: "acme",
		BaseURL:  "https://acme.example.com",
		Version:  1,
	}
	for i := 0; i < 5; i++ {
		cfg.Mappings = append(cfg.Mappings, FieldMapping{
			CanonicalFieldID: string(rune('a' + i)),
			Source:           &TenantSource{Kind: catalog.SourceAttribute, Path: "x"},
			Status:           StatusConfirmed,
		})
	}
	for i := 0; i < 3; i++ {
		cfg.Mappings = append(cfg.Mappings, FieldMapping{
			CanonicalFieldID: string(rune('f' + i)),
			Source:           &TenantSource{Kind: catalog.SourceAttribute, Path: "y"},
			Status:           StatusAuto,
		})
	}
	cfg.ExcludedFields = []string{"p", "q"}

	comp := cfg.Completeness(10)
	assert.Equal(t, 5, comp.Confirmed)
	assert.Equal(t, 3, comp.Auto)
	assert.Equal(t, 2, comp.Excluded)
	assert.InDelta(t, 1.0, comp.Score, 1e-9)
}

func TestRoundTrip(t *testing.T) {
	cfg := NewFromReport("acme", "https://acme.example.com", testReport(
		matchedResult("owner_users", "ownerUsers"),
		matchedResult("description", "description"),
	))
	cfg, err := cfg.Confirm("owner_users", "reviewer")
	require.NoError(t, err)
	cfg, err = cfg.AddClassificationMapping(ClassificationMapping{
		Classification: "PII",
		Signal:         catalog.SignalSensitivity,
		Weight:         0.9,
	})
	require.NoError(t, err)

	data, err := cfg.Marshal()
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)

	if diff := cmp.Diff(cfg, restored); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalRequiresIdentityFields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"missing tenantId", `{"baseUrl":"https://x","version":1}`, "tenantId"},
		{"missing baseUrl", `{"tenantId":"acme","version":1}`, "baseUrl"},
		{"missing version", `{"tenantId":"acme","baseUrl":"https://x"}`, "version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.payload))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestUnmarshalDefaultsListFields(t *testing.T) {
	cfg, err := Unmarshal([]byte(`{"tenantId":"acme","baseUrl":"https://x","version":3}`))
	require.NoError(t, err)
	assert.NotNil(t, cfg.Mappings)
	assert.NotNil(t, cfg.CustomFields)
	assert.NotNil(t, cfg.ClassificationMappings)
	assert.NotNil(t, cfg.ExcludedFields)
}

func TestValidateMissingTenantID(t *testing.T) {
	cfg := Configuration{BaseURL: "https://x", Version: 1}

	result := cfg.Validate()
	assert.False(t, result.Valid)
	found := false
	for _, e := range result.Errors {
		if e == "tenantId is required" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateWarnsOnDuplicates(t *testing.T) {
	src := &TenantSource{Kind: catalog.SourceAttribute, Path: "x"}
	cfg := Configuration{
		TenantID: "acme",
		BaseURL:  "https://x",
		Version:  1,
		Mappings: []FieldMapping{
			{CanonicalFieldID: "owner_users", Source: src, Status: StatusAuto},
			{CanonicalFieldID: "owner_users", Source: src, Status: StatusAuto},
		},
		CustomFields: []CustomField{
			{ID: "cf1", Source: TenantSource{Kind: catalog.SourceAttribute, Path: "a"}},
			{ID: "cf1", Source: TenantSource{Kind: catalog.SourceAttribute, Path: "b"}},
		},
	}

	result := cfg.Validate()
	assert.True(t, result.Valid)
	assert.Len(t, result.Warnings, 2)
}

func TestValidateMissingSourceIsError(t *testing.T) {
	cfg := Configuration{
		TenantID: "acme",
		BaseURL:  "https://x",
		Version:  1,
		Mappings: []FieldMapping{
			{CanonicalFieldID: "owner_users", Status: StatusAuto},
		},
	}

	result := cfg.Validate()
	assert.False(t, result.Valid)
}
