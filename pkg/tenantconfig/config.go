// Package tenantconfig is the versioned store of per-tenant field mapping
// decisions. A configuration is created from an initial reconciliation
// report, then mutated field-by-field by explicit human operations and
// re-synchronized by merging later reports. Confirmed and rejected mappings
// survive every merge; only machine-produced mappings are replaced.
//
// All mutators are pure: they return a new configuration with the version
// incremented and never modify their receiver. The version is the
// optimistic-concurrency token; callers serialize concurrent edits at the
// persistence boundary.
package tenantconfig

import (
	"time"

	"github.com/agentstation/canonmap/pkg/catalog"
	"github.com/agentstation/canonmap/pkg/reconcile"
)

// MappingStatus is the review state of one field mapping.
type MappingStatus string

// Mapping statuses. pending moves to confirmed or rejected by human review;
// auto is machine-produced and revisable by later merges; confirmed and
// rejected are sticky until explicitly reversed.
const (
	StatusAuto      MappingStatus = "auto"
	StatusPending   MappingStatus = "pending"
	StatusConfirmed MappingStatus = "confirmed"
	StatusRejected  MappingStatus = "rejected"
)

// TenantSource identifies the tenant schema element a mapping points at.
type TenantSource struct {
	Kind catalog.SourceKind `json:"kind"`
	Path string             `json:"path"`
}

// FieldMapping binds one canonical field to one tenant source.
type FieldMapping struct {
	CanonicalFieldID string        `json:"canonicalFieldId"`
	Source           *TenantSource `json:"source"`
	Status           MappingStatus `json:"status"`
	Confidence       float64       `json:"confidence"`
	ConfirmedBy      string        `json:"confirmedBy,omitempty"`
	ConfirmedAt      *time.Time    `json:"confirmedAt,omitempty"`
	Note             string        `json:"note,omitempty"`
}

// CustomField is a tenant-defined field outside the canonical catalog that
// the tenant wants tracked alongside canonical mappings.
type CustomField struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"displayName"`
	Source      TenantSource   `json:"source"`
	Signal      catalog.Signal `json:"signal,omitempty"`
	Weight      float64        `json:"weight,omitempty"`
}

// ClassificationMapping routes a tenant classification to a governance
// signal.
type ClassificationMapping struct {
	Classification string         `json:"classification"`
	Signal         catalog.Signal `json:"signal"`
	Weight         float64        `json:"weight,omitempty"`
}

// Configuration is the complete mapping state for one tenant.
type Configuration struct {
	TenantID               string                  `json:"tenantId"`
	BaseURL                string                  `json:"baseUrl"`
	Version                int                     `json:"version"`
	CreatedAt              time.Time               `json:"createdAt"`
	UpdatedAt              time.Time               `json:"updatedAt"`
	Mappings               []FieldMapping          `json:"fieldMappings"`
	CustomFields           []CustomField           `json:"customFields"`
	ClassificationMappings []ClassificationMapping `json:"classificationMappings"`
	ExcludedFields         []string                `json:"excludedFields"`
	LastReconciledAt       *time.Time              `json:"lastReconciledAt,omitempty"`
}

// NewFromReport seeds a configuration from an initial reconciliation report.
// Results with a directly usable source become auto mappings; partial results
// (fuzzy or ambiguous, but with a candidate) become pending; excluded results
// populate the excluded list; NOT_FOUND results produce no mapping.
func NewFromReport(tenantID, baseURL string, report *reconcile.Report) Configuration {
	now := time.Now().UTC()
	cfg := Configuration{
		TenantID:               tenantID,
		BaseURL:                baseURL,
		Version:                1,
		CreatedAt:              now,
		UpdatedAt:              now,
		Mappings:               make([]FieldMapping, 0),
		CustomFields:           make([]CustomField, 0),
		ClassificationMappings: make([]ClassificationMapping, 0),
		ExcludedFields:         make([]string, 0),
	}
	if report == nil {
		return cfg
	}

	reconciledAt := report.ReconciledAt
	cfg.LastReconciledAt = &reconciledAt

	for _, res := range report.Results {
		if res.Status == reconcile.StatusExcluded {
			cfg.ExcludedFields = append(cfg.ExcludedFields, res.FieldID)
			continue
		}
		if mapping, ok := mappingFromResult(res); ok {
			cfg.Mappings = append(cfg.Mappings, mapping)
		}
	}
	return cfg
}

// mappingFromResult converts one reconciliation result into a proposed
// mapping. Results without a usable match propose nothing.
func mappingFromResult(res reconcile.Result) (FieldMapping, bool) {
	if res.Match == nil {
		return FieldMapping{}, false
	}

	var status MappingStatus
	switch res.Status {
	case reconcile.StatusMatched, reconcile.StatusAliasMatched,
		reconcile.StatusCMMatched, reconcile.StatusClassification:
		status = StatusAuto
	case reconcile.StatusCMSuggested, reconcile.StatusAmbiguous:
		status = StatusPending
	default:
		return FieldMapping{}, false
	}

	return FieldMapping{
		CanonicalFieldID: res.FieldID,
		Source: &TenantSource{
			Kind: res.Match.Kind,
			Path: res.Match.Path,
		},
		Status:     status,
		Confidence: res.Match.Confidence,
	}, true
}

// Mapping looks up the mapping for a canonical field ID.
func (c Configuration) Mapping(fieldID string) (FieldMapping, bool) {
	for _, m := range c.Mappings {
		if m.CanonicalFieldID == fieldID {
			return m, true
		}
	}
	return FieldMapping{}, false
}

// IsExcluded reports whether a canonical field is on the excluded list.
func (c Configuration) IsExcluded(fieldID string) bool {
	for _, id := range c.ExcludedFields {
		if id == fieldID {
			return true
		}
	}
	return false
}

// clone deep-copies the configuration so mutators never alias the input.
func (c Configuration) clone() Configuration {
	out := c

	out.Mappings = make([]FieldMapping, len(c.Mappings))
	for i, m := range c.Mappings {
		out.Mappings[i] = m
		if m.Source != nil {
			src := *m.Source
			out.Mappings[i].Source = &src
		}
		if m.ConfirmedAt != nil {
			ts := *m.ConfirmedAt
			out.Mappings[i].ConfirmedAt = &ts
		}
	}

	out.CustomFields = append([]CustomField{}, c.CustomFields...)
	out.ClassificationMappings = append([]ClassificationMapping{}, c.ClassificationMappings...)
	out.ExcludedFields = append([]string{}, c.ExcludedFields...)

	if c.LastReconciledAt != nil {
		ts := *c.LastReconciledAt
		out.LastReconciledAt = &ts
	}
	return out
}

// bump increments the version and refreshes the update timestamp.
func (c *Configuration) bump() {
	c.Version++
	c.UpdatedAt = time.Now().UTC()
}
