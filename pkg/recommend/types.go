// Package recommend scans a tenant schema snapshot for tenant-defined fields
// that resemble a known governance signal but are not yet represented in the
// canonical catalog, and proposes catalog additions and structural
// improvements. Like reconciliation, generation is pure and deterministic.
package recommend

import (
	"time"

	"github.com/agentstation/canonmap/pkg/catalog"
)

// SourceType identifies where a recommended tenant field was discovered.
type SourceType string

// Recommendation source types.
const (
	SourceCustomMetadata SourceType = "custom_metadata"
	SourceClassification SourceType = "classification"
	SourceAttribute      SourceType = "attribute"
)

// Priority ranks improvement suggestions.
type Priority string

// Suggestion priorities.
const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Recommendation proposes promoting one tenant-defined field into the
// canonical catalog, tagged with the governance signal it would feed.
type Recommendation struct {
	Path           string         `json:"path"`
	SourceType     SourceType     `json:"sourceType"`
	Name           string         `json:"name"`
	DisplayName    string         `json:"displayName,omitempty"`
	Description    string         `json:"description,omitempty"`
	PopulationRate *float64       `json:"populationRate,omitempty"`
	Signal         catalog.Signal `json:"signal"`
	Weight         float64        `json:"weight"`
	Rationale      string         `json:"rationale"`
	Confidence     float64        `json:"confidence"`
}

// ConfidenceBucket labels a confidence range for summary reporting.
type ConfidenceBucket string

// Confidence buckets.
const (
	BucketHigh   ConfidenceBucket = "high"   // >= 0.75
	BucketMedium ConfidenceBucket = "medium" // >= 0.5
	BucketLow    ConfidenceBucket = "low"
)

// Report aggregates recommendations with per-signal and per-confidence
// summaries.
type Report struct {
	TenantID        string                   `json:"tenantId"`
	GeneratedAt     time.Time                `json:"generatedAt"`
	Recommendations []Recommendation         `json:"recommendations"`
	BySignal        map[catalog.Signal]int   `json:"bySignal"`
	ByConfidence    map[ConfidenceBucket]int `json:"byConfidence"`
}

// ImprovementSuggestion proposes a governance improvement for the tenant,
// either for a bucket of unmatched canonical fields or for a structural gap
// in the tenant's metadata setup.
type ImprovementSuggestion struct {
	Signal   catalog.Signal `json:"signal,omitempty"`
	Priority Priority       `json:"priority"`
	Detail   string         `json:"detail"`
	FieldIDs []string       `json:"fieldIds,omitempty"`
}
