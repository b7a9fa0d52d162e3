// Package reconcile maps canonical catalog fields onto a discovered tenant
// schema snapshot. Each field is run through four matching strategies (native
// attribute, custom metadata, classification, relationship); candidate matches
// are merged into a single confidence-scored result with a governance status.
//
// Reconciliation is a pure transformation: it performs no I/O and is
// deterministic for a given catalog and snapshot.
package reconcile

import (
	"time"

	"github.com/agentstation/canonmap/pkg/catalog"
)

// Status classifies the outcome of reconciling one canonical field.
type Status string

// Reconciliation statuses.
const (
	// StatusMatched is an exact native attribute or relationship match.
	StatusMatched Status = "MATCHED"
	// StatusAliasMatched is a match through an alias or name transform.
	StatusAliasMatched Status = "ALIAS_MATCHED"
	// StatusCMMatched is an exact custom metadata (set, attribute) match.
	StatusCMMatched Status = "CM_MATCHED"
	// StatusCMSuggested is a fuzzy custom metadata candidate needing review.
	StatusCMSuggested Status = "CM_SUGGESTED"
	// StatusClassification is a strong match against tenant classifications.
	StatusClassification Status = "CLASSIFICATION"
	// StatusNotFound means no matcher produced a candidate.
	StatusNotFound Status = "NOT_FOUND"
	// StatusAmbiguous means competing or weak candidates need human adjudication.
	StatusAmbiguous Status = "AMBIGUOUS"
	// StatusExcluded means the field was excluded from reconciliation by the caller.
	StatusExcluded Status = "EXCLUDED"
)

// Match is one candidate mapping of a canonical field onto a tenant schema
// element. Matches are transient reconciliation artifacts, not persisted.
type Match struct {
	Kind           catalog.SourceKind `json:"kind"`
	Path           string             `json:"path"`
	Confidence     float64            `json:"confidence"`
	PopulationRate *float64           `json:"populationRate,omitempty"`
	Reason         string             `json:"reason"`
}

// SuggestionAction identifies what a suggestion proposes.
type SuggestionAction string

// Suggestion actions, in emission priority order.
const (
	ActionCreateCustomMetadata SuggestionAction = "create_custom_metadata"
	ActionMapExistingAttribute SuggestionAction = "map_existing_attribute"
	ActionUseClassification    SuggestionAction = "use_classification"
	ActionSkip                 SuggestionAction = "skip"
)

// CustomMetadataTemplate is a ready-to-create business attribute definition
// accompanying a create_custom_metadata suggestion.
type CustomMetadataTemplate struct {
	Set         string `json:"set"`
	Attribute   string `json:"attribute"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
}

// Suggestion is one proposed next step for an unmatched canonical field.
type Suggestion struct {
	Action   SuggestionAction        `json:"action"`
	Detail   string                  `json:"detail"`
	Target   string                  `json:"target,omitempty"`
	Template *CustomMetadataTemplate `json:"template,omitempty"`
}

// Result is the reconciliation outcome for one canonical field. Every field
// in scope yields exactly one result.
type Result struct {
	FieldID      string       `json:"fieldId"`
	FieldName    string       `json:"fieldName"`
	Status       Status       `json:"status"`
	Match        *Match       `json:"match,omitempty"`
	Alternatives []Match      `json:"alternatives,omitempty"`
	Suggestions  []Suggestion `json:"suggestions,omitempty"`
}

// Summary counts results by status.
type Summary struct {
	Matched        int `json:"matched"`
	AliasMatched   int `json:"aliasMatched"`
	CMMatched      int `json:"cmMatched"`
	CMSuggested    int `json:"cmSuggested"`
	Classification int `json:"classification"`
	NotFound       int `json:"notFound"`
	Ambiguous      int `json:"ambiguous"`
	Excluded       int `json:"excluded"`
	Total          int `json:"total"`
}

// Report is the immutable outcome of reconciling a catalog against one
// snapshot. Score is the fraction of fields with a directly usable mapping:
// (matched + aliasMatched + cmMatched) / total.
type Report struct {
	TenantID     string    `json:"tenantId"`
	ReconciledAt time.Time `json:"reconciledAt"`
	Summary      Summary   `json:"summary"`
	Results      []Result  `json:"results"`
	Score        float64   `json:"score"`
}

// Result looks up the result for a canonical field ID.
func (r *Report) Result(fieldID string) (Result, bool) {
	for _, res := range r.Results {
		if res.FieldID == fieldID {
			return res, true
		}
	}
	return Result{}, false
}

// Unmatched returns the results with status NOT_FOUND.
func (r *Report) Unmatched() []Result {
	out := make([]Result, 0)
	for _, res := range r.Results {
		if res.Status == StatusNotFound {
			out = append(out, res)
		}
	}
	return out
}
