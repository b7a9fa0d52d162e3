package tenantconfig

import (
	"fmt"

	"github.com/agentstation/canonmap/pkg/errors"
	"github.com/agentstation/canonmap/pkg/reconcile"
)

// Merge folds a fresh reconciliation report into the configuration. Human
// decisions win: confirmed and rejected mappings are kept verbatim, even when
// the field is absent from the new report, so re-discovery noise can never
// erase a governance decision. Machine-produced mappings (auto, pending) are
// replaced by the report's fresh proposal, or dropped when the field no
// longer reconciles. Excluded fields stay excluded.
func (c Configuration) Merge(report *reconcile.Report) (Configuration, error) {
	if report == nil {
		return Configuration{}, &errors.ValidationError{Field: "report", Message: "cannot be nil"}
	}

	out := c.clone()

	proposed := make(map[string]FieldMapping)
	for _, res := range report.Results {
		if out.IsExcluded(res.FieldID) {
			continue
		}
		if mapping, ok := mappingFromResult(res); ok {
			proposed[res.FieldID] = mapping
		}
	}

	merged := make([]FieldMapping, 0, len(out.Mappings)+len(proposed))
	for _, existing := range out.Mappings {
		fresh, hasFresh := proposed[existing.CanonicalFieldID]
		delete(proposed, existing.CanonicalFieldID)

		// The switch is exhaustive on purpose: a new mapping status must
		// decide its merge behavior here before it can exist.
		switch existing.Status {
		case StatusConfirmed, StatusRejected:
			merged = append(merged, existing)
		case StatusAuto, StatusPending:
			if hasFresh {
				merged = append(merged, fresh)
			}
		default:
			return Configuration{}, &errors.MergeError{
				TenantID: out.TenantID,
				FieldIDs: []string{existing.CanonicalFieldID},
				Err:      fmt.Errorf("unknown mapping status %q", existing.Status),
			}
		}
	}

	// Fields the report proposes that had no mapping yet, in report order.
	for _, res := range report.Results {
		if mapping, ok := proposed[res.FieldID]; ok {
			merged = append(merged, mapping)
			delete(proposed, res.FieldID)
		}
	}

	out.Mappings = merged
	reconciledAt := report.ReconciledAt
	out.LastReconciledAt = &reconciledAt
	out.bump()
	return out, nil
}

// Completeness summarizes onboarding progress against the canonical catalog.
type Completeness struct {
	Score     float64 `json:"score"`
	Total     int     `json:"total"`
	Confirmed int     `json:"confirmed"`
	Auto      int     `json:"auto"`
	Pending   int     `json:"pending"`
	Rejected  int     `json:"rejected"`
	Excluded  int     `json:"excluded"`
}

// Completeness computes the configuration's coverage of a catalog with
// totalCanonicalFields fields: settled fields (confirmed, auto, excluded)
// over the total.
func (c Configuration) Completeness(totalCanonicalFields int) Completeness {
	comp := Completeness{
		Total:    totalCanonicalFields,
		Excluded: len(c.ExcludedFields),
	}
	for _, m := range c.Mappings {
		switch m.Status {
		case StatusConfirmed:
			comp.Confirmed++
		case StatusAuto:
			comp.Auto++
		case StatusPending:
			comp.Pending++
		case StatusRejected:
			comp.Rejected++
		}
	}
	if totalCanonicalFields > 0 {
		comp.Score = float64(comp.Confirmed+comp.Auto+comp.Excluded) / float64(totalCanonicalFields)
	}
	return comp
}
