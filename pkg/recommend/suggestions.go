package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentstation/canonmap/pkg/catalog"
	"github.com/agentstation/canonmap/pkg/reconcile"
	"github.com/agentstation/canonmap/pkg/schema"
)

// ImprovementSuggestions inspects the unmatched fields of a reconciliation
// report and the structural shape of the snapshot, and proposes governance
// improvements: one suggestion per inferred signal bucket of unmatched
// fields, plus one high-priority structural suggestion for each missing
// metadata category (custom metadata, classifications, domains).
func (g *Generator) ImprovementSuggestions(snap *schema.TenantSchemaSnapshot, rec *reconcile.Report) []ImprovementSuggestion {
	suggestions := make([]ImprovementSuggestion, 0)

	if rec != nil {
		buckets := make(map[catalog.Signal][]string)
		for _, res := range rec.Unmatched() {
			p, _, ok := detectSignal(res.FieldID, res.FieldName)
			if !ok {
				continue
			}
			buckets[p.signal] = append(buckets[p.signal], res.FieldID)
		}

		signals := make([]catalog.Signal, 0, len(buckets))
		for signal := range buckets {
			signals = append(signals, signal)
		}
		sort.Slice(signals, func(i, j int) bool { return signals[i] < signals[j] })

		for _, signal := range signals {
			fieldIDs := buckets[signal]
			sort.Strings(fieldIDs)
			suggestions = append(suggestions, ImprovementSuggestion{
				Signal:   signal,
				Priority: severityFor(signal),
				Detail: fmt.Sprintf("No tenant source found for %s signal fields: %s",
					signal, strings.Join(fieldIDs, ", ")),
				FieldIDs: fieldIDs,
			})
		}
	}

	if snap != nil {
		if !snap.HasCustomMetadata() {
			suggestions = append(suggestions, ImprovementSuggestion{
				Priority: PriorityHigh,
				Detail:   "Tenant has no custom metadata sets; create business metadata to hold governance fields",
			})
		}
		if !snap.HasClassifications() {
			suggestions = append(suggestions, ImprovementSuggestion{
				Priority: PriorityHigh,
				Detail:   "Tenant has no classifications; define tags for sensitivity and compliance labeling",
			})
		}
		if !snap.HasDomains() {
			suggestions = append(suggestions, ImprovementSuggestion{
				Priority: PriorityHigh,
				Detail:   "Tenant has no data domains; organize assets into domains for ownership and scoping",
			})
		}
	}

	return suggestions
}
