package reconcile

import (
	"context"
	"sort"
	"time"

	"github.com/agentstation/canonmap/pkg/catalog"
	"github.com/agentstation/canonmap/pkg/errors"
	"github.com/agentstation/canonmap/pkg/logging"
	"github.com/agentstation/canonmap/pkg/schema"
)

// Reconciler matches a canonical catalog against tenant schema snapshots.
type Reconciler struct {
	catalog *catalog.Catalog
	opts    *options
}

// New creates a Reconciler for the given catalog.
func New(cat *catalog.Catalog, opts ...Option) (*Reconciler, error) {
	if cat == nil {
		return nil, &errors.ValidationError{Field: "catalog", Message: "cannot be nil"}
	}
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Reconciler{catalog: cat, opts: options}, nil
}

// Field reconciles a single canonical field against a snapshot.
func (r *Reconciler) Field(f catalog.Field, snap *schema.TenantSchemaSnapshot) Result {
	return r.reconcileField(f, newSchemaView(snap, r.opts.assetTypes))
}

// All reconciles every in-scope catalog field against a snapshot and
// assembles the report. Every field yields exactly one result.
func (r *Reconciler) All(ctx context.Context, snap *schema.TenantSchemaSnapshot) (*Report, error) {
	if snap == nil {
		return nil, &errors.ValidationError{Field: "snapshot", Message: "cannot be nil"}
	}
	logger := logging.FromContext(ctx)

	fields := r.catalog.Filter(r.opts.filterOptions()).Fields()
	view := newSchemaView(snap, r.opts.assetTypes)

	report := &Report{
		TenantID:     snap.TenantID,
		ReconciledAt: time.Now().UTC(),
		Results:      make([]Result, 0, len(fields)),
	}

	for _, f := range fields {
		result := r.reconcileField(f, view)
		report.Results = append(report.Results, result)
		report.Summary.count(result.Status)
	}
	report.Summary.Total = len(report.Results)
	if report.Summary.Total > 0 {
		reconciled := report.Summary.Matched + report.Summary.AliasMatched + report.Summary.CMMatched
		report.Score = float64(reconciled) / float64(report.Summary.Total)
	}

	logger.Info().
		Str("tenant_id", snap.TenantID).
		Int("fields", report.Summary.Total).
		Int("matched", report.Summary.Matched).
		Int("ambiguous", report.Summary.Ambiguous).
		Int("not_found", report.Summary.NotFound).
		Float64("score", report.Score).
		Msg("Reconciliation complete")

	return report, nil
}

func (r *Reconciler) reconcileField(f catalog.Field, view *schemaView) Result {
	result := Result{FieldID: f.ID, FieldName: f.DisplayName}

	if r.opts.excludedFieldIDs[f.ID] {
		result.Status = StatusExcluded
		return result
	}

	matches := collectMatches(
		r.matchNative(f, view),
		r.matchCustomMetadata(f, view),
		r.matchClassification(f, view),
		r.matchRelationship(f, view),
	)
	if len(matches) == 0 {
		result.Status = StatusNotFound
		result.Suggestions = r.suggest(f, view)
		return result
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	result.Match = &matches[0]
	result.Alternatives = matches[1:]
	result.Status = r.deriveStatus(matches)
	return result
}

func collectMatches(candidates ...*Match) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, m := range candidates {
		if m != nil {
			matches = append(matches, *m)
		}
	}
	return matches
}

// deriveStatus maps a sorted, non-empty match list onto a status. Multiple
// strong candidates force AMBIGUOUS: picking between them is a governance
// decision, not an automatic one.
func (r *Reconciler) deriveStatus(matches []Match) Status {
	c := r.opts.confidence

	strong := 0
	for _, m := range matches {
		if m.Confidence >= c.Strong {
			strong++
		}
	}
	if strong >= 2 {
		return StatusAmbiguous
	}

	best := matches[0]
	switch {
	case best.Confidence >= c.Exact:
		if best.Kind == catalog.SourceCustomMetadata {
			return StatusCMMatched
		}
		if best.Kind == catalog.SourceClassification {
			return StatusClassification
		}
		return StatusMatched
	case best.Confidence >= c.Strong:
		if best.Kind == catalog.SourceClassification {
			return StatusClassification
		}
		return StatusAliasMatched
	case best.Confidence >= c.Suggest:
		if best.Kind == catalog.SourceCustomMetadata {
			return StatusCMSuggested
		}
		return StatusAmbiguous
	default:
		return StatusAmbiguous
	}
}

func (s *Summary) count(status Status) {
	switch status {
	case StatusMatched:
		s.Matched++
	case StatusAliasMatched:
		s.AliasMatched++
	case StatusCMMatched:
		s.CMMatched++
	case StatusCMSuggested:
		s.CMSuggested++
	case StatusClassification:
		s.Classification++
	case StatusNotFound:
		s.NotFound++
	case StatusAmbiguous:
		s.Ambiguous++
	case StatusExcluded:
		s.Excluded++
	}
}
