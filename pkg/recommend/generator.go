package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/agentstation/canonmap/pkg/catalog"
	"github.com/agentstation/canonmap/pkg/errors"
	"github.com/agentstation/canonmap/pkg/logging"
	"github.com/agentstation/canonmap/pkg/reconcile"
	"github.com/agentstation/canonmap/pkg/schema"
)

// Generator produces recommendation reports from snapshots.
type Generator struct {
	opts *options
}

// New creates a Generator.
func New(opts ...Option) (*Generator, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{opts: options}, nil
}

// Generate scans the snapshot for tenant-defined fields resembling a known
// governance signal and not already mapped by reconciliation. The report is
// sorted by confidence, ties broken by population rate.
func (g *Generator) Generate(ctx context.Context, snap *schema.TenantSchemaSnapshot, rec *reconcile.Report) (*Report, error) {
	if snap == nil {
		return nil, &errors.ValidationError{Field: "snapshot", Message: "cannot be nil"}
	}
	logger := logging.FromContext(ctx)

	mapped := mappedPaths(rec)
	seen := make(map[string]bool)
	recs := make([]Recommendation, 0)

	add := func(r Recommendation, ok bool) {
		if !ok || mapped[r.Path] || seen[r.Path] {
			return
		}
		seen[r.Path] = true
		recs = append(recs, r)
	}

	for _, setName := range sortedSetNames(snap.CustomMetadata) {
		set := snap.CustomMetadata[setName]
		for _, attr := range set.Attributes {
			add(g.scoreCustomMetadata(setName, attr))
		}
	}
	maxUsage := maxUsageCount(snap.Classifications)
	for _, cls := range snap.Classifications {
		add(g.scoreClassification(cls, maxUsage))
	}
	for _, name := range snap.AttributeNames() {
		add(g.scoreAttribute(snap, name))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Confidence != recs[j].Confidence {
			return recs[i].Confidence > recs[j].Confidence
		}
		return rate(recs[i].PopulationRate) > rate(recs[j].PopulationRate)
	})

	report := &Report{
		TenantID:        snap.TenantID,
		GeneratedAt:     time.Now().UTC(),
		Recommendations: recs,
		BySignal:        make(map[catalog.Signal]int),
		ByConfidence:    make(map[ConfidenceBucket]int),
	}
	for _, r := range recs {
		report.BySignal[r.Signal]++
		report.ByConfidence[bucketFor(r.Confidence)]++
	}

	logger.Info().
		Str("tenant_id", snap.TenantID).
		Int("recommendations", len(recs)).
		Msg("Recommendation generation complete")

	return report, nil
}

func (g *Generator) scoreCustomMetadata(setName string, attr schema.CustomMetadataAttribute) (Recommendation, bool) {
	p, matched, ok := detectSignal(attr.Name, attr.DisplayName, attr.Description)
	if !ok {
		return Recommendation{}, false
	}
	s := g.opts.scoring
	return Recommendation{
		Path:        "custom_metadata/" + setName + "." + attr.Name,
		SourceType:  SourceCustomMetadata,
		Name:        attr.Name,
		DisplayName: attr.DisplayName,
		Description: attr.Description,
		Signal:      p.signal,
		Weight:      p.weight,
		Rationale:   fmt.Sprintf("custom metadata attribute %s: %s", attr.Name, p.rationale),
		Confidence:  g.confidence(s.BaseCustomMetadata, matched, nil),
	}, true
}

// scoreClassification treats usage relative to the tenant's most-applied
// classification as the population analog: a tag carried by many assets is
// stronger promotion evidence than one never applied.
func (g *Generator) scoreClassification(cls schema.Classification, maxUsage int) (Recommendation, bool) {
	p, matched, ok := detectSignal(cls.Name, cls.DisplayName, cls.Description)
	if !ok {
		return Recommendation{}, false
	}
	var usage *float64
	if maxUsage > 0 && cls.UsageCount > 0 {
		u := float64(cls.UsageCount) / float64(maxUsage)
		usage = &u
	}
	s := g.opts.scoring
	return Recommendation{
		Path:           "classification/" + cls.Name,
		SourceType:     SourceClassification,
		Name:           cls.Name,
		DisplayName:    cls.DisplayName,
		Description:    cls.Description,
		PopulationRate: usage,
		Signal:         p.signal,
		Weight:         p.weight,
		Rationale:      fmt.Sprintf("classification %s: %s", cls.Name, p.rationale),
		Confidence:     g.confidence(s.BaseClassification, matched, usage),
	}, true
}

func (g *Generator) scoreAttribute(snap *schema.TenantSchemaSnapshot, name string) (Recommendation, bool) {
	popRate, sampled := snap.PopulationRate(name)
	if !sampled || popRate <= g.opts.scoring.HighPopulation {
		return Recommendation{}, false
	}
	p, matched, ok := detectSignal(name)
	if !ok {
		return Recommendation{}, false
	}
	s := g.opts.scoring
	return Recommendation{
		Path:           "attribute/" + name,
		SourceType:     SourceAttribute,
		Name:           name,
		PopulationRate: &popRate,
		Signal:         p.signal,
		Weight:         p.weight,
		Rationale:      fmt.Sprintf("native attribute %s is %.0f%% populated: %s", name, popRate*100, p.rationale),
		Confidence:     g.confidence(s.BaseAttribute, matched, &popRate),
	}, true
}

// confidence computes base + additive bonuses, capped at 1.0. matched is the
// (name, displayName, description) match vector from detectSignal.
func (g *Generator) confidence(base float64, matched []bool, popRate *float64) float64 {
	s := g.opts.scoring
	bonuses := []float64{s.NameBonus, s.DisplayNameBonus, s.DescriptionBonus}

	conf := base
	for i, hit := range matched {
		if hit && i < len(bonuses) {
			conf += bonuses[i]
		}
	}
	if popRate != nil && *popRate > s.HighPopulation {
		conf += s.PopulationBonus
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

// mappedPaths collects the namespaced paths reconciliation already placed, so
// a tenant field that backs a canonical mapping is not re-recommended.
func mappedPaths(rec *reconcile.Report) map[string]bool {
	mapped := make(map[string]bool)
	if rec == nil {
		return mapped
	}
	for _, res := range rec.Results {
		if res.Match == nil {
			continue
		}
		switch res.Match.Kind {
		case catalog.SourceAttribute:
			mapped["attribute/"+res.Match.Path] = true
		case catalog.SourceCustomMetadata:
			mapped["custom_metadata/"+res.Match.Path] = true
		case catalog.SourceClassification:
			mapped["classification/"+res.Match.Path] = true
		}
	}
	return mapped
}

func maxUsageCount(classes []schema.Classification) int {
	most := 0
	for _, c := range classes {
		if c.UsageCount > most {
			most = c.UsageCount
		}
	}
	return most
}

func sortedSetNames(sets map[string]schema.CustomMetadataSet) []string {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func rate(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func bucketFor(confidence float64) ConfidenceBucket {
	switch {
	case confidence >= 0.75:
		return BucketHigh
	case confidence >= 0.5:
		return BucketMedium
	default:
		return BucketLow
	}
}
