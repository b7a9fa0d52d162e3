package recommend

import (
	"github.com/agentstation/canonmap/internal/matcher"
	"github.com/agentstation/canonmap/pkg/catalog"
)

// signalPattern is one row of the ordered signal detection table. The first
// row whose pattern matches a candidate's name, display name, or description
// wins; later rows are not consulted for that candidate.
type signalPattern struct {
	signal    catalog.Signal
	matcher   matcher.Matcher
	weight    float64
	severity  Priority
	rationale string
}

// signalPatterns is ordered by specificity: sensitivity and ownership terms
// are less ambiguous than usage or AI terms, so they are tested first.
var signalPatterns = []signalPattern{
	{
		signal:    catalog.SignalSensitivity,
		matcher:   matcher.MustNew(matcher.Regex, `(?i)(pii|sensitive|confidential|privacy|restricted|gdpr|hipaa|ccpa)`),
		weight:    0.9,
		severity:  PriorityHigh,
		rationale: "name suggests data sensitivity or regulatory scope",
	},
	{
		signal:    catalog.SignalOwnership,
		matcher:   matcher.MustNew(matcher.Regex, `(?i)(owner|steward|custodian|responsible|accountable)`),
		weight:    0.9,
		severity:  PriorityHigh,
		rationale: "name suggests an accountable party",
	},
	{
		signal:    catalog.SignalTrust,
		matcher:   matcher.MustNew(matcher.Regex, `(?i)(certif|verified|approved|golden|authoritative)`),
		weight:    0.8,
		severity:  PriorityMedium,
		rationale: "name suggests a trust or certification marker",
	},
	{
		signal:    catalog.SignalQuality,
		matcher:   matcher.MustNew(matcher.Regex, `(?i)(quality|accuracy|complete(ness)?|valid(ity|ated)?|\bdq\b)`),
		weight:    0.8,
		severity:  PriorityMedium,
		rationale: "name suggests a data quality measure",
	},
	{
		signal:    catalog.SignalSemantics,
		matcher:   matcher.MustNew(matcher.Regex, `(?i)(descri|definition|meaning|glossary|term|business\s*name)`),
		weight:    0.7,
		severity:  PriorityMedium,
		rationale: "name suggests business meaning documentation",
	},
	{
		signal:    catalog.SignalLineage,
		matcher:   matcher.MustNew(matcher.Regex, `(?i)(lineage|upstream|downstream|source\s*system|provenance|origin)`),
		weight:    0.7,
		severity:  PriorityMedium,
		rationale: "name suggests data lineage or origin tracking",
	},
	{
		signal:    catalog.SignalAccess,
		matcher:   matcher.MustNew(matcher.Regex, `(?i)(access|permission|visibility|entitlement|role\s*based)`),
		weight:    0.7,
		severity:  PriorityMedium,
		rationale: "name suggests access control metadata",
	},
	{
		signal:    catalog.SignalFreshness,
		matcher:   matcher.MustNew(matcher.Regex, `(?i)(fresh|stale|sla|refresh|last\s*updated|latency)`),
		weight:    0.6,
		severity:  PriorityLow,
		rationale: "name suggests a freshness or timeliness indicator",
	},
	{
		signal:    catalog.SignalUsage,
		matcher:   matcher.MustNew(matcher.Regex, `(?i)(usage|popular|query\s*count|view\s*count|consumption)`),
		weight:    0.6,
		severity:  PriorityLow,
		rationale: "name suggests a usage or popularity measure",
	},
	{
		signal:    catalog.SignalAIReadiness,
		matcher:   matcher.MustNew(matcher.Regex, `(?i)(\bai\b|\bml\b|model|training|embedding|feature\s*store)`),
		weight:    0.6,
		severity:  PriorityLow,
		rationale: "name suggests AI or ML readiness metadata",
	},
}

// detectSignal returns the first pattern matching any of the given texts.
// The boolean per text records which text matched, in input order.
func detectSignal(texts ...string) (signalPattern, []bool, bool) {
	for _, p := range signalPatterns {
		matched := make([]bool, len(texts))
		any := false
		for i, text := range texts {
			if text != "" && p.matcher.Match(text) {
				matched[i] = true
				any = true
			}
		}
		if any {
			return p, matched, true
		}
	}
	return signalPattern{}, nil, false
}

// severityFor returns the declared severity of a signal, defaulting to
// medium for signals without a pattern row.
func severityFor(signal catalog.Signal) Priority {
	for _, p := range signalPatterns {
		if p.signal == signal {
			return p.severity
		}
	}
	return PriorityMedium
}
