package reconcile

import (
	"github.com/agentstation/canonmap/pkg/catalog"
	"github.com/agentstation/canonmap/pkg/errors"
)

// Confidence holds the tunable confidence constants of the matching
// strategies. The defaults are heuristic, not calibrated against labeled
// data, so they are exposed as parameters rather than baked in.
type Confidence struct {
	// Exact is awarded for an exact attribute or relationship name match.
	Exact float64
	// Alias is awarded for a match through an alias or name transform.
	Alias float64
	// CMExact is awarded for an exact custom metadata (set, attribute) match.
	CMExact float64
	// CMFuzzy is awarded for a substring custom metadata match.
	CMFuzzy float64
	// ClassExact is awarded when an enumerated classification name exists.
	ClassExact float64
	// ClassPattern is awarded for a classification pattern match.
	ClassPattern float64
	// ClassWeak is awarded for the sensitivity-field name fallback.
	ClassWeak float64

	// Strong is the floor above which a match counts as high confidence.
	// Two or more matches at or above it force AMBIGUOUS.
	Strong float64
	// Suggest is the floor below which a lone match is too weak to suggest.
	Suggest float64
}

// DefaultConfidence returns the stock confidence constants.
func DefaultConfidence() Confidence {
	return Confidence{
		Exact:        1.0,
		Alias:        0.9,
		CMExact:      1.0,
		CMFuzzy:      0.7,
		ClassExact:   1.0,
		ClassPattern: 0.9,
		ClassWeak:    0.6,
		Strong:       0.8,
		Suggest:      0.5,
	}
}

type options struct {
	confidence          Confidence
	exactOnly           bool
	includeExperimental bool
	skipDeprecated      bool
	excludedFieldIDs    map[string]bool
	assetTypes          []string
}

func defaultOptions() *options {
	return &options{
		confidence:       DefaultConfidence(),
		excludedFieldIDs: make(map[string]bool),
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func newOptions(opts ...Option) (*options, error) {
	options := defaultOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// WithConfidence overrides the confidence constants.
func WithConfidence(c Confidence) Option {
	return func(o *options) error {
		if c.Strong <= 0 || c.Strong > 1 {
			return &errors.ValidationError{Field: "confidence.strong", Message: "must be in (0, 1]"}
		}
		if c.Suggest < 0 || c.Suggest > c.Strong {
			return &errors.ValidationError{Field: "confidence.suggest", Message: "must be in [0, strong]"}
		}
		o.confidence = c
		return nil
	}
}

// WithExactOnly restricts matching to exact-confidence strategies, dropping
// alias, fuzzy, and weak fallback candidates.
func WithExactOnly(enabled bool) Option {
	return func(o *options) error {
		o.exactOnly = enabled
		return nil
	}
}

// WithExperimental includes canonical fields still marked experimental.
func WithExperimental(enabled bool) Option {
	return func(o *options) error {
		o.includeExperimental = enabled
		return nil
	}
}

// WithSkipDeprecated excludes deprecated canonical fields from reconciliation.
func WithSkipDeprecated(enabled bool) Option {
	return func(o *options) error {
		o.skipDeprecated = enabled
		return nil
	}
}

// WithExcludedFields marks canonical field IDs as excluded: they still yield
// a result, with status EXCLUDED and no matching performed.
func WithExcludedFields(fieldIDs ...string) Option {
	return func(o *options) error {
		for _, id := range fieldIDs {
			o.excludedFieldIDs[id] = true
		}
		return nil
	}
}

// WithAssetTypes scopes attribute and relationship lookups to the named
// entity types instead of the whole snapshot.
func WithAssetTypes(assetTypes ...string) Option {
	return func(o *options) error {
		if len(assetTypes) == 0 {
			return &errors.ValidationError{Field: "assetTypes", Message: "cannot be empty"}
		}
		o.assetTypes = assetTypes
		return nil
	}
}

func (o *options) filterOptions() catalog.FilterOptions {
	return catalog.FilterOptions{
		IncludeExperimental: o.includeExperimental,
		SkipDeprecated:      o.skipDeprecated,
	}
}
