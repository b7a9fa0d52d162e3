package recommend

import (
	"github.com/agentstation/canonmap/pkg/errors"
)

// Scoring holds the tunable constants of recommendation confidence. The
// defaults are additive heuristics, not calibrated values, so they are
// exposed as parameters.
type Scoring struct {
	// BaseAttribute is the starting confidence for high-population native
	// attributes.
	BaseAttribute float64
	// BaseCustomMetadata is the starting confidence for custom metadata
	// attributes.
	BaseCustomMetadata float64
	// BaseClassification is the starting confidence for classifications.
	BaseClassification float64

	// NameBonus is added when the pattern matched the internal name.
	NameBonus float64
	// DisplayNameBonus is added when the pattern matched the display name.
	DisplayNameBonus float64
	// DescriptionBonus is added when the pattern matched the description.
	DescriptionBonus float64
	// PopulationBonus is added when the population rate exceeds
	// HighPopulation.
	PopulationBonus float64

	// HighPopulation is the population rate above which a native attribute
	// becomes a candidate and the population bonus applies.
	HighPopulation float64
}

// DefaultScoring returns the stock scoring constants.
func DefaultScoring() Scoring {
	return Scoring{
		BaseAttribute:      0.6,
		BaseCustomMetadata: 0.5,
		BaseClassification: 0.4,
		NameBonus:          0.2,
		DisplayNameBonus:   0.15,
		DescriptionBonus:   0.1,
		PopulationBonus:    0.15,
		HighPopulation:     0.3,
	}
}

type options struct {
	scoring Scoring
}

func defaultOptions() *options {
	return &options{scoring: DefaultScoring()}
}

// Option is a function that configures a Generator.
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

// WithScoring overrides the scoring constants.
func WithScoring(s Scoring) Option {
	return func(o *options) error {
		if s.HighPopulation < 0 || s.HighPopulation > 1 {
			return &errors.ValidationError{Field: "scoring.highPopulation", Message: "must be in [0, 1]"}
		}
		o.scoring = s
		return nil
	}
}
