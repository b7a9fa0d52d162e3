package discovery

import (
	"github.com/agentstation/canonmap/internal/matcher"
	"github.com/agentstation/canonmap/pkg/errors"
)

// defaultSampleAssetTypes are the asset types population sampling covers when
// the caller doesn't narrow them.
var defaultSampleAssetTypes = []string{"Table", "View", "Column"}

// defaultSampleAttributes are the attributes population sampling covers when
// the caller doesn't narrow them.
var defaultSampleAttributes = []string{
	"description",
	"ownerUsers",
	"ownerGroups",
	"certificateStatus",
	"hasLineage",
}

// defaultMaxSamplePairs bounds the (assetType, attribute) fan-out of
// population sampling. Two count queries are issued per asset type plus one
// per pair; unbounded sampling would storm large tenants.
const defaultMaxSamplePairs = 50

// options configures a discovery run.
type options struct {
	includeCustomMetadata  bool
	includeClassifications bool
	includeDomains         bool
	includeGlossaries      bool
	includePopulation      bool

	sampleAssetTypes []string
	sampleAttributes []string
	maxSamplePairs   int

	entityTypeFilter     *matcher.MultiMatcher
	customMetadataFilter *matcher.MultiMatcher

	sourceURL string
}

func defaultOptions() *options {
	return &options{
		includeCustomMetadata:  true,
		includeClassifications: true,
		includeDomains:         true,
		includeGlossaries:      true,
		includePopulation:      true,
		sampleAssetTypes:       defaultSampleAssetTypes,
		sampleAttributes:       defaultSampleAttributes,
		maxSamplePairs:         defaultMaxSamplePairs,
	}
}

// Option is a function that configures a Discoverer.
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

// WithCustomMetadata toggles custom metadata discovery.
func WithCustomMetadata(enabled bool) Option {
	return func(o *options) error {
		o.includeCustomMetadata = enabled
		return nil
	}
}

// WithClassifications toggles classification discovery.
func WithClassifications(enabled bool) Option {
	return func(o *options) error {
		o.includeClassifications = enabled
		return nil
	}
}

// WithDomains toggles domain discovery.
func WithDomains(enabled bool) Option {
	return func(o *options) error {
		o.includeDomains = enabled
		return nil
	}
}

// WithGlossaries toggles glossary discovery.
func WithGlossaries(enabled bool) Option {
	return func(o *options) error {
		o.includeGlossaries = enabled
		return nil
	}
}

// WithPopulationSampling toggles field population sampling.
func WithPopulationSampling(enabled bool) Option {
	return func(o *options) error {
		o.includePopulation = enabled
		return nil
	}
}

// WithSampleAssetTypes sets the asset types population sampling covers.
func WithSampleAssetTypes(assetTypes ...string) Option {
	return func(o *options) error {
		if len(assetTypes) == 0 {
			return &errors.ValidationError{Field: "sampleAssetTypes", Message: "cannot be empty"}
		}
		o.sampleAssetTypes = assetTypes
		return nil
	}
}

// WithSampleAttributes sets the attributes population sampling covers.
func WithSampleAttributes(attributes ...string) Option {
	return func(o *options) error {
		if len(attributes) == 0 {
			return &errors.ValidationError{Field: "sampleAttributes", Message: "cannot be empty"}
		}
		o.sampleAttributes = attributes
		return nil
	}
}

// WithMaxSamplePairs caps the (assetType, attribute) sampling fan-out.
func WithMaxSamplePairs(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return &errors.ValidationError{Field: "maxSamplePairs", Message: "must be positive"}
		}
		o.maxSamplePairs = n
		return nil
	}
}

// WithEntityTypeFilter limits discovered entity types to names matching any of
// the given glob or regex patterns.
func WithEntityTypeFilter(patterns ...string) Option {
	return func(o *options) error {
		mm, err := matcher.NewMultiMatcher(patterns, matcher.Auto)
		if err != nil {
			return errors.WrapValidation("entityTypeFilter", err)
		}
		o.entityTypeFilter = mm
		return nil
	}
}

// WithCustomMetadataFilter limits discovered custom metadata sets to names
// matching any of the given glob or regex patterns.
func WithCustomMetadataFilter(patterns ...string) Option {
	return func(o *options) error {
		mm, err := matcher.NewMultiMatcher(patterns, matcher.Auto)
		if err != nil {
			return errors.WrapValidation("customMetadataFilter", err)
		}
		o.customMetadataFilter = mm
		return nil
	}
}

// WithSourceURL records the tenant base URL on produced snapshots.
func WithSourceURL(url string) Option {
	return func(o *options) error {
		o.sourceURL = url
		return nil
	}
}
