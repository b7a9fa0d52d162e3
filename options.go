package canonmap

import (
	"time"

	"github.com/agentstation/canonmap/pkg/catalog"
	"github.com/agentstation/canonmap/pkg/discovery"
	"github.com/agentstation/canonmap/pkg/errors"
	"github.com/agentstation/canonmap/pkg/reconcile"
	"github.com/agentstation/canonmap/pkg/recommend"
)

type options struct {
	catalog        *catalog.Catalog
	metadataClient discovery.MetadataClient
	baseURL        string
	credential     string
	cacheTTL       time.Duration

	discoveryOpts []discovery.Option
	reconcileOpts []reconcile.Option
	recommendOpts []recommend.Option
}

func defaultOptions() *options {
	return &options{}
}

// Option is a function that configures a Client.
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

// WithCatalog replaces the embedded canonical field catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(o *options) error {
		if cat == nil {
			return &errors.ValidationError{Field: "catalog", Message: "cannot be nil"}
		}
		o.catalog = cat
		return nil
	}
}

// WithMetadataClient supplies a metadata client directly, bypassing the
// bundled REST client. Mainly for tests and alternative transports.
func WithMetadataClient(client discovery.MetadataClient) Option {
	return func(o *options) error {
		if client == nil {
			return &errors.ValidationError{Field: "metadataClient", Message: "cannot be nil"}
		}
		o.metadataClient = client
		return nil
	}
}

// WithBaseURL sets the tenant metadata API base URL for the bundled REST
// client.
func WithBaseURL(baseURL string) Option {
	return func(o *options) error {
		if baseURL == "" {
			return &errors.ValidationError{Field: "baseURL", Message: "cannot be empty"}
		}
		o.baseURL = baseURL
		return nil
	}
}

// WithCredential sets the bearer credential for the bundled REST client.
func WithCredential(credential string) Option {
	return func(o *options) error {
		o.credential = credential
		return nil
	}
}

// WithCacheTTL sets the typedef cache TTL of the bundled REST client.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) error {
		o.cacheTTL = ttl
		return nil
	}
}

// WithDiscoveryOptions forwards options to the schema discoverer.
func WithDiscoveryOptions(opts ...discovery.Option) Option {
	return func(o *options) error {
		o.discoveryOpts = append(o.discoveryOpts, opts...)
		return nil
	}
}

// WithReconcileOptions forwards options to the field reconciler.
func WithReconcileOptions(opts ...reconcile.Option) Option {
	return func(o *options) error {
		o.reconcileOpts = append(o.reconcileOpts, opts...)
		return nil
	}
}

// WithRecommendOptions forwards options to the recommendation generator.
func WithRecommendOptions(opts ...recommend.Option) Option {
	return func(o *options) error {
		o.recommendOpts = append(o.recommendOpts, opts...)
		return nil
	}
}
