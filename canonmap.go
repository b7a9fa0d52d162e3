// Package canonmap reconciles a canonical metadata field catalog against the
// live schema of a tenant metadata system. It discovers the tenant's entity
// types, custom metadata, classifications, domains, glossaries, and field
// population rates; matches every canonical field onto a concrete tenant
// schema element with a confidence score; recommends tenant-defined fields
// worth promoting into the catalog; and maintains a versioned per-tenant
// configuration that preserves human mapping decisions across re-discoveries.
//
// Basic usage:
//
//	client, err := canonmap.New(
//		canonmap.WithBaseURL("https://acme.example.com"),
//		canonmap.WithCredential(token),
//	)
//	if err != nil {
//		return err
//	}
//	snap, err := client.Discover(ctx, "acme")
//	if err != nil {
//		return err
//	}
//	report, err := client.Reconcile(ctx, snap)
//	if err != nil {
//		return err
//	}
//	cfg := client.InitialConfiguration("acme", report)
package canonmap

import (
	"context"

	"github.com/agentstation/canonmap/internal/metadataapi"
	"github.com/agentstation/canonmap/internal/transport"
	"github.com/agentstation/canonmap/pkg/catalog"
	"github.com/agentstation/canonmap/pkg/discovery"
	"github.com/agentstation/canonmap/pkg/errors"
	"github.com/agentstation/canonmap/pkg/reconcile"
	"github.com/agentstation/canonmap/pkg/recommend"
	"github.com/agentstation/canonmap/pkg/schema"
	"github.com/agentstation/canonmap/pkg/tenantconfig"
)

// Client is the entry point to the reconciliation engine. It bundles the
// canonical catalog with a reconciler and recommendation generator, and can
// discover tenant schemas through the bundled REST client or any supplied
// discovery.MetadataClient.
type Client struct {
	opts        *options
	catalog     *catalog.Catalog
	reconciler  *reconcile.Reconciler
	recommender *recommend.Generator
}

// New creates a Client. Without WithCatalog the embedded canonical catalog is
// used.
func New(opts ...Option) (*Client, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	cat := options.catalog
	if cat == nil {
		cat, err = catalog.Default()
		if err != nil {
			return nil, err
		}
	}

	reconciler, err := reconcile.New(cat, options.reconcileOpts...)
	if err != nil {
		return nil, err
	}
	recommender, err := recommend.New(options.recommendOpts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		opts:        options,
		catalog:     cat,
		reconciler:  reconciler,
		recommender: recommender,
	}, nil
}

// Catalog returns the canonical field catalog in use.
func (c *Client) Catalog() *catalog.Catalog {
	return c.catalog
}

// metadataClient resolves the metadata client for a tenant: an explicitly
// supplied one wins, otherwise the bundled REST client is built from the
// configured base URL and credential.
func (c *Client) metadataClient(tenantID string) (discovery.MetadataClient, error) {
	if c.opts.metadataClient != nil {
		return c.opts.metadataClient, nil
	}
	if c.opts.baseURL == "" {
		return nil, &errors.ConfigError{
			TenantID: tenantID,
			Message:  "no metadata client configured; supply WithBaseURL or WithMetadataClient",
		}
	}

	var apiOpts []metadataapi.Option
	if c.opts.cacheTTL != 0 {
		apiOpts = append(apiOpts, metadataapi.WithCacheTTL(c.opts.cacheTTL))
	}
	t := transport.New(tenantID, c.opts.baseURL, c.opts.credential, nil)
	return metadataapi.New(t, apiOpts...), nil
}

// Discover assembles a fresh schema snapshot for a tenant.
func (c *Client) Discover(ctx context.Context, tenantID string) (*schema.TenantSchemaSnapshot, error) {
	mc, err := c.metadataClient(tenantID)
	if err != nil {
		return nil, err
	}

	discOpts := c.opts.discoveryOpts
	if c.opts.baseURL != "" {
		discOpts = append([]discovery.Option{discovery.WithSourceURL(c.opts.baseURL)}, discOpts...)
	}
	d, err := discovery.New(mc, discOpts...)
	if err != nil {
		return nil, err
	}
	return d.Snapshot(ctx, tenantID)
}

// Reconcile matches every in-scope canonical field against a snapshot.
func (c *Client) Reconcile(ctx context.Context, snap *schema.TenantSchemaSnapshot) (*reconcile.Report, error) {
	return c.reconciler.All(ctx, snap)
}

// Recommend scans a snapshot for tenant-defined fields worth promoting into
// the canonical catalog. The reconciliation report, when given, suppresses
// tenant fields that already back a canonical mapping.
func (c *Client) Recommend(ctx context.Context, snap *schema.TenantSchemaSnapshot, report *reconcile.Report) (*recommend.Report, error) {
	return c.recommender.Generate(ctx, snap, report)
}

// ImprovementSuggestions proposes governance improvements from a snapshot and
// reconciliation report.
func (c *Client) ImprovementSuggestions(snap *schema.TenantSchemaSnapshot, report *reconcile.Report) []recommend.ImprovementSuggestion {
	return c.recommender.ImprovementSuggestions(snap, report)
}

// InitialConfiguration seeds a tenant configuration from a reconciliation
// report.
func (c *Client) InitialConfiguration(tenantID string, report *reconcile.Report) tenantconfig.Configuration {
	return tenantconfig.NewFromReport(tenantID, c.opts.baseURL, report)
}

// MergeConfiguration folds a fresh reconciliation report into an existing
// configuration, preserving confirmed and rejected mappings.
func (c *Client) MergeConfiguration(cfg tenantconfig.Configuration, report *reconcile.Report) (tenantconfig.Configuration, error) {
	return cfg.Merge(report)
}

// Completeness reports the configuration's coverage of the catalog in use.
func (c *Client) Completeness(cfg tenantconfig.Configuration) tenantconfig.Completeness {
	return cfg.Completeness(c.catalog.Len())
}
