package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/canonmap/pkg/errors"
	"github.com/agentstation/canonmap/pkg/logging"
	"github.com/agentstation/canonmap/pkg/schema"
)

// Discoverer assembles tenant schema snapshots.
type Discoverer struct {
	client MetadataClient
	opts   *options
}

// New creates a Discoverer over the given metadata client.
func New(client MetadataClient, opts ...Option) (*Discoverer, error) {
	if client == nil {
		return nil, &errors.ValidationError{Field: "client", Message: "cannot be nil"}
	}
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Discoverer{client: client, opts: options}, nil
}

// discoveryResults collects the outcome of each concurrent sub-discovery.
// Each goroutine writes only its own slots, so no mutex is needed.
type discoveryResults struct {
	entityTypes    []EntityTypeDef
	entityTypesErr error

	customMetadata    []CustomMetadataDef
	customMetadataErr error

	classifications    []ClassificationDef
	classificationsErr error

	domains    []schema.Domain
	domainsErr error

	glossaries    []schema.Glossary
	glossariesErr error

	population []schema.PopulationStat
}

// Snapshot runs all enabled sub-discoveries concurrently and assembles a
// fresh tenant schema snapshot. Failure of the entity-type discovery is fatal;
// every optional component degrades to an empty collection.
func (d *Discoverer) Snapshot(ctx context.Context, tenantID string) (*schema.TenantSchemaSnapshot, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	var wg sync.WaitGroup
	results := &discoveryResults{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		results.entityTypes, results.entityTypesErr = d.client.EntityTypeDefs(ctx)
	}()

	if d.opts.includeCustomMetadata {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results.customMetadata, results.customMetadataErr = d.client.CustomMetadataDefs(ctx)
		}()
	}

	if d.opts.includeClassifications {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results.classifications, results.classificationsErr = d.client.ClassificationDefs(ctx)
		}()
	}

	if d.opts.includeDomains {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results.domains, results.domainsErr = d.client.Domains(ctx)
		}()
	}

	if d.opts.includeGlossaries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results.glossaries, results.glossariesErr = d.client.Glossaries(ctx)
		}()
	}

	if d.opts.includePopulation {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results.population = d.samplePopulation(ctx)
		}()
	}

	wg.Wait()

	if results.entityTypesErr != nil {
		return nil, errors.WrapDiscovery("entity_types", tenantID, results.entityTypesErr)
	}

	d.logDegraded(logger, tenantID, "custom_metadata", results.customMetadataErr)
	d.logDegraded(logger, tenantID, "classifications", results.classificationsErr)
	d.logDegraded(logger, tenantID, "domains", results.domainsErr)
	d.logDegraded(logger, tenantID, "glossaries", results.glossariesErr)

	snapshot := &schema.TenantSchemaSnapshot{
		TenantID:        tenantID,
		SourceURL:       d.opts.sourceURL,
		DiscoveredAt:    time.Now().UTC(),
		EntityTypes:     d.resolveEntityTypes(results.entityTypes),
		CustomMetadata:  d.buildCustomMetadata(results.customMetadata),
		Classifications: buildClassifications(results.classifications),
		Domains:         results.domains,
		Glossaries:      results.glossaries,
		Population:      results.population,
	}
	if snapshot.Domains == nil {
		snapshot.Domains = []schema.Domain{}
	}
	if snapshot.Glossaries == nil {
		snapshot.Glossaries = []schema.Glossary{}
	}
	if snapshot.Population == nil {
		snapshot.Population = []schema.PopulationStat{}
	}

	logger.Info().
		Str("tenant_id", tenantID).
		Int("entity_types", len(snapshot.EntityTypes)).
		Int("custom_metadata_sets", len(snapshot.CustomMetadata)).
		Int("classifications", len(snapshot.Classifications)).
		Int("domains", len(snapshot.Domains)).
		Int("glossaries", len(snapshot.Glossaries)).
		Int("population_stats", len(snapshot.Population)).
		Dur("duration", time.Since(start)).
		Msg("Tenant schema discovery complete")

	return snapshot, nil
}

// logDegraded records why an optional component came back empty. A missing
// capability (404) is expected and logs at debug; anything else warns.
func (d *Discoverer) logDegraded(logger *zerolog.Logger, tenantID, component string, err error) {
	if err == nil {
		return
	}
	if errors.IsFeatureNotEnabled(err) {
		logger.Debug().
			Str("tenant_id", tenantID).
			Str("component", component).
			Msg("Optional metadata capability not enabled; using empty result")
		return
	}
	logger.Warn().
		Err(err).
		Str("tenant_id", tenantID).
		Str("component", component).
		Msg("Optional discovery component failed; using empty result")
}
