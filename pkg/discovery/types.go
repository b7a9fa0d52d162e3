// Package discovery assembles a tenant schema snapshot by querying the
// tenant's metadata system for type definitions, custom metadata,
// classifications, domains, glossaries, and sampled field population rates.
//
// The package owns no transport of its own: it consumes a MetadataClient,
// letting callers plug in the bundled REST implementation or a fake.
package discovery

import (
	"context"

	"github.com/agentstation/canonmap/pkg/schema"
)

// MetadataClient performs remote metadata, type, and search queries against a
// tenant. Implementations own all transport concerns, including timeouts,
// retries, and caching.
type MetadataClient interface {
	// EntityTypeDefs returns raw entity type definitions, inheritance unresolved.
	EntityTypeDefs(ctx context.Context) ([]EntityTypeDef, error)

	// CustomMetadataDefs returns business attribute set definitions.
	CustomMetadataDefs(ctx context.Context) ([]CustomMetadataDef, error)

	// ClassificationDefs returns classification (tag) definitions.
	ClassificationDefs(ctx context.Context) ([]ClassificationDef, error)

	// Domains returns the tenant's domain hierarchy.
	Domains(ctx context.Context) ([]schema.Domain, error)

	// Glossaries returns the tenant's business glossaries.
	Glossaries(ctx context.Context) ([]schema.Glossary, error)

	// CountAssets returns the total number of assets of the given type.
	CountAssets(ctx context.Context, assetType string) (int64, error)

	// CountAssetsWithAttribute returns the number of assets of the given type
	// for which the attribute is set.
	CountAssetsWithAttribute(ctx context.Context, assetType, attribute string) (int64, error)
}

// AttributeDef is one raw attribute definition on an entity type.
type AttributeDef struct {
	Name       string `json:"name"`
	TypeName   string `json:"typeName"`
	IsOptional bool   `json:"isOptional"`
}

// EntityTypeDef is one raw entity type definition as returned by the tenant,
// before supertype inheritance is resolved.
type EntityTypeDef struct {
	Name                   string         `json:"name"`
	SuperTypes             []string       `json:"superTypes"`
	Attributes             []AttributeDef `json:"attributeDefs"`
	RelationshipAttributes []AttributeDef `json:"relationshipAttributeDefs"`
}

// CustomMetadataAttributeDef is one raw business attribute definition.
type CustomMetadataAttributeDef struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"displayName"`
	Description string            `json:"description"`
	TypeName    string            `json:"typeName"`
	IsOptional  bool              `json:"isOptional"`
	Options     map[string]string `json:"options"`
	EnumValues  []string          `json:"enumValues"`
}

// CustomMetadataDef is one raw business attribute set definition.
type CustomMetadataDef struct {
	Name        string                       `json:"name"`
	DisplayName string                       `json:"displayName"`
	Attributes  []CustomMetadataAttributeDef `json:"attributeDefs"`
}

// ClassificationDef is one raw classification definition. UsageCount is how
// many assets carry the classification; type definitions don't include usage,
// so clients fill it in from per-classification count queries.
type ClassificationDef struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	UsageCount  int    `json:"usageCount"`
}
