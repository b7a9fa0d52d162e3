// Package schema defines the tenant schema snapshot: an immutable picture of
// one tenant's live metadata schema produced by a discovery run. Snapshots are
// plain values; every discovery run produces a fresh, fully independent one.
package schema

import (
	"sort"
	"time"
)

// PrimitiveType is the inferred primitive type of a custom metadata attribute.
type PrimitiveType string

// Custom metadata primitive types.
const (
	TypeBoolean PrimitiveType = "boolean"
	TypeNumber  PrimitiveType = "number"
	TypeDate    PrimitiveType = "date"
	TypeEnum    PrimitiveType = "enum"
	TypeString  PrimitiveType = "string"
)

// EntityType is one entity type definition with inheritance already resolved:
// Attributes and RelationshipAttributes include everything unioned in from the
// type's supertype chain.
type EntityType struct {
	Name                   string   `json:"name"`
	SuperTypes             []string `json:"superTypes,omitempty"`
	Attributes             []string `json:"attributes,omitempty"`
	RelationshipAttributes []string `json:"relationshipAttributes,omitempty"`
}

// CustomMetadataAttribute is one typed attribute inside a custom metadata set.
type CustomMetadataAttribute struct {
	Name        string        `json:"name"`
	DisplayName string        `json:"displayName,omitempty"`
	Description string        `json:"description,omitempty"`
	Type        PrimitiveType `json:"type"`
	MultiValued bool          `json:"multiValued,omitempty"`
	Required    bool          `json:"required,omitempty"`
	EnumValues  []string      `json:"enumValues,omitempty"`
}

// CustomMetadataSet is a tenant-defined named set of typed attributes.
type CustomMetadataSet struct {
	Name        string                    `json:"name"`
	DisplayName string                    `json:"displayName,omitempty"`
	Attributes  []CustomMetadataAttribute `json:"attributes,omitempty"`
}

// Classification is a tenant-defined tag type applicable to assets.
type Classification struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	UsageCount  int    `json:"usageCount,omitempty"`
}

// Domain is one node of the tenant's domain hierarchy.
type Domain struct {
	GUID          string `json:"guid"`
	Name          string `json:"name"`
	QualifiedName string `json:"qualifiedName,omitempty"`
	ParentGUID    string `json:"parentGuid,omitempty"`
}

// Glossary is one business glossary defined on the tenant.
type Glossary struct {
	GUID          string `json:"guid"`
	Name          string `json:"name"`
	QualifiedName string `json:"qualifiedName,omitempty"`
	TermCount     int    `json:"termCount,omitempty"`
}

// PopulationStat records the sampled population rate of one attribute on one
// asset type: the fraction of sampled assets for which the attribute is set.
type PopulationStat struct {
	AssetType       string  `json:"assetType"`
	Attribute       string  `json:"attribute"`
	TotalAssets     int64   `json:"totalAssets"`
	PopulatedAssets int64   `json:"populatedAssets"`
	Rate            float64 `json:"rate"`
}

// TenantSchemaSnapshot is the complete discovered schema of one tenant at one
// point in time.
type TenantSchemaSnapshot struct {
	TenantID        string                       `json:"tenantId"`
	SourceURL       string                       `json:"sourceUrl,omitempty"`
	DiscoveredAt    time.Time                    `json:"discoveredAt"`
	EntityTypes     map[string]EntityType        `json:"entityTypes"`
	CustomMetadata  map[string]CustomMetadataSet `json:"customMetadata"`
	Classifications []Classification             `json:"classifications"`
	Domains         []Domain                     `json:"domains"`
	Glossaries      []Glossary                   `json:"glossaries"`
	Population      []PopulationStat             `json:"population"`
}

// HasAttribute reports whether any entity type declares the attribute.
func (s *TenantSchemaSnapshot) HasAttribute(name string) bool {
	for _, et := range s.EntityTypes {
		for _, a := range et.Attributes {
			if a == name {
				return true
			}
		}
	}
	return false
}

// HasRelationshipAttribute reports whether any entity type declares the
// relationship attribute.
func (s *TenantSchemaSnapshot) HasRelationshipAttribute(name string) bool {
	for _, et := range s.EntityTypes {
		for _, a := range et.RelationshipAttributes {
			if a == name {
				return true
			}
		}
	}
	return false
}

// AttributeNames returns the sorted union of attribute names across all entity
// types.
func (s *TenantSchemaSnapshot) AttributeNames() []string {
	seen := make(map[string]bool)
	for _, et := range s.EntityTypes {
		for _, a := range et.Attributes {
			seen[a] = true
		}
	}
	names := make([]string, 0, len(seen))
	for a := range seen {
		names = append(names, a)
	}
	sort.Strings(names)
	return names
}

// PopulationRate returns the best observed population rate for an attribute
// across all sampled asset types. The second return is false when the
// attribute was not sampled.
func (s *TenantSchemaSnapshot) PopulationRate(attribute string) (float64, bool) {
	best := 0.0
	found := false
	for _, p := range s.Population {
		if p.Attribute == attribute {
			found = true
			if p.Rate > best {
				best = p.Rate
			}
		}
	}
	return best, found
}

// Classification looks up a discovered classification by name.
func (s *TenantSchemaSnapshot) Classification(name string) (Classification, bool) {
	for _, c := range s.Classifications {
		if c.Name == name {
			return c, true
		}
	}
	return Classification{}, false
}

// HasCustomMetadata reports whether the tenant has any custom metadata sets.
func (s *TenantSchemaSnapshot) HasCustomMetadata() bool {
	return len(s.CustomMetadata) > 0
}

// HasClassifications reports whether the tenant has any classifications.
func (s *TenantSchemaSnapshot) HasClassifications() bool {
	return len(s.Classifications) > 0
}

// HasDomains reports whether the tenant has any domains.
func (s *TenantSchemaSnapshot) HasDomains() bool {
	return len(s.Domains) > 0
}
