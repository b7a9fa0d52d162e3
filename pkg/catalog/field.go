// Package catalog defines the vendor-neutral canonical metadata field catalog.
// A canonical field names one piece of governance metadata (owner, description,
// certification, sensitivity, lineage presence) independently of any tenant's
// schema. The catalog is immutable at run time; reconciliation maps each field
// onto a concrete tenant schema element.
package catalog

import (
	"github.com/agentstation/canonmap/pkg/errors"
)

// Category groups canonical fields by the governance concern they serve.
type Category string

// Canonical field categories.
const (
	CategoryIdentity      Category = "identity"
	CategoryDocumentation Category = "documentation"
	CategoryOwnership     Category = "ownership"
	CategoryGovernance    Category = "governance"
	CategoryLineage       Category = "lineage"
	CategoryUsage         Category = "usage"
	CategorySensitivity   Category = "sensitivity"
	CategoryQuality       Category = "quality"
)

// Lifecycle is the release state of a canonical field.
type Lifecycle string

// Canonical field lifecycle states.
const (
	LifecycleActive       Lifecycle = "active"
	LifecycleDeprecated   Lifecycle = "deprecated"
	LifecycleExperimental Lifecycle = "experimental"
)

// Signal names a governance signal a field contributes evidence toward.
type Signal string

// Governance signals.
const (
	SignalOwnership   Signal = "ownership"
	SignalSemantics   Signal = "semantics"
	SignalQuality     Signal = "quality"
	SignalSensitivity Signal = "sensitivity"
	SignalAccess      Signal = "access"
	SignalLineage     Signal = "lineage"
	SignalTrust       Signal = "trust"
	SignalFreshness   Signal = "freshness"
	SignalUsage       Signal = "usage"
	SignalAIReadiness Signal = "ai_readiness"
)

// SourceKind discriminates the FieldSource tagged union.
type SourceKind string

// Field source kinds.
const (
	SourceAttribute      SourceKind = "attribute"
	SourceCustomMetadata SourceKind = "custom_metadata"
	SourceClassification SourceKind = "classification"
	SourceRelationship   SourceKind = "relationship"
)

// CustomMetadataRef points at one attribute inside a named custom metadata set.
type CustomMetadataRef struct {
	Set       string `json:"set" yaml:"set"`
	Attribute string `json:"attribute" yaml:"attribute"`
}

// ClassificationRef describes how a field maps onto tenant classifications:
// either a pattern over classification names, or an explicit enumeration.
type ClassificationRef struct {
	Pattern string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Names   []string `json:"names,omitempty" yaml:"names,omitempty"`
}

// FieldSource is the tagged union describing where a canonical field's value
// lives in a tenant schema. Exactly one variant is populated, selected by Kind.
type FieldSource struct {
	Kind           SourceKind         `json:"kind" yaml:"kind"`
	Attribute      string             `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	CustomMetadata *CustomMetadataRef `json:"customMetadata,omitempty" yaml:"customMetadata,omitempty"`
	Classification *ClassificationRef `json:"classification,omitempty" yaml:"classification,omitempty"`
	Relationship   string             `json:"relationship,omitempty" yaml:"relationship,omitempty"`
}

// Validate checks that the populated variant agrees with the declared kind.
func (s FieldSource) Validate() error {
	switch s.Kind {
	case SourceAttribute:
		if s.Attribute == "" {
			return &errors.ValidationError{Field: "source.attribute", Message: "required for attribute sources"}
		}
	case SourceCustomMetadata:
		if s.CustomMetadata == nil || s.CustomMetadata.Set == "" || s.CustomMetadata.Attribute == "" {
			return &errors.ValidationError{Field: "source.customMetadata", Message: "set and attribute required for custom metadata sources"}
		}
	case SourceClassification:
		if s.Classification == nil || (s.Classification.Pattern == "" && len(s.Classification.Names) == 0) {
			return &errors.ValidationError{Field: "source.classification", Message: "pattern or names required for classification sources"}
		}
	case SourceRelationship:
		if s.Relationship == "" {
			return &errors.ValidationError{Field: "source.relationship", Message: "required for relationship sources"}
		}
	default:
		return &errors.ValidationError{Field: "source.kind", Value: string(s.Kind), Message: "unknown source kind"}
	}
	return nil
}

// SignalContribution is one (signal, weight) pair a field contributes.
type SignalContribution struct {
	Signal Signal  `json:"signal" yaml:"signal"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Field is one canonical metadata field definition.
type Field struct {
	ID          string               `json:"id" yaml:"id"`
	DisplayName string               `json:"displayName" yaml:"displayName"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Category    Category             `json:"category" yaml:"category"`
	Aliases     []string             `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Source      FieldSource          `json:"source" yaml:"source"`
	Signals     []SignalContribution `json:"signals,omitempty" yaml:"signals,omitempty"`
	Lifecycle   Lifecycle            `json:"lifecycle" yaml:"lifecycle"`
}

// Validate checks structural integrity of a field definition.
func (f Field) Validate() error {
	if f.ID == "" {
		return &errors.ValidationError{Field: "id", Message: "cannot be empty"}
	}
	if f.DisplayName == "" {
		return &errors.ValidationError{Field: "displayName", Message: "cannot be empty"}
	}
	switch f.Lifecycle {
	case LifecycleActive, LifecycleDeprecated, LifecycleExperimental:
	default:
		return &errors.ValidationError{Field: "lifecycle", Value: string(f.Lifecycle), Message: "unknown lifecycle"}
	}
	return f.Source.Validate()
}

// IsSensitivityRelated reports whether the field participates in sensitivity
// matching (the classification matcher's weak fallback applies to these).
func (f Field) IsSensitivityRelated() bool {
	if f.Category == CategorySensitivity {
		return true
	}
	for _, c := range f.Signals {
		if c.Signal == SignalSensitivity {
			return true
		}
	}
	return false
}
