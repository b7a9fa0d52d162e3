package discovery

import (
	"strings"

	"github.com/agentstation/canonmap/pkg/schema"
)

// buildCustomMetadata converts raw business attribute set definitions into
// snapshot form, applying the configured name filter and inferring primitive
// types from the tenant's type names.
func (d *Discoverer) buildCustomMetadata(defs []CustomMetadataDef) map[string]schema.CustomMetadataSet {
	sets := make(map[string]schema.CustomMetadataSet)
	for _, def := range defs {
		if !d.opts.customMetadataFilter.Empty() && !d.opts.customMetadataFilter.Match(def.DisplayName) && !d.opts.customMetadataFilter.Match(def.Name) {
			continue
		}

		attrs := make([]schema.CustomMetadataAttribute, 0, len(def.Attributes))
		for _, a := range def.Attributes {
			attrs = append(attrs, schema.CustomMetadataAttribute{
				Name:        a.Name,
				DisplayName: a.DisplayName,
				Description: a.Description,
				Type:        inferPrimitiveType(a),
				MultiValued: isMultiValued(a.TypeName),
				Required:    !a.IsOptional,
				EnumValues:  a.EnumValues,
			})
		}

		key := def.DisplayName
		if key == "" {
			key = def.Name
		}
		sets[key] = schema.CustomMetadataSet{
			Name:        def.Name,
			DisplayName: def.DisplayName,
			Attributes:  attrs,
		}
	}
	return sets
}

// isMultiValued reports whether the tenant type name denotes a collection,
// e.g. "array<string>".
func isMultiValued(typeName string) bool {
	return strings.HasPrefix(strings.ToLower(typeName), "array<")
}

// inferPrimitiveType maps a tenant type name onto the snapshot's primitive
// type vocabulary. Anything unrecognized falls back to string, which keeps
// unknown vendor types reconcilable instead of dropping them.
func inferPrimitiveType(a CustomMetadataAttributeDef) schema.PrimitiveType {
	typeName := strings.ToLower(a.TypeName)
	if inner, ok := strings.CutPrefix(typeName, "array<"); ok {
		typeName = strings.TrimSuffix(inner, ">")
	}

	if len(a.EnumValues) > 0 {
		return schema.TypeEnum
	}
	if a.Options != nil {
		if pt, ok := a.Options["primitiveType"]; ok {
			switch strings.ToLower(pt) {
			case "boolean":
				return schema.TypeBoolean
			case "int", "long", "float", "double", "number", "decimal":
				return schema.TypeNumber
			case "date":
				return schema.TypeDate
			case "enum":
				return schema.TypeEnum
			}
		}
	}

	switch typeName {
	case "boolean":
		return schema.TypeBoolean
	case "int", "long", "float", "double", "number", "decimal":
		return schema.TypeNumber
	case "date":
		return schema.TypeDate
	case "string", "text":
		return schema.TypeString
	default:
		return schema.TypeString
	}
}

// buildClassifications converts raw classification definitions into snapshot
// form, keyed and sorted downstream by name.
func buildClassifications(defs []ClassificationDef) []schema.Classification {
	out := make([]schema.Classification, 0, len(defs))
	for _, def := range defs {
		out = append(out, schema.Classification{
			Name:        def.Name,
			DisplayName: def.DisplayName,
			Description: def.Description,
			UsageCount:  def.UsageCount,
		})
	}
	return out
}
