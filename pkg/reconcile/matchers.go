package reconcile

import (
	"fmt"
	"strings"

	"github.com/agentstation/canonmap/internal/matcher"
	"github.com/agentstation/canonmap/pkg/catalog"
	"github.com/agentstation/canonmap/pkg/schema"
)

// schemaView is the per-run lookup surface over a snapshot, pre-scoped to the
// configured asset types.
type schemaView struct {
	snapshot      *schema.TenantSchemaSnapshot
	attributes    map[string]bool
	relationships map[string]bool
}

func newSchemaView(snap *schema.TenantSchemaSnapshot, assetTypes []string) *schemaView {
	v := &schemaView{
		snapshot:      snap,
		attributes:    make(map[string]bool),
		relationships: make(map[string]bool),
	}

	scope := make(map[string]bool, len(assetTypes))
	for _, t := range assetTypes {
		scope[t] = true
	}

	for name, et := range snap.EntityTypes {
		if len(scope) > 0 && !scope[name] {
			continue
		}
		for _, a := range et.Attributes {
			v.attributes[a] = true
		}
		for _, a := range et.RelationshipAttributes {
			v.relationships[a] = true
		}
	}
	return v
}

func (v *schemaView) hasAttribute(name string) bool    { return v.attributes[name] }
func (v *schemaView) hasRelationship(name string) bool { return v.relationships[name] }

func (v *schemaView) attributeMatch(name string, confidence float64, reason string) *Match {
	m := &Match{
		Kind:       catalog.SourceAttribute,
		Path:       name,
		Confidence: confidence,
		Reason:     reason,
	}
	if rate, ok := v.snapshot.PopulationRate(name); ok {
		m.PopulationRate = &rate
	}
	return m
}

// matchNative matches a canonical field against native attribute names. Exact
// forms of the field ID are tried before aliases so that a direct hit always
// outranks an alias hit.
func (r *Reconciler) matchNative(f catalog.Field, view *schemaView) *Match {
	c := r.opts.confidence

	exact := []string{f.ID, camelCase(f.ID)}
	if f.Source.Kind == catalog.SourceAttribute {
		exact = append([]string{f.Source.Attribute}, exact...)
	}
	for _, candidate := range exact {
		if view.hasAttribute(candidate) {
			return view.attributeMatch(candidate, c.Exact,
				fmt.Sprintf("attribute %q matches field %q exactly", candidate, f.ID))
		}
	}

	if r.opts.exactOnly {
		return nil
	}

	aliased := append([]string{}, f.Aliases...)
	aliased = append(aliased, stripSeparators(f.ID))
	for _, candidate := range aliased {
		if view.hasAttribute(candidate) {
			return view.attributeMatch(candidate, c.Alias,
				fmt.Sprintf("attribute %q matches an alias of field %q", candidate, f.ID))
		}
	}
	return nil
}

// matchCustomMetadata matches against tenant custom metadata. A declared
// (set, attribute) source is looked up exactly; failing that, the field's ID
// and display name are fuzzy-matched against every attribute's name and
// display name by case-insensitive substring containment.
func (r *Reconciler) matchCustomMetadata(f catalog.Field, view *schemaView) *Match {
	c := r.opts.confidence
	snap := view.snapshot

	if ref := f.Source.CustomMetadata; f.Source.Kind == catalog.SourceCustomMetadata && ref != nil {
		if set, attr, ok := findCustomMetadataAttribute(snap, ref.Set, ref.Attribute); ok {
			return &Match{
				Kind:       catalog.SourceCustomMetadata,
				Path:       set + "." + attr,
				Confidence: c.CMExact,
				Reason:     fmt.Sprintf("custom metadata %s.%s exists on tenant", set, attr),
			}
		}
	}

	if r.opts.exactOnly {
		return nil
	}

	for setName, set := range snap.CustomMetadata {
		for _, attr := range set.Attributes {
			if fuzzyNameMatch(f, attr.Name) || fuzzyNameMatch(f, attr.DisplayName) {
				return &Match{
					Kind:       catalog.SourceCustomMetadata,
					Path:       setName + "." + attr.Name,
					Confidence: c.CMFuzzy,
					Reason:     fmt.Sprintf("custom metadata attribute %q resembles field %q", attr.Name, f.ID),
				}
			}
		}
	}
	return nil
}

// findCustomMetadataAttribute resolves a (set, attribute) reference against
// the snapshot, accepting either display names or internal names.
func findCustomMetadataAttribute(snap *schema.TenantSchemaSnapshot, setRef, attrRef string) (string, string, bool) {
	for key, set := range snap.CustomMetadata {
		if !strings.EqualFold(key, setRef) && !strings.EqualFold(set.Name, setRef) && !strings.EqualFold(set.DisplayName, setRef) {
			continue
		}
		for _, attr := range set.Attributes {
			if strings.EqualFold(attr.Name, attrRef) || strings.EqualFold(attr.DisplayName, attrRef) {
				return key, attr.Name, true
			}
		}
	}
	return "", "", false
}

// matchClassification matches fields that declare a classification source
// (pattern or enumerated names). Sensitivity-related fields without a
// declared source fall back to a weak name-substring match.
func (r *Reconciler) matchClassification(f catalog.Field, view *schemaView) *Match {
	c := r.opts.confidence
	snap := view.snapshot

	if ref := f.Source.Classification; ref != nil {
		for _, want := range ref.Names {
			for _, cls := range snap.Classifications {
				if strings.EqualFold(cls.Name, want) || strings.EqualFold(cls.DisplayName, want) {
					return classificationMatch(cls, c.ClassExact,
						fmt.Sprintf("classification %q is enumerated by field %q", classificationLabel(cls), f.ID))
				}
			}
		}
		if ref.Pattern != "" && !r.opts.exactOnly {
			m, err := matcher.New(matcher.Regex, ref.Pattern)
			if err == nil {
				for _, cls := range snap.Classifications {
					if m.Match(cls.Name) || m.Match(cls.DisplayName) {
						return classificationMatch(cls, c.ClassPattern,
							fmt.Sprintf("classification %q matches pattern for field %q", classificationLabel(cls), f.ID))
					}
				}
			}
		}
		return nil
	}

	if r.opts.exactOnly || !f.IsSensitivityRelated() {
		return nil
	}
	for _, cls := range snap.Classifications {
		if fuzzyNameMatch(f, cls.Name) || fuzzyNameMatch(f, cls.DisplayName) {
			return classificationMatch(cls, c.ClassWeak,
				fmt.Sprintf("classification %q loosely resembles sensitivity field %q", classificationLabel(cls), f.ID))
		}
	}
	return nil
}

func classificationMatch(cls schema.Classification, confidence float64, reason string) *Match {
	return &Match{
		Kind:       catalog.SourceClassification,
		Path:       classificationLabel(cls),
		Confidence: confidence,
		Reason:     reason,
	}
}

func classificationLabel(cls schema.Classification) string {
	if cls.DisplayName != "" {
		return cls.DisplayName
	}
	return cls.Name
}

// matchRelationship matches fields whose source is a relationship against the
// discovered relationship attributes.
func (r *Reconciler) matchRelationship(f catalog.Field, view *schemaView) *Match {
	if f.Source.Kind != catalog.SourceRelationship {
		return nil
	}
	c := r.opts.confidence

	name := f.Source.Relationship
	if view.hasRelationship(name) {
		return &Match{
			Kind:       catalog.SourceRelationship,
			Path:       name,
			Confidence: c.Exact,
			Reason:     fmt.Sprintf("relationship %q exists on tenant", name),
		}
	}

	if r.opts.exactOnly {
		return nil
	}
	candidates := append([]string{camelCase(f.ID), stripSeparators(f.ID)}, f.Aliases...)
	for _, candidate := range candidates {
		if view.hasRelationship(candidate) {
			return &Match{
				Kind:       catalog.SourceRelationship,
				Path:       candidate,
				Confidence: c.Alias,
				Reason:     fmt.Sprintf("relationship %q matches an alias of field %q", candidate, f.ID),
			}
		}
	}
	return nil
}

// fuzzyNameMatch reports case-insensitive substring containment in either
// direction between the field's ID or display name and a candidate name.
func fuzzyNameMatch(f catalog.Field, candidate string) bool {
	if candidate == "" {
		return false
	}
	for _, own := range []string{stripSeparators(f.ID), stripSeparators(f.DisplayName)} {
		if own == "" {
			continue
		}
		other := stripSeparators(candidate)
		if containsFold(own, other) || containsFold(other, own) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// camelCase converts a snake_case field ID to the camelCase form tenant
// attributes conventionally use.
func camelCase(id string) string {
	parts := strings.Split(id, "_")
	if len(parts) == 1 {
		return id
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// stripSeparators removes underscores, hyphens, and spaces.
func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return r
	}, s)
}
