package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/canonmap/pkg/catalog"
)

var titleCaser = cases.Title(language.English)

// suggest builds the ordered next-step list for a field no matcher could
// place. Ordering reflects priority; "skip" is always last so callers have a
// universal fallback.
func (r *Reconciler) suggest(f catalog.Field, view *schemaView) []Suggestion {
	suggestions := []Suggestion{
		{
			Action:   ActionCreateCustomMetadata,
			Detail:   fmt.Sprintf("Create a custom metadata attribute for %q", f.DisplayName),
			Template: customMetadataTemplate(f),
		},
	}

	if similar := similarAttributes(f, view, 3); len(similar) > 0 {
		suggestions = append(suggestions, Suggestion{
			Action: ActionMapExistingAttribute,
			Detail: fmt.Sprintf("Map %q to a similarly named existing attribute", f.DisplayName),
			Target: strings.Join(similar, ", "),
		})
	}

	if f.IsSensitivityRelated() && view.snapshot.HasClassifications() {
		suggestions = append(suggestions, Suggestion{
			Action: ActionUseClassification,
			Detail: fmt.Sprintf("Represent %q through tenant classifications", f.DisplayName),
		})
	}

	suggestions = append(suggestions, Suggestion{
		Action: ActionSkip,
		Detail: fmt.Sprintf("Exclude %q from this tenant's configuration", f.DisplayName),
	})
	return suggestions
}

// customMetadataTemplate proposes a ready-to-create business attribute for an
// unmatched field, grouped under a set named after the field's category.
func customMetadataTemplate(f catalog.Field) *CustomMetadataTemplate {
	return &CustomMetadataTemplate{
		Set:         titleCaser.String(string(f.Category)),
		Attribute:   camelCase(f.ID),
		DisplayName: f.DisplayName,
		Type:        "string",
	}
}

// similarAttributes returns up to limit attribute names sharing a substring
// with the field's ID, most similar (longest shared form) first.
func similarAttributes(f catalog.Field, view *schemaView, limit int) []string {
	own := strings.ToLower(stripSeparators(f.ID))
	if own == "" {
		return nil
	}

	type scored struct {
		name  string
		score int
	}
	candidates := make([]scored, 0)
	for _, name := range view.snapshot.AttributeNames() {
		other := strings.ToLower(stripSeparators(name))
		if strings.Contains(other, own) || strings.Contains(own, other) {
			candidates = append(candidates, scored{name: name, score: len(other)})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.name)
	}
	return names
}
