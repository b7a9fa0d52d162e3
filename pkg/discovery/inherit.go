package discovery

import (
	"sort"

	"github.com/agentstation/canonmap/pkg/schema"
)

// resolveEntityTypes resolves attribute inheritance for every discovered
// entity type: each type reports its own attributes unioned with those of its
// entire supertype chain. Cycles in the supertype graph are tolerated via a
// visited set.
func (d *Discoverer) resolveEntityTypes(defs []EntityTypeDef) map[string]schema.EntityType {
	byName := make(map[string]EntityTypeDef, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}

	resolved := make(map[string]schema.EntityType)
	for _, def := range defs {
		if !d.opts.entityTypeFilter.Empty() && !d.opts.entityTypeFilter.Match(def.Name) {
			continue
		}

		attrs := make(map[string]bool)
		relAttrs := make(map[string]bool)
		visited := make(map[string]bool)
		collectAttributes(def.Name, byName, visited, attrs, relAttrs)

		resolved[def.Name] = schema.EntityType{
			Name:                   def.Name,
			SuperTypes:             def.SuperTypes,
			Attributes:             sortedKeys(attrs),
			RelationshipAttributes: sortedKeys(relAttrs),
		}
	}
	return resolved
}

// collectAttributes walks the supertype chain depth-first, unioning attribute
// and relationship-attribute names.
func collectAttributes(name string, byName map[string]EntityTypeDef, visited, attrs, relAttrs map[string]bool) {
	if visited[name] {
		return
	}
	visited[name] = true

	def, ok := byName[name]
	if !ok {
		return
	}

	for _, a := range def.Attributes {
		attrs[a.Name] = true
	}
	for _, a := range def.RelationshipAttributes {
		relAttrs[a.Name] = true
	}
	for _, super := range def.SuperTypes {
		collectAttributes(super, byName, visited, attrs, relAttrs)
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
