package catalog

import (
	"github.com/agentstation/canonmap/pkg/errors"
)

// Catalog is an immutable, ordered collection of canonical fields.
type Catalog struct {
	fields []Field
	index  map[string]int
}

// New creates a catalog from the given fields. Field IDs must be unique and
// every field must validate.
func New(fields ...Field) (*Catalog, error) {
	c := &Catalog{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		if err := f.Validate(); err != nil {
			return nil, errors.WrapValidation("field "+f.ID, err)
		}
		if _, exists := c.index[f.ID]; exists {
			return nil, &errors.ValidationError{
				Field:   "id",
				Value:   f.ID,
				Message: "duplicate canonical field ID",
			}
		}
		c.index[f.ID] = len(c.fields)
		c.fields = append(c.fields, f)
	}

	return c, nil
}

// Fields returns a copy of the catalog's fields in declaration order.
func (c *Catalog) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// Field looks up a canonical field by ID.
func (c *Catalog) Field(id string) (Field, bool) {
	i, ok := c.index[id]
	if !ok {
		return Field{}, false
	}
	return c.fields[i], true
}

// Len returns the number of fields in the catalog.
func (c *Catalog) Len() int {
	return len(c.fields)
}

// FilterOptions selects fields by lifecycle for a reconciliation run.
type FilterOptions struct {
	// IncludeExperimental includes fields still marked experimental.
	IncludeExperimental bool
	// SkipDeprecated excludes deprecated fields.
	SkipDeprecated bool
}

// Filter returns a new catalog containing only fields passing the lifecycle
// filter. Active fields always pass.
func (c *Catalog) Filter(opts FilterOptions) *Catalog {
	filtered := &Catalog{
		fields: make([]Field, 0, len(c.fields)),
		index:  make(map[string]int),
	}

	for _, f := range c.fields {
		switch f.Lifecycle {
		case LifecycleExperimental:
			if !opts.IncludeExperimental {
				continue
			}
		case LifecycleDeprecated:
			if opts.SkipDeprecated {
				continue
			}
		}
		filtered.index[f.ID] = len(filtered.fields)
		filtered.fields = append(filtered.fields, f)
	}

	return filtered
}
