package tenantconfig

import (
	"time"

	"github.com/agentstation/canonmap/pkg/errors"
)

// Confirm marks a field mapping as confirmed by a reviewer.
func (c Configuration) Confirm(fieldID, confirmedBy string) (Configuration, error) {
	return c.setDecision(fieldID, StatusConfirmed, confirmedBy)
}

// Reject marks a field mapping as rejected by a reviewer.
func (c Configuration) Reject(fieldID, rejectedBy string) (Configuration, error) {
	return c.setDecision(fieldID, StatusRejected, rejectedBy)
}

func (c Configuration) setDecision(fieldID string, status MappingStatus, by string) (Configuration, error) {
	out := c.clone()
	for i, m := range out.Mappings {
		if m.CanonicalFieldID != fieldID {
			continue
		}
		now := time.Now().UTC()
		out.Mappings[i].Status = status
		out.Mappings[i].ConfirmedBy = by
		out.Mappings[i].ConfirmedAt = &now
		out.bump()
		return out, nil
	}
	return Configuration{}, &errors.NotFoundError{Resource: "field mapping", ID: fieldID}
}

// Override replaces a mapping's source with a human-chosen one and marks it
// confirmed. A field without an existing mapping gets a new confirmed one.
func (c Configuration) Override(fieldID string, source TenantSource, by string) (Configuration, error) {
	if source.Path == "" {
		return Configuration{}, &errors.ValidationError{Field: "source.path", Message: "cannot be empty"}
	}

	out := c.clone()
	now := time.Now().UTC()
	mapping := FieldMapping{
		CanonicalFieldID: fieldID,
		Source:           &source,
		Status:           StatusConfirmed,
		Confidence:       1.0,
		ConfirmedBy:      by,
		ConfirmedAt:      &now,
	}

	replaced := false
	for i, m := range out.Mappings {
		if m.CanonicalFieldID == fieldID {
			out.Mappings[i] = mapping
			replaced = true
			break
		}
	}
	if !replaced {
		out.Mappings = append(out.Mappings, mapping)
	}
	out.bump()
	return out, nil
}

// AddCustomField registers a tenant-defined field. Field IDs must be unique.
func (c Configuration) AddCustomField(field CustomField) (Configuration, error) {
	if field.ID == "" {
		return Configuration{}, &errors.ValidationError{Field: "id", Message: "cannot be empty"}
	}
	for _, existing := range c.CustomFields {
		if existing.ID == field.ID {
			return Configuration{}, &errors.ValidationError{
				Field:   "id",
				Value:   field.ID,
				Message: "duplicate custom field ID",
			}
		}
	}

	out := c.clone()
	out.CustomFields = append(out.CustomFields, field)
	out.bump()
	return out, nil
}

// RemoveCustomField removes a tenant-defined field by ID.
func (c Configuration) RemoveCustomField(fieldID string) (Configuration, error) {
	out := c.clone()
	for i, f := range out.CustomFields {
		if f.ID == fieldID {
			out.CustomFields = append(out.CustomFields[:i], out.CustomFields[i+1:]...)
			out.bump()
			return out, nil
		}
	}
	return Configuration{}, &errors.NotFoundError{Resource: "custom field", ID: fieldID}
}

// AddClassificationMapping routes a classification to a signal. A mapping for
// the same classification is replaced.
func (c Configuration) AddClassificationMapping(mapping ClassificationMapping) (Configuration, error) {
	if mapping.Classification == "" {
		return Configuration{}, &errors.ValidationError{Field: "classification", Message: "cannot be empty"}
	}

	out := c.clone()
	replaced := false
	for i, existing := range out.ClassificationMappings {
		if existing.Classification == mapping.Classification {
			out.ClassificationMappings[i] = mapping
			replaced = true
			break
		}
	}
	if !replaced {
		out.ClassificationMappings = append(out.ClassificationMappings, mapping)
	}
	out.bump()
	return out, nil
}

// RemoveClassificationMapping removes the mapping for a classification.
func (c Configuration) RemoveClassificationMapping(classification string) (Configuration, error) {
	out := c.clone()
	for i, m := range out.ClassificationMappings {
		if m.Classification == classification {
			out.ClassificationMappings = append(out.ClassificationMappings[:i], out.ClassificationMappings[i+1:]...)
			out.bump()
			return out, nil
		}
	}
	return Configuration{}, &errors.NotFoundError{Resource: "classification mapping", ID: classification}
}

// Exclude removes a canonical field from the tenant's scope. Any existing
// mapping for it is dropped so the field isn't counted twice.
func (c Configuration) Exclude(fieldID string) (Configuration, error) {
	if c.IsExcluded(fieldID) {
		return Configuration{}, &errors.ValidationError{
			Field:   "fieldId",
			Value:   fieldID,
			Message: "already excluded",
		}
	}

	out := c.clone()
	out.ExcludedFields = append(out.ExcludedFields, fieldID)
	for i, m := range out.Mappings {
		if m.CanonicalFieldID == fieldID {
			out.Mappings = append(out.Mappings[:i], out.Mappings[i+1:]...)
			break
		}
	}
	out.bump()
	return out, nil
}

// Include takes a canonical field off the excluded list. The field regains a
// mapping on the next merge.
func (c Configuration) Include(fieldID string) (Configuration, error) {
	out := c.clone()
	for i, id := range out.ExcludedFields {
		if id == fieldID {
			out.ExcludedFields = append(out.ExcludedFields[:i], out.ExcludedFields[i+1:]...)
			out.bump()
			return out, nil
		}
	}
	return Configuration{}, &errors.NotFoundError{Resource: "excluded field", ID: fieldID}
}
