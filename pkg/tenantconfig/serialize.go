package tenantconfig

import (
	"encoding/json"

	"github.com/agentstation/canonmap/pkg/errors"
)

// Marshal serializes the configuration to indented JSON.
func (c Configuration) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, &errors.ParseError{
			Format:  "json",
			Source:  c.TenantID,
			Message: "failed to serialize configuration",
			Err:     err,
		}
	}
	return data, nil
}

// Unmarshal deserializes a configuration, rejecting payloads missing the
// identity fields (an unidentifiable configuration cannot be merged or
// audited) and defaulting absent list fields to empty so older persisted
// versions still load.
func Unmarshal(data []byte) (Configuration, error) {
	var cfg Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Configuration{}, &errors.ParseError{
			Format:  "json",
			Message: "failed to deserialize configuration",
			Err:     err,
		}
	}

	if cfg.TenantID == "" {
		return Configuration{}, &errors.ValidationError{Field: "tenantId", Message: "required"}
	}
	if cfg.BaseURL == "" {
		return Configuration{}, &errors.ValidationError{Field: "baseUrl", Message: "required"}
	}
	if cfg.Version < 1 {
		return Configuration{}, &errors.ValidationError{Field: "version", Message: "must be at least 1"}
	}

	if cfg.Mappings == nil {
		cfg.Mappings = make([]FieldMapping, 0)
	}
	if cfg.CustomFields == nil {
		cfg.CustomFields = make([]CustomField, 0)
	}
	if cfg.ClassificationMappings == nil {
		cfg.ClassificationMappings = make([]ClassificationMapping, 0)
	}
	if cfg.ExcludedFields == nil {
		cfg.ExcludedFields = make([]string, 0)
	}
	return cfg, nil
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate runs structural checks. Errors block persistence; warnings are
// advisory.
func (c Configuration) Validate() ValidationResult {
	result := ValidationResult{
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}

	if c.TenantID == "" {
		result.Errors = append(result.Errors, "tenantId is required")
	}
	if c.BaseURL == "" {
		result.Errors = append(result.Errors, "baseUrl is required")
	}
	if c.Version < 1 {
		result.Errors = append(result.Errors, "version must be at least 1")
	}

	seenMappings := make(map[string]bool)
	for _, m := range c.Mappings {
		if m.CanonicalFieldID == "" {
			result.Errors = append(result.Errors, "mapping with empty canonicalFieldId")
			continue
		}
		if m.Source == nil || m.Source.Path == "" {
			result.Errors = append(result.Errors, "mapping "+m.CanonicalFieldID+" has no tenant source")
		}
		if seenMappings[m.CanonicalFieldID] {
			result.Warnings = append(result.Warnings, "duplicate mapping for "+m.CanonicalFieldID)
		}
		seenMappings[m.CanonicalFieldID] = true
	}

	seenCustom := make(map[string]bool)
	for _, f := range c.CustomFields {
		if seenCustom[f.ID] {
			result.Warnings = append(result.Warnings, "duplicate custom field "+f.ID)
		}
		seenCustom[f.ID] = true
	}

	result.Valid = len(result.Errors) == 0
	return result
}
