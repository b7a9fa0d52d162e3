// Package errors provides custom error types for the canonmap system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the reconciliation engine.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the canonmap system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrCredentialRequired indicates that a tenant credential is required but not provided
	ErrCredentialRequired = errors.New("credential required")

	// ErrCredentialInvalid indicates that the provided tenant credential was rejected
	ErrCredentialInvalid = errors.New("credential invalid")

	// ErrTenantUnavailable indicates that the tenant metadata API is temporarily unavailable
	ErrTenantUnavailable = errors.New("tenant unavailable")

	// ErrFeatureNotEnabled indicates that an optional metadata capability is not
	// enabled on the tenant (e.g. business metadata or domains). Discovery treats
	// this as "empty result", never as a failure.
	ErrFeatureNotEnabled = errors.New("feature not enabled")

	// ErrRateLimited indicates that the tenant API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an error from the tenant metadata API
type APIError struct {
	Tenant     string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Tenant, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Tenant, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 404:
		return target == ErrFeatureNotEnabled || target == ErrNotFound
	case e.StatusCode == 401 || e.StatusCode == 403:
		return target == ErrCredentialInvalid
	case e.StatusCode == 429:
		return target == ErrRateLimited
	case e.StatusCode >= 500:
		return target == ErrTenantUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(tenant string, statusCode int, message string) *APIError {
	return &APIError{
		Tenant:     tenant,
		StatusCode: statusCode,
		Message:    message,
	}
}

// DiscoveryError represents a failure of a schema discovery component.
// Only the entity-type component is fatal to a discovery run; optional
// components degrade to empty results instead of producing this error.
type DiscoveryError struct {
	Component string // "entity_types", "custom_metadata", "classifications", ...
	TenantID  string
	Err       error
}

// Error implements the error interface
func (e *DiscoveryError) Error() string {
	if e.TenantID != "" {
		return fmt.Sprintf("discovery of %s failed for tenant %s: %v", e.Component, e.TenantID, e.Err)
	}
	return fmt.Sprintf("discovery of %s failed: %v", e.Component, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// NewDiscoveryError creates a new DiscoveryError
func NewDiscoveryError(component, tenantID string, err error) *DiscoveryError {
	return &DiscoveryError{Component: component, TenantID: tenantID, Err: err}
}

// MergeError represents an error during configuration merge operations
type MergeError struct {
	TenantID string
	FieldIDs []string
	Err      error
}

// Error implements the error interface
func (e *MergeError) Error() string {
	if len(e.FieldIDs) > 0 {
		return fmt.Sprintf("merge error for tenant %s (fields: %v): %v", e.TenantID, e.FieldIDs, e.Err)
	}
	return fmt.Sprintf("merge error for tenant %s: %v", e.TenantID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *MergeError) Unwrap() error {
	return e.Err
}

// ConfigError represents a tenant configuration integrity error
type ConfigError struct {
	TenantID string
	Message  string
	Err      error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.TenantID != "" {
		return fmt.Sprintf("configuration error for tenant %s: %s", e.TenantID, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(tenantID, message string, err error) *ConfigError {
	return &ConfigError{TenantID: tenantID, Message: message, Err: err}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	Source  string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("parse error in %s from %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, source, message string, err error) *ParseError {
	return &ParseError{Format: format, Source: source, Message: message, Err: err}
}

// AuthenticationError represents an authentication/authorization error
// against the tenant metadata API
type AuthenticationError struct {
	Tenant  string
	Method  string // "bearer", "api_token"
	Message string
	Err     error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	if e.Tenant != "" {
		return fmt.Sprintf("authentication error for %s (%s): %s", e.Tenant, e.Method, e.Message)
	}
	return fmt.Sprintf("authentication error (%s): %s", e.Method, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrCredentialRequired || target == ErrCredentialInvalid
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsFeatureNotEnabled checks if an error indicates a missing optional
// tenant capability
func IsFeatureNotEnabled(err error) bool {
	return errors.Is(err, ErrFeatureNotEnabled)
}

// IsCredentialError checks if an error is related to tenant credentials
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrCredentialRequired) || errors.Is(err, ErrCredentialInvalid)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTenantUnavailable checks if an error indicates tenant unavailability
func IsTenantUnavailable(err error) bool {
	return errors.Is(err, ErrTenantUnavailable)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, source, err.Error(), err)
}

// WrapAPI wraps an error as an APIError
func WrapAPI(tenant string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Tenant:     tenant,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}

// WrapDiscovery wraps an error as a DiscoveryError
func WrapDiscovery(component, tenantID string, err error) error {
	if err == nil {
		return nil
	}
	return NewDiscoveryError(component, tenantID, err)
}
