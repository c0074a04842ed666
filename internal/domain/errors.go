package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration indicates the pricing configuration is missing or invalid.
	// The engine refuses to compute against it.
	ErrConfiguration = errors.New("pricing configuration invalid")

	// ErrNotFound indicates an unknown item identifier.
	ErrNotFound = errors.New("item not found")

	// ErrInvalidOption indicates an enum-valued setter received a value outside its domain.
	ErrInvalidOption = errors.New("invalid option")

	// ErrDocumentNotFound is returned by a ConfigSource when a document does not exist.
	ErrDocumentNotFound = errors.New("document not found")
)

// ConfigurationError describes which part of the configuration is unusable.
type ConfigurationError struct {
	Field  string
	Reason string
	Cause  error
}

// NewConfigurationError creates a configuration error for a field.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason, Cause: nil}
}

func (e *ConfigurationError) Error() string {
	msg := ErrConfiguration.Error()
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NotFoundError is returned when an operation references an unknown item.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNotFound.Error(), e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidOptionError is returned when an enum setter receives an unknown value.
type InvalidOptionError struct {
	Option string
	Value  string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("%s for %s: %q", ErrInvalidOption.Error(), e.Option, e.Value)
}

// Is reports whether target is ErrInvalidOption.
func (e *InvalidOptionError) Is(target error) bool {
	return target == ErrInvalidOption
}

// LookupWarning is raised when a selected calculable item's pricing tier
// has no entry in the tier table. The item contributes zero.
type LookupWarning struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Tier     string `json:"tier"`
}

func (w LookupWarning) String() string {
	if w.Tier == "" {
		return fmt.Sprintf("item %q has no pricing tier", w.ItemID)
	}
	return fmt.Sprintf("price not found for tier %q in item %q", w.Tier, w.ItemID)
}
