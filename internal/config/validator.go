package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "bridge.dispatch_limit")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Bridge.DispatchLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "bridge.dispatch_limit",
			Value:   c.Bridge.DispatchLimit,
			Message: "must be >= 0 (0 = unlimited)",
		})
	}

	if c.Demo.Delay < 0 {
		errors = append(errors, ValidationError{
			Field:   "demo.delay",
			Value:   c.Demo.Delay,
			Message: "must be >= 0",
		})
	}
	if c.Demo.StressCommands < 1 {
		errors = append(errors, ValidationError{
			Field:   "demo.stress_commands",
			Value:   c.Demo.StressCommands,
			Message: "must be >= 1",
		})
	}
	if c.Demo.StressOwners < 1 {
		errors = append(errors, ValidationError{
			Field:   "demo.stress_owners",
			Value:   c.Demo.StressOwners,
			Message: "must be >= 1",
		})
	}

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of %v", ValidLogLevels()),
		})
	}

	return errors
}
