package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// ValidateDimensions rejects non-positive image sizes.
func ValidateDimensions(width, height int) error {
	if width < 1 || height < 1 {
		return New(ErrCodeInvalidParams, "dimensions must be positive, got %dx%d", width, height)
	}
	return nil
}

// ValidateFinite rejects NaN and infinite values for the named field.
func ValidateFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidParams, "%s must be finite, got %v", field, v)
	}
	return nil
}

// ValidatePositive rejects values that are not finite and strictly positive.
func ValidatePositive(field string, v float64) error {
	if err := ValidateFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return New(ErrCodeInvalidParams, "%s must be positive, got %v", field, v)
	}
	return nil
}

// ValidateAtLeast rejects integers below min.
func ValidateAtLeast(field string, v, min int) error {
	if v < min {
		return New(ErrCodeInvalidParams, "%s must be >= %d, got %d", field, min, v)
	}
	return nil
}

// ValidatePowerOfTwo rejects values that are not a power of two at least min.
func ValidatePowerOfTwo(field string, v, min int) error {
	if v < min || v&(v-1) != 0 {
		return New(ErrCodeInvalidParams, "%s must be a power of two >= %d, got %d", field, min, v)
	}
	return nil
}

// viewNameRegex matches names usable both as file basenames and document keys.
var viewNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateViewName validates a saved-view name for safety.
// Names become file basenames in the file store, so the rules are strict:
//   - No empty names
//   - Maximum length of 128 characters
//   - No control characters or path separators
//   - No path traversal sequences (..)
func ValidateViewName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "view name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "view name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "view name contains invalid control characters")
		}
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "view name cannot contain path traversal sequences (..)")
	}

	if !viewNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid view name: %q", name)
	}

	return nil
}
