package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateFinite rejects NaN and infinite values.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be finite, got %v", name, v)
	}
	return nil
}

// ValidatePositive rejects values that are not finite and strictly positive.
func ValidatePositive(name string, v float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return New(ErrCodeInvalidInput, "%s must be positive, got %v", name, v)
	}
	return nil
}

// ValidateRange checks that lo < hi and both are finite.
func ValidateRange(name string, lo, hi float64) error {
	if err := ValidateFinite(name+" min", lo); err != nil {
		return err
	}
	if err := ValidateFinite(name+" max", hi); err != nil {
		return err
	}
	if lo >= hi {
		return New(ErrCodeInvalidInput, "%s range is empty: [%v, %v)", name, lo, hi)
	}
	return nil
}

// ValidateCount checks that n lies in [1, max]. A max of zero disables the
// upper bound.
func ValidateCount(name string, n, max int) error {
	if n < 1 {
		return New(ErrCodeInvalidInput, "%s must be at least 1, got %d", name, n)
	}
	if max > 0 && n > max {
		return New(ErrCodeTooLarge, "%s exceeds limit: %d > %d", name, n, max)
	}
	return nil
}

// ValidateRecordID validates a store record identifier for safety.
// IDs end up in file names and database keys, so only a conservative
// character set is accepted.
//
// Validation rules:
//   - ID cannot be empty
//   - Maximum length of 64 characters
//   - Letters, digits, '-' and '_' only
func ValidateRecordID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "record id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "record id too long (max 64 characters)")
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return New(ErrCodeInvalidInput, "record id contains invalid character %q", r)
		}
	}
	return nil
}

// ValidatePath validates an output path given on the command line or in
// configuration. It rejects empty paths, control characters and null bytes.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}
