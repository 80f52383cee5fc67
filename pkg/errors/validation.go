package errors

import (
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// MaxColspan is the widest span a single cell may cover.
const MaxColspan = 255

// MaxExtent bounds the frame size accepted from documents and requests.
const MaxExtent = 1 << 20

// ValidateSpan checks that a column span fits the engine's span range.
// A span of zero is valid and produces a ghost cell.
func ValidateSpan(span int) error {
	if span < 0 || span > MaxColspan {
		return New(ErrCodeInvalidSpan, "colspan %d out of range [0, %d]", span, MaxColspan)
	}
	return nil
}

// ValidateExtent checks that a frame width and height are usable.
//
// Validation rules:
//   - Both values must be finite
//   - Neither may be negative
//   - Neither may exceed MaxExtent
func ValidateExtent(width, height float64) error {
	for _, v := range []struct {
		name  string
		value float64
	}{{"width", width}, {"height", height}} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return New(ErrCodeInvalidExtent, "%s must be finite", v.name)
		}
		if v.value < 0 {
			return New(ErrCodeInvalidExtent, "%s cannot be negative: %g", v.name, v.value)
		}
		if v.value > MaxExtent {
			return New(ErrCodeInvalidExtent, "%s too large: %g (max %d)", v.name, v.value, MaxExtent)
		}
	}
	return nil
}

// ValidateFormat checks that format is one of valid.
func ValidateFormat(format string, valid []string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(valid, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (valid: %s)", format, strings.Join(valid, ", "))
	}
	return nil
}

// programIDRegex matches stored program identifiers: UUIDs or short slugs.
var programIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)

// ValidateProgramID validates a stored program identifier.
// IDs end up in file names and cache keys, so the alphabet is restricted.
func ValidateProgramID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "program id cannot be empty")
	}
	if !programIDRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid program id: %q", id)
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
