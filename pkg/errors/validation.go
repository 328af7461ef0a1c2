package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds names and free-text fields of an input document.
const maxNameLength = 1024

// ValidateName checks a display name or free-text field of an input document.
// Empty names are allowed; control characters other than newline and tab are not.
func ValidateName(field, name string) error {
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", field, maxNameLength)
	}
	for _, r := range name {
		if r == '\n' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", field)
		}
	}
	return nil
}

// ValidateID checks that an element identifier is positive.
// Zero is reserved for "not set", negative values never occur in a model store.
func ValidateID(field string, id int64) error {
	if id <= 0 {
		return New(ErrCodeInvalidInput, "%s must be positive, got %d", field, id)
	}
	return nil
}

// ValidateOutputPath checks a user supplied output path for obvious mistakes.
// It rejects empty paths, null bytes and paths that end in a separator.
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidInput, "output path contains a null byte")
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidInput, "output path %q names a directory", path)
	}
	return nil
}
