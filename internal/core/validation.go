// internal/core/validation.go
package core

import (
	"regexp"
	"unicode/utf8"
)

// Regular expression for valid table/column names. Unicode letters are
// allowed because the connected databases use Chinese table names.
var nameValidationRegex = regexp.MustCompile(`^[\p{L}\p{N}_]+$`)

// IsValidIdentifier checks if a string is safe to interpolate into a schema
// query (PRAGMA table_info / information_schema lookups).
func IsValidIdentifier(name string) bool {
	return nameValidationRegex.MatchString(name) && utf8.RuneCountInString(name) <= 64
}
