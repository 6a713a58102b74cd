package utils

import (
	"fmt"
	"strings"
)

// ValidField rejects values containing a comma or newline, the two
// characters the flat-file record format cannot represent (no escape
// character is defined).
func ValidField(name, value string) error {
	if strings.ContainsAny(value, ",\n") {
		return fmt.Errorf("field %s contains an illegal character (comma or newline): %q", name, value)
	}
	return nil
}

// CleanDescription strips commas and newlines from free-text description
// fields instead of rejecting them, per the data model's "commas are
// stripped, never escaped" policy for description fields.
func CleanDescription(value string) string {
	value = strings.ReplaceAll(value, ",", "")
	value = strings.ReplaceAll(value, "\n", " ")
	return value
}
