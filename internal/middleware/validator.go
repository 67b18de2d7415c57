package middleware

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Input validation and sanitization utilities

// ValidateUpload checks an uploaded offer document against the size cap and
// the allowed extensions (without dots, case-insensitive).
func ValidateUpload(filename string, size int64, maxBytes int64, allowed []string) error {
	if strings.ContainsAny(filename, "\x00\r\n") {
		return fmt.Errorf("invalid characters in file name")
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("file too large: %d bytes (max %d)", size, maxBytes)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, a := range allowed {
		if ext != "" && ext == strings.ToLower(strings.TrimPrefix(a, ".")) {
			return nil
		}
	}
	return fmt.Errorf("unsupported file type %q (allowed: %s)", ext, strings.Join(allowed, ", "))
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
