package config

import (
	"fmt"
	"strings"
)

// validateExtensions ensures every extension is a dot followed by
// alphanumeric characters
func validateExtensions(extensions []string) error {
	if len(extensions) == 0 {
		return fmt.Errorf("at least one extension is required")
	}

	for _, ext := range extensions {
		if ext == "" {
			return fmt.Errorf("extension cannot be empty")
		}

		if !strings.HasPrefix(ext, ".") || len(ext) == 1 {
			return fmt.Errorf("invalid extension '%s': must start with a dot, e.g. .vmt", ext)
		}

		for _, char := range ext[1:] {
			if !((char >= 'a' && char <= 'z') ||
				(char >= 'A' && char <= 'Z') ||
				(char >= '0' && char <= '9')) {
				return fmt.Errorf("invalid extension '%s': contains invalid character '%c', only alphanumeric characters are allowed", ext, char)
			}
		}
	}
	return nil
}
