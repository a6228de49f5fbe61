package util

import (
	"fmt"
	"regexp"
)

// validIDChars matches only lowercase alphanumeric characters and hyphens.
var validIDChars = regexp.MustCompile(`^[a-z0-9\-]+$`)

// ValidateInstanceID checks that an instance identifier conforms to the
// naming rules managed database products enforce:
//   - At least 2 characters
//   - Only lowercase letters, digits, and hyphens
//   - First character must be a letter
//   - Last character must not be a hyphen
func ValidateInstanceID(id string) error {
	if len(id) < 2 {
		return fmt.Errorf("instance id must be at least 2 characters, got %d", len(id))
	}

	if !validIDChars.MatchString(id) {
		return fmt.Errorf("instance id %q contains invalid characters (only a-z, 0-9, and hyphens are allowed)", id)
	}

	first := id[0]
	if first < 'a' || first > 'z' {
		return fmt.Errorf("instance id must start with a letter, got %q", string(first))
	}

	if id[len(id)-1] == '-' {
		return fmt.Errorf("instance id must not end with a hyphen, got %q", id)
	}

	return nil
}
