// Package validation contains input validation rules shared by handlers.
package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	minClubNameLen = 3
	maxClubNameLen = 120
)

// ValidateClubName validates a club name for length and content. The
// database enforces global uniqueness; this only covers format.
func ValidateClubName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < minClubNameLen || len(name) > maxClubNameLen {
		return fmt.Errorf("club name must be %d-%d characters", minClubNameLen, maxClubNameLen)
	}

	hasLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return fmt.Errorf("club name must contain at least one letter")
	}

	return nil
}

// ClubCategories are the recognized club categories. An empty category
// is allowed; anything else must match one of these.
var ClubCategories = map[string]struct{}{
	"academic":  {},
	"arts":      {},
	"culture":   {},
	"service":   {},
	"social":    {},
	"sports":    {},
	"technical": {},
}

// ValidateClubCategory validates an optional club category.
func ValidateClubCategory(category string) error {
	if category == "" {
		return nil
	}
	if _, ok := ClubCategories[strings.ToLower(strings.TrimSpace(category))]; !ok {
		return fmt.Errorf("unknown club category %q", category)
	}
	return nil
}
