package validation

import (
	"strings"
	"testing"
)

func TestValidateClubName(t *testing.T) {
	t.Parallel()

	valid := []string{"Chess Club", "Debate & Drama Society", "AI Lab", "The 8-Bit Crew"}
	for _, name := range valid {
		if err := ValidateClubName(name); err != nil {
			t.Errorf("expected %q to be valid, got %v", name, err)
		}
	}

	invalid := []string{"", "ab", strings.Repeat("x", 121), "12345", "---"}
	for _, name := range invalid {
		if err := ValidateClubName(name); err == nil {
			t.Errorf("expected %q to be invalid", name)
		}
	}
}

func TestValidateClubCategory(t *testing.T) {
	t.Parallel()

	if err := ValidateClubCategory(""); err != nil {
		t.Errorf("empty category should be allowed, got %v", err)
	}
	if err := ValidateClubCategory("Sports"); err != nil {
		t.Errorf("category matching is case-insensitive, got %v", err)
	}
	if err := ValidateClubCategory("underwater-basket-weaving"); err == nil {
		t.Error("expected unknown category to be rejected")
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	if err := ValidatePassword("hunter42x"); err != nil {
		t.Errorf("expected valid password, got %v", err)
	}
	for _, pw := range []string{"short1", "allletters", "12345678"} {
		if err := ValidatePassword(pw); err == nil {
			t.Errorf("expected %q to be rejected", pw)
		}
	}
}
