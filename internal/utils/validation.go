package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^(\+39|0039)?[0-9]{10}$`)
	blankRegex = regexp.MustCompile(`\s`)
)

// ValidResourceIDs is the allow-list of bookable resources.
var ValidResourceIDs = []string{"trackman-io"}

// IsValidUUID accepts only the canonical 36 character form.
func IsValidUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func IsValidEmail(email string) bool {
	return len(email) <= 255 && emailRegex.MatchString(email)
}

// IsValidPhone accepts Italian numbers with an optional +39 or 0039 prefix.
// Whitespace is ignored.
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(blankRegex.ReplaceAllString(phone, ""))
}

// SanitizeString strips angle brackets and surrounding whitespace.
func SanitizeString(s string) string {
	return strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(s))
}

func ValidateStringLength(s string, min, max int) bool {
	n := len([]rune(s))
	return n >= min && n <= max
}

func IsValidResourceID(id string) bool {
	for _, v := range ValidResourceIDs {
		if v == id {
			return true
		}
	}
	return false
}
