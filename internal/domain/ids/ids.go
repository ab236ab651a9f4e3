package ids

import (
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidRegex = regexp.MustCompile(`(?i)^[0-9A-HJKMNP-TV-Z]{26}$`)

	ErrInvalidULID = errors.New("invalid ULID")
)

// NewULID generates a new ULID string.
func NewULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IsULID returns true when value is a valid ULID (case-insensitive Crockford Base32).
func IsULID(value string) bool {
	return ulidRegex.MatchString(strings.TrimSpace(value))
}

// ValidateULID validates a ULID string.
func ValidateULID(value string) error {
	if !IsULID(value) {
		return ErrInvalidULID
	}
	return nil
}

// Normalize upper-cases and trims a ULID for storage and comparison.
func Normalize(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// CaseURI builds the canonical URI for a case hosted by this node.
func CaseURI(baseURL, caseULID string) (string, error) {
	if err := ValidateULID(caseULID); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/cases/%s", strings.TrimRight(baseURL, "/"), Normalize(caseULID)), nil
}
