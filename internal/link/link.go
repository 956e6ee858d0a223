package link

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultValidityMinutes applies when a link is created without a usable validity
const DefaultValidityMinutes = 30

// MaxValidityMinutes is the longest validity whose expiry fits in a time.Duration
const MaxValidityMinutes = int(math.MaxInt64 / int64(time.Minute))

var leadingInteger = regexp.MustCompile(`^[+-]?[0-9]+`)

var shortcodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Link represents a shortened link with its destination and click counter
type Link struct {
	Shortcode string    `json:"shortcode"`
	LongURL   string    `json:"longUrl"`
	CreatedAt time.Time `json:"createdAt"`
	Validity  int       `json:"validity"`
	Clicks    int       `json:"clicks"`
}

// Candidate is a creation request that already passed field validation
type Candidate struct {
	LongURL   string
	Shortcode string
	Validity  int
}

// NewLink creates a link with zero clicks at the given instant
func NewLink(c Candidate, createdAt time.Time) Link {
	return Link{
		Shortcode: c.Shortcode,
		LongURL:   c.LongURL,
		CreatedAt: createdAt,
		Validity:  c.Validity,
		Clicks:    0,
	}
}

// ExpiresAt is derived from the creation time and validity on every call.
// Validities past MaxValidityMinutes saturate instead of wrapping.
func (l Link) ExpiresAt() time.Time {
	if l.Validity > MaxValidityMinutes {
		return l.CreatedAt.Add(time.Duration(math.MaxInt64))
	}
	return l.CreatedAt.Add(time.Duration(l.Validity) * time.Minute)
}

// Expired reports whether now is at or past the expiry instant
func (l Link) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt())
}

// ValidateURL checks that raw parses as an absolute URL
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: destination URL is required", ErrValidation)
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Host == "" && u.Opaque == "") {
		return fmt.Errorf("%w: %q is not a valid destination URL", ErrValidation, raw)
	}
	return nil
}

// ValidateShortcode checks a user-supplied shortcode against the allowed alphabet
func ValidateShortcode(code string) error {
	if !shortcodePattern.MatchString(code) {
		return fmt.Errorf("%w: shortcode %q may only contain letters, digits, '_' and '-'", ErrValidation, code)
	}
	return nil
}

// ParseValidity turns form input into minutes, reading the leading integer
// the way a form field is usually read: "12abc" is 12 and "1.5" is 1.
// Input without leading digits and zero fall back to DefaultValidityMinutes.
func ParseValidity(raw string) (int, error) {
	digits := leadingInteger.FindString(strings.TrimSpace(raw))
	if digits == "" {
		return DefaultValidityMinutes, nil
	}

	n, err := strconv.Atoi(digits)
	switch {
	case err != nil || n > MaxValidityMinutes:
		return 0, fmt.Errorf("%w: validity may be at most %d minutes", ErrValidation, MaxValidityMinutes)
	case n < 0:
		return 0, fmt.Errorf("%w: validity must be a positive number of minutes", ErrValidation)
	case n == 0:
		return DefaultValidityMinutes, nil
	}
	return n, nil
}
