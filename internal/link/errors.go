package link

import "errors"

var (
	// ErrValidation wraps every rejected field: URL, shortcode, validity, registration details
	ErrValidation = errors.New("validation failed")

	ErrDuplicateShortcode  = errors.New("shortcode already in use")
	ErrGenerationExhausted = errors.New("could not generate an unused shortcode")

	// Resolution failures
	ErrNotFound = errors.New("link not found")
	ErrExpired  = errors.New("link has expired")
)
