package shortener

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/bkarpinos/shorty/internal/link"
	"github.com/bkarpinos/shorty/internal/registry"
	"github.com/bkarpinos/shorty/internal/shortcode"
)

// Request is what the creation form submits; all fields are raw input
type Request struct {
	LongURL   string
	Shortcode string
	Validity  string
}

// Service validates creation requests and hands them to the registry
type Service struct {
	registry  *registry.Registry
	generator *shortcode.Generator
	baseURL   string
	logger    *zap.Logger
}

// New creates a shortener that formats short URLs under baseURL
func New(reg *registry.Registry, gen *shortcode.Generator, baseURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry:  reg,
		generator: gen,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger,
	}
}

// Shorten validates req and creates the link.
// Field errors wrap link.ErrValidation and leave the registry untouched.
func (s *Service) Shorten(req Request) (link.Link, error) {
	longURL := strings.TrimSpace(req.LongURL)
	if err := link.ValidateURL(longURL); err != nil {
		return link.Link{}, err
	}

	validity, err := link.ParseValidity(req.Validity)
	if err != nil {
		return link.Link{}, err
	}

	custom := strings.TrimSpace(req.Shortcode)

	var lastErr error
	for attempt := 0; attempt < s.generator.Attempts(); attempt++ {
		existing, err := s.registry.Shortcodes()
		if err != nil {
			return link.Link{}, err
		}

		code, err := s.generator.Generate(custom, existing)
		if err != nil {
			return link.Link{}, err
		}

		created, err := s.registry.Create(link.Candidate{
			LongURL:   longURL,
			Shortcode: code,
			Validity:  validity,
		})
		if err == nil {
			return created, nil
		}

		// A custom code that lost a race is still the user's problem to fix
		if custom != "" || !errors.Is(err, link.ErrDuplicateShortcode) {
			return link.Link{}, err
		}
		lastErr = err
		s.logger.Debug("generated shortcode taken concurrently, drawing again", zap.String("shortcode", code))
	}
	return link.Link{}, errors.Join(link.ErrGenerationExhausted, lastErr)
}

// ShortURL formats the public address of a shortcode
func (s *Service) ShortURL(code string) string {
	return s.baseURL + "/" + code
}
