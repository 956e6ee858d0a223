package resolver

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bkarpinos/shorty/internal/link"
)

// Registry is the part of the link registry resolution needs
type Registry interface {
	Find(code string) (link.Link, error)
	RecordClick(code string) (link.Link, error)
}

// Resolver turns a shortcode into its destination, counting the click
type Resolver struct {
	registry Registry
	now      func() time.Time
	logger   *zap.Logger
}

// Result is a successful resolution
type Result struct {
	Destination string
	Link        link.Link
}

// New creates a resolver reading the clock from now (time.Now when nil)
func New(registry Registry, now func() time.Time, logger *zap.Logger) *Resolver {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{registry: registry, now: now, logger: logger}
}

// Resolve returns link.ErrNotFound for unknown codes and link.ErrExpired once
// now reaches the expiry instant. The expiry check precedes the click
// increment, so rejected links are never mutated.
func (r *Resolver) Resolve(code string) (Result, error) {
	l, err := r.registry.Find(code)
	if err != nil {
		return Result{}, err
	}

	if now := r.now(); l.Expired(now) {
		r.logger.Debug("rejecting expired link",
			zap.String("shortcode", code),
			zap.Time("expires_at", l.ExpiresAt()))
		return Result{}, fmt.Errorf("%w: %q expired at %s", link.ErrExpired, code, l.ExpiresAt().Format(time.RFC3339))
	}

	clicked, err := r.registry.RecordClick(code)
	if err != nil {
		// Nothing else deletes links, but an external writer may have replaced the file
		if errors.Is(err, link.ErrNotFound) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("recording click for %q: %w", code, err)
	}

	return Result{Destination: clicked.LongURL, Link: clicked}, nil
}
