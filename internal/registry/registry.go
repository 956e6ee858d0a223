package registry

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bkarpinos/shorty/internal/link"
	"github.com/bkarpinos/shorty/internal/storage"
)

// Registry owns the ordered collection of shortened links.
//
// Records live under storage.KeyShortenedURLs, most recent first. Every
// mutation re-reads the persisted sequence while holding the mutex, so
// no stale snapshot is written back within one process. Writers in other
// processes are not coordinated.
type Registry struct {
	store  storage.Store
	mutex  sync.Mutex
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithClock replaces time.Now for creation timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithLogger attaches a logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New creates a registry persisted in store
func New(store storage.Store, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// read returns the persisted sequence, empty when absent or corrupt
func (r *Registry) read() ([]link.Link, error) {
	links, err := storage.Get(r.store, storage.KeyShortenedURLs, []link.Link{})
	if err != nil {
		return nil, fmt.Errorf("reading links: %w", err)
	}
	if links == nil {
		links = []link.Link{}
	}
	return links, nil
}

// List returns all links, most recently created first
func (r *Registry) List() ([]link.Link, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.read()
}

// Find looks a link up by shortcode
func (r *Registry) Find(code string) (link.Link, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	links, err := r.read()
	if err != nil {
		return link.Link{}, err
	}
	for _, l := range links {
		if l.Shortcode == code {
			return l, nil
		}
	}
	return link.Link{}, fmt.Errorf("%w: %q", link.ErrNotFound, code)
}

// Shortcodes returns the set of codes currently in use
func (r *Registry) Shortcodes() (map[string]struct{}, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	links, err := r.read()
	if err != nil {
		return nil, err
	}
	codes := make(map[string]struct{}, len(links))
	for _, l := range links {
		codes[l.Shortcode] = struct{}{}
	}
	return codes, nil
}

// Create prepends a new link and persists the sequence.
// It fails with link.ErrDuplicateShortcode instead of overwriting.
func (r *Registry) Create(c link.Candidate) (link.Link, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	links, err := r.read()
	if err != nil {
		return link.Link{}, err
	}
	for _, l := range links {
		if l.Shortcode == c.Shortcode {
			return link.Link{}, fmt.Errorf("%w: %q", link.ErrDuplicateShortcode, c.Shortcode)
		}
	}

	created := link.NewLink(c, r.now())
	updated := make([]link.Link, 0, len(links)+1)
	updated = append(updated, created)
	updated = append(updated, links...)

	if err := r.store.Save(storage.KeyShortenedURLs, updated); err != nil {
		return link.Link{}, fmt.Errorf("saving links: %w", err)
	}

	r.logger.Info("link created",
		zap.String("shortcode", created.Shortcode),
		zap.String("long_url", created.LongURL),
		zap.Int("validity", created.Validity))

	return created, nil
}

// RecordClick increments the click counter of code and persists it
func (r *Registry) RecordClick(code string) (link.Link, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	links, err := r.read()
	if err != nil {
		return link.Link{}, err
	}
	for i := range links {
		if links[i].Shortcode != code {
			continue
		}
		links[i].Clicks++
		if err := r.store.Save(storage.KeyShortenedURLs, links); err != nil {
			return link.Link{}, fmt.Errorf("saving links: %w", err)
		}
		return links[i], nil
	}
	return link.Link{}, fmt.Errorf("%w: %q", link.ErrNotFound, code)
}
