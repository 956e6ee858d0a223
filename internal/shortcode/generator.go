package shortcode

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/bkarpinos/shorty/internal/link"
)

const (
	// Base36 is the alphabet random shortcodes are drawn from
	Base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

	DefaultLength   = 6
	DefaultAttempts = 64
)

// Generator produces shortcodes that are unused in a given set.
// Randomness is not a security boundary here, so math/rand is enough.
type Generator struct {
	alphabet string
	length   int
	attempts int

	mutex sync.Mutex
	rng   *rand.Rand
}

// Option configures a Generator
type Option func(*Generator)

// WithLength sets the length of random shortcodes
func WithLength(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.length = n
		}
	}
}

// WithAlphabet sets the characters random shortcodes are drawn from
func WithAlphabet(alphabet string) Option {
	return func(g *Generator) {
		if alphabet != "" {
			g.alphabet = alphabet
		}
	}
}

// WithAttempts bounds the number of random draws per Generate call
func WithAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.attempts = n
		}
	}
}

// WithSeed makes the random sequence reproducible
func WithSeed(seed1, seed2 uint64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(seed1, seed2))
	}
}

// New returns a base-36, six character generator unless options say otherwise
func New(opts ...Option) *Generator {
	g := &Generator{
		alphabet: Base36,
		length:   DefaultLength,
		attempts: DefaultAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g
}

// Attempts is the per-call bound on random draws
func (g *Generator) Attempts() int {
	return g.attempts
}

// Generate returns custom when it is valid and not in existing.
// With an empty custom it draws random codes until one is unused,
// giving up with ErrGenerationExhausted after the configured attempts.
func (g *Generator) Generate(custom string, existing map[string]struct{}) (string, error) {
	if custom = strings.TrimSpace(custom); custom != "" {
		if err := link.ValidateShortcode(custom); err != nil {
			return "", err
		}
		if _, taken := existing[custom]; taken {
			return "", fmt.Errorf("%w: %q", link.ErrDuplicateShortcode, custom)
		}
		return custom, nil
	}

	for i := 0; i < g.attempts; i++ {
		code := g.Random()
		if _, taken := existing[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", link.ErrGenerationExhausted, g.attempts)
}

// Random draws one code without checking for collisions
func (g *Generator) Random() string {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	b := make([]byte, g.length)
	for i := range b {
		b[i] = g.alphabet[g.rng.IntN(len(g.alphabet))]
	}
	return string(b)
}
