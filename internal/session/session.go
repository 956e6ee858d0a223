package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bkarpinos/shorty/internal/link"
	"github.com/bkarpinos/shorty/internal/storage"
)

var (
	ErrUnregistered = errors.New("no registered session")
	ErrInvalidToken = errors.New("invalid session token")
)

// Details is what the registration form collects
type Details struct {
	Name           string `json:"name" form:"name" validate:"required"`
	Email          string `json:"email" form:"email" validate:"required,email"`
	RollNo         string `json:"rollNo" form:"rollNo" validate:"required,alphanum"`
	MobileNo       string `json:"mobileNo" form:"mobileNo" validate:"required,numeric"`
	GithubUsername string `json:"githubUsername" form:"githubUsername" validate:"required"`
	AccessCode     string `json:"accessCode" form:"accessCode" validate:"required"`
}

// Session is the auth object persisted under storage.KeyAuthDetails
type Session struct {
	ClientID     string    `json:"clientId"`
	ClientSecret string    `json:"clientSecret"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RollNo       string    `json:"rollNo"`
	Token        string    `json:"token"`
	IssuedAt     time.Time `json:"issuedAt"`
}

// Manager owns the session lifecycle: created by Register, cleared by Clear.
// Callers that route between registration and dashboard read it via Current.
type Manager struct {
	store    storage.Store
	secret   []byte
	delay    time.Duration
	now      func() time.Time
	validate *validator.Validate
	logger   *zap.Logger
	mutex    sync.Mutex
}

// Option configures a Manager
type Option func(*Manager)

// WithDelay simulates the latency of the registration service
func WithDelay(d time.Duration) Option {
	return func(m *Manager) { m.delay = d }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger attaches a logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a manager signing tokens with secret
func NewManager(store storage.Store, secret string, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		secret:   []byte(secret),
		now:      time.Now,
		validate: validator.New(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register validates details, performs the mock registration call and
// persists the resulting session, replacing any previous one.
func (m *Manager) Register(ctx context.Context, d Details) (*Session, error) {
	if err := m.validateDetails(d); err != nil {
		return nil, err
	}

	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}

	issuedAt := m.now().UTC().Truncate(time.Second)
	s := &Session{
		ClientID:     "mock-client-" + uuid.NewString(),
		ClientSecret: "mock-secret-" + uuid.NewString(),
		Name:         d.Name,
		Email:        d.Email,
		RollNo:       d.RollNo,
		IssuedAt:     issuedAt,
	}

	claims := &jwt.RegisteredClaims{
		ID:       s.ClientID,
		Subject:  s.Email,
		IssuedAt: jwt.NewNumericDate(issuedAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("signing session token: %w", err)
	}
	s.Token = token

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.store.Save(storage.KeyAuthDetails, s); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	m.logger.Info("registered", zap.String("client_id", s.ClientID), zap.String("email", s.Email))
	return s, nil
}

// Current returns the persisted session or ErrUnregistered
func (m *Manager) Current() (*Session, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	s, err := storage.Get[*Session](m.store, storage.KeyAuthDetails, nil)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrUnregistered
	}
	return s, nil
}

// Clear forgets the session by persisting null
func (m *Manager) Clear() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.store.Save(storage.KeyAuthDetails, nil); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	m.logger.Info("session cleared")
	return nil
}

// Verify checks the token signature and that it belongs to the current session
func (m *Manager) Verify(token string) (*Session, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	current, err := m.Current()
	if err != nil {
		return nil, err
	}
	// Tokens from a session that was reset no longer count
	if claims.ID != current.ClientID {
		return nil, ErrInvalidToken
	}
	return current, nil
}

func (m *Manager) validateDetails(d Details) error {
	err := m.validate.Struct(d)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s: %s", fieldError.Field(), fieldError.Tag()))
	}
	return fmt.Errorf("%w: %s", link.ErrValidation, strings.Join(messages, ", "))
}
