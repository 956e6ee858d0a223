package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bkarpinos/shorty/internal/link"
	"github.com/bkarpinos/shorty/internal/session"
	"github.com/bkarpinos/shorty/internal/shortener"
)

const sessionKey = "session"

type createRequest struct {
	LongURL   string `json:"longUrl"`
	Shortcode string `json:"shortcode"`
	// Either a number of minutes or a string, as the form sends it
	Validity any `json:"validity"`
}

type linkResponse struct {
	Shortcode string    `json:"shortcode"`
	ShortURL  string    `json:"shortUrl"`
	LongURL   string    `json:"longUrl"`
	CreatedAt time.Time `json:"createdAt"`
	Validity  int       `json:"validity"`
	ExpiresAt time.Time `json:"expiresAt"`
	Expired   bool      `json:"expired"`
	Clicks    int       `json:"clicks"`
}

func (s *Server) toResponse(l link.Link, now time.Time) linkResponse {
	return linkResponse{
		Shortcode: l.Shortcode,
		ShortURL:  s.shortener.ShortURL(l.Shortcode),
		LongURL:   l.LongURL,
		CreatedAt: l.CreatedAt,
		Validity:  l.Validity,
		ExpiresAt: l.ExpiresAt(),
		Expired:   l.Expired(now),
		Clicks:    l.Clicks,
	}
}

// requireToken accepts the session token as a bearer token or the cookie set at registration
func (s *Server) requireToken(c *gin.Context) {
	token := ""
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	} else if cookie, err := c.Cookie(tokenCookie); err == nil {
		token = cookie
	}
	if token == "" {
		s.abortWithError(c, session.ErrInvalidToken)
		return
	}

	sess, err := s.sessions.Verify(token)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

func validityString(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: validity must be a number of minutes", link.ErrValidation)
	}
}

func (s *Server) apiCreate(c *gin.Context) {
	var in createRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		s.abortWithError(c, fmt.Errorf("%w: invalid json body", link.ErrValidation))
		return
	}
	validity, err := validityString(in.Validity)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	l, err := s.shortener.Shorten(shortener.Request{
		LongURL:   in.LongURL,
		Shortcode: in.Shortcode,
		Validity:  validity,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	s.metrics.LinksCreated.Inc()
	c.JSON(http.StatusCreated, s.toResponse(l, s.now()))
}

func (s *Server) apiList(c *gin.Context) {
	links, err := s.registry.List()
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	now := s.now()
	out := make([]linkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, s.toResponse(l, now))
	}
	c.JSON(http.StatusOK, gin.H{"links": out})
}

func (s *Server) apiGet(c *gin.Context) {
	l, err := s.registry.Find(c.Param("shortcode"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.toResponse(l, s.now()))
}
