package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bkarpinos/shorty/internal/link"
	"github.com/bkarpinos/shorty/internal/metrics"
	"github.com/bkarpinos/shorty/internal/session"
	"github.com/bkarpinos/shorty/internal/shortener"
)

const tokenCookie = "auth_token"

// Dashboard notices, passed as ?notice= after a failed redirect
const (
	noticeNotFound = "not_found"
	noticeExpired  = "expired"
)

type linkRow struct {
	Shortcode string
	ShortURL  string
	LongURL   string
	Clicks    int
	CreatedAt time.Time
	ExpiresAt time.Time
	Expired   bool
}

type registerPage struct {
	Error  string
	Notice string
	Form   session.Details
}

type dashboardPage struct {
	Session *session.Session
	Links   []linkRow
	Notice  string
	Error   string
	Created string
	Form    shortener.Request
}

type infoPage struct {
	BaseURL     string
	Storage     string
	TotalLinks  int
	ActiveLinks int
	Expired     int
	TotalClicks int
}

func (s *Server) rows() ([]linkRow, error) {
	links, err := s.registry.List()
	if err != nil {
		return nil, err
	}
	now := s.now()
	rows := make([]linkRow, 0, len(links))
	for _, l := range links {
		rows = append(rows, linkRow{
			Shortcode: l.Shortcode,
			ShortURL:  s.shortener.ShortURL(l.Shortcode),
			LongURL:   l.LongURL,
			Clicks:    l.Clicks,
			CreatedAt: l.CreatedAt,
			ExpiresAt: l.ExpiresAt(),
			Expired:   l.Expired(now),
		})
	}
	return rows, nil
}

func (s *Server) renderDashboard(c *gin.Context, status int, page dashboardPage) {
	rows, err := s.rows()
	if err != nil {
		s.internalError(c, err)
		return
	}
	page.Links = rows
	c.HTML(status, "dashboard", page)
}

func noticeText(kind, code string) string {
	switch kind {
	case noticeNotFound:
		return fmt.Sprintf("Short link %q was not found.", code)
	case noticeExpired:
		return fmt.Sprintf("Short link %q has expired.", code)
	default:
		return ""
	}
}

// handleRootPage shows registration until a session exists, then the dashboard
func (s *Server) handleRootPage(c *gin.Context) {
	sess, err := s.sessions.Current()
	if errors.Is(err, session.ErrUnregistered) {
		c.HTML(http.StatusOK, "register", registerPage{})
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}

	page := dashboardPage{
		Session: sess,
		Notice:  noticeText(c.Query("notice"), c.Query("shortcode")),
	}
	if created := c.Query("created"); created != "" {
		page.Created = s.shortener.ShortURL(created)
	}
	s.renderDashboard(c, http.StatusOK, page)
}

func (s *Server) handleRegister(c *gin.Context) {
	var d session.Details
	if err := c.ShouldBind(&d); err != nil {
		c.HTML(http.StatusBadRequest, "register", registerPage{Error: "Could not read the form.", Form: d})
		return
	}

	sess, err := s.sessions.Register(c.Request.Context(), d)
	if errors.Is(err, link.ErrValidation) {
		c.HTML(http.StatusBadRequest, "register", registerPage{Error: err.Error(), Form: d})
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}

	s.metrics.Registrations.Inc()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookie, sess.Token, 0, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleLogout(c *gin.Context) {
	if err := s.sessions.Clear(); err != nil {
		s.internalError(c, err)
		return
	}
	c.SetCookie(tokenCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleCreate(c *gin.Context) {
	sess, err := s.sessions.Current()
	if errors.Is(err, session.ErrUnregistered) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}

	req := shortener.Request{
		LongURL:   c.PostForm("longUrl"),
		Shortcode: c.PostForm("shortcode"),
		Validity:  c.PostForm("validity"),
	}
	l, err := s.shortener.Shorten(req)
	if err != nil {
		status, _ := errorCode(err)
		if status == http.StatusInternalServerError {
			s.internalError(c, err)
			return
		}
		s.renderDashboard(c, status, dashboardPage{Session: sess, Error: err.Error(), Form: req})
		return
	}

	s.metrics.LinksCreated.Inc()
	c.Redirect(http.StatusSeeOther, "/?created="+url.QueryEscape(l.Shortcode))
}

// handleRedirect processes short link redirects
func (s *Server) handleRedirect(c *gin.Context) {
	code := c.Param("shortcode")
	wantsJSON := c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON

	if _, err := s.sessions.Current(); err != nil {
		if wantsJSON || !errors.Is(err, session.ErrUnregistered) {
			s.abortWithError(c, err)
			return
		}
		c.HTML(http.StatusOK, "register", registerPage{Notice: "Register to use short links."})
		return
	}

	result, err := s.resolver.Resolve(code)
	switch {
	case err == nil:
		s.metrics.Redirects.WithLabelValues(metrics.ResultOK).Inc()
		c.Redirect(http.StatusFound, result.Destination)

	case errors.Is(err, link.ErrNotFound):
		s.metrics.Redirects.WithLabelValues(metrics.ResultNotFound).Inc()
		switch {
		case wantsJSON:
			s.abortWithError(c, err)
		case s.notFound != "":
			// Redirect to the configured "not found" URL if specified
			c.Redirect(http.StatusFound, s.notFound)
		default:
			c.Redirect(http.StatusFound, "/?notice="+noticeNotFound+"&shortcode="+url.QueryEscape(code))
		}

	case errors.Is(err, link.ErrExpired):
		s.metrics.Redirects.WithLabelValues(metrics.ResultExpired).Inc()
		if wantsJSON {
			s.abortWithError(c, err)
			return
		}
		c.Redirect(http.StatusFound, "/?notice="+noticeExpired+"&shortcode="+url.QueryEscape(code))

	default:
		s.logger.Error("resolve failed", zap.String("shortcode", code), zap.Error(err))
		s.abortWithError(c, err)
	}
}

// handleInfo displays information about the service
func (s *Server) handleInfo(c *gin.Context) {
	links, err := s.registry.List()
	if err != nil {
		s.internalError(c, err)
		return
	}

	now := s.now()
	page := infoPage{BaseURL: s.baseURL, Storage: s.driver, TotalLinks: len(links)}
	if page.Storage == "" {
		page.Storage = "json"
	}
	for _, l := range links {
		if l.Expired(now) {
			page.Expired++
		} else {
			page.ActiveLinks++
		}
		page.TotalClicks += l.Clicks
	}
	c.HTML(http.StatusOK, "info", page)
}
