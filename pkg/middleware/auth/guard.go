package middleware

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/buyme/pkg/logging"
	"github.com/Skotchmaster/buyme/pkg/tokens"
)

const (
	CookieName = "session"

	CtxUserID = "user_id"
	CtxRole   = "role"
)

// RoleLookup returns the role currently stored for a subject, or "" when
// the subject has no user record.
type RoleLookup func(ctx context.Context, subject string) (string, error)

type Guard struct {
	Secret    []byte
	Lookup    RoleLookup
	LoginPath string
}

func NewGuard(secret []byte, lookup RoleLookup, loginPath string) *Guard {
	return &Guard{Secret: secret, Lookup: lookup, LoginPath: loginPath}
}

func (g *Guard) claims(c echo.Context) (*tokens.SessionClaims, bool) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := tokens.SessionClaimsFromToken(cookie.Value, g.Secret)
	if err != nil {
		c.SetCookie(DeleteCookie())
		return nil, false
	}
	return claims, true
}

// Optional attaches the session user when there is one and never rejects.
func (g *Guard) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if claims, ok := g.claims(c); ok {
			c.Set(CtxUserID, claims.Subject)
			c.Set(CtxRole, claims.Role)
		}
		return next(c)
	}
}

func (g *Guard) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := g.claims(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
		}
		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxRole, claims.Role)
		return next(c)
	}
}

// RequireRole checks the role stored for the session's subject, not the
// one baked into the token. 401 without a session, 403 on a role mismatch.
func (g *Guard) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "auth.require_role")

			claims, ok := g.claims(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
			}
			role, err := g.Lookup(ctx, claims.Subject)
			if err != nil {
				l.Error("role_lookup_error", "status", 500, "user_id", claims.Subject, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "cannot check access")
			}
			if !slices.Contains(roles, role) {
				l.Warn("access_denied", "status", 403, "user_id", claims.Subject, "role", role)
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights to see this page")
			}

			c.Set(CtxUserID, claims.Subject)
			c.Set(CtxRole, role)
			return next(c)
		}
	}
}

// RedirectUnlessRole is the page variant of RequireRole: anything short of
// a stored matching role is sent to the login page before the handler runs.
func (g *Guard) RedirectUnlessRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "auth.redirect_unless_role")

			claims, ok := g.claims(c)
			if !ok {
				return c.Redirect(http.StatusFound, g.LoginPath)
			}
			role, err := g.Lookup(ctx, claims.Subject)
			if err != nil {
				l.Error("role_lookup_error", "user_id", claims.Subject, "error", err)
				return c.Redirect(http.StatusFound, g.LoginPath)
			}
			if !slices.Contains(roles, role) {
				l.Info("redirect_to_login", "user_id", claims.Subject, "role", role)
				return c.Redirect(http.StatusFound, g.LoginPath)
			}

			c.Set(CtxUserID, claims.Subject)
			c.Set(CtxRole, role)
			return next(c)
		}
	}
}

func CreateCookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func UserID(c echo.Context) string {
	id, _ := c.Get(CtxUserID).(string)
	return id
}
