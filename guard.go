package session

import (
	"net/http"
	"time"

	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// Decision is the route guard's verdict for a navigation attempt.
type Decision int

const (
	// DecisionPending means a login is in flight; render a neutral
	// interstitial, this is not yet a redirect.
	DecisionPending Decision = iota
	// DecisionAllow admits the navigation.
	DecisionAllow
	// DecisionRedirect sends the visitor to the login entry point, keeping
	// the requested destination for the post-login return.
	DecisionRedirect
	// DecisionDeny refuses an authenticated visitor whose role fails the
	// allow-list. Denials do not redirect.
	DecisionDeny
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionAllow:
		return "allow"
	case DecisionRedirect:
		return "redirect"
	case DecisionDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// EvaluateAt decides admission from the session snapshot and the
// destination's allow-list alone; it has no side effects.
func EvaluateAt(sess Session, allow RoleSet, now time.Time) Decision {
	if sess.Loading {
		return DecisionPending
	}
	if !sess.AuthenticatedAt(now) {
		return DecisionRedirect
	}
	if !allow.Allows(sess.Role()) {
		return DecisionDeny
	}
	return DecisionAllow
}

// Evaluate is EvaluateAt against the wall clock.
func Evaluate(sess Session, allow RoleSet) Decision {
	return EvaluateAt(sess, allow, time.Now())
}

// SessionSource exposes the current session snapshot to the guard. *Service
// satisfies it.
type SessionSource interface {
	Current() Session
}

// RouteGuard gates go-router destinations on the session state.
type RouteGuard struct {
	source SessionSource
	cfg    Config
	Logger Logger

	// PendingHandler renders the interstitial while a login is in flight.
	PendingHandler router.HandlerFunc
	// DeniedHandler renders the access-denied state for authenticated
	// visitors outside the allow-list.
	DeniedHandler router.HandlerFunc
}

func NewRouteGuard(source SessionSource, cfg Config) *RouteGuard {
	g := &RouteGuard{
		source: source,
		cfg:    cfg,
		Logger: defLogger{},
	}

	g.PendingHandler = func(c router.Context) error {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "session loading",
		})
	}
	g.DeniedHandler = func(c router.Context) error {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "access denied",
		})
	}

	return g
}

// Protected guards a destination. With no roles any authenticated visitor is
// admitted; otherwise the visitor's role must be in the allow-list.
func (g *RouteGuard) Protected(roles ...Role) router.MiddlewareFunc {
	allow := NewRoleSet(roles...)

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			sess := g.source.Current()

			switch Evaluate(sess, allow) {
			case DecisionPending:
				return g.PendingHandler(c)

			case DecisionRedirect:
				g.SetReturnTo(c)

				statusCode := http.StatusSeeOther
				if c.Method() == string(router.GET) {
					statusCode = http.StatusFound
				}
				return c.Redirect(g.cfg.GetLoginRoute(), statusCode)

			case DecisionDeny:
				g.Logger.Info(
					"navigation denied",
					"role", sess.Role(),
					"path", c.OriginalURL(),
					"allowed", print.MaybePrettyJSON(roles),
				)
				return g.DeniedHandler(c)

			default:
				return next(c)
			}
		}
	}
}

// SetReturnTo remembers the requested destination so the login flow can send
// the visitor back after authenticating.
func (g *RouteGuard) SetReturnTo(c router.Context) {
	key := g.cfg.GetReturnToKey()

	g.Logger.Info("setting return-to cookie", "key", key, "path", c.OriginalURL())

	c.Cookie(&router.Cookie{
		Name:     key,
		Value:    c.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// ConsumeReturnTo pops the remembered destination, falling back to def.
func (g *RouteGuard) ConsumeReturnTo(c router.Context, def ...string) string {
	key := g.cfg.GetReturnToKey()
	r := c.Cookies(key)
	if r == "" {
		if len(def) > 0 {
			return def[0]
		}
		return g.cfg.GetReturnToDefault()
	}
	g.cookieDel(c, key)
	return r
}

// ConsumeReturnToOrReferer prefers the remembered destination, then the
// request referer, then the configured default.
func (g *RouteGuard) ConsumeReturnToOrReferer(c router.Context) string {
	key := g.cfg.GetReturnToKey()
	r := c.Cookies(key, c.Referer())
	if r == "" {
		r = g.cfg.GetReturnToDefault()
	}
	g.cookieDel(c, key)
	return r
}

func (g *RouteGuard) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}
