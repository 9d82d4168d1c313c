package http

import (
	"context"
	"strconv"
	"time"

	"lms-portal/internal/guard"
	sessionconfig "lms-portal/internal/session/config"
	sessionusecase "lms-portal/internal/session/usecase"
	"lms-portal/internal/shared/contextkeys"
	"lms-portal/internal/shared/logger"
	"lms-portal/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const localsSession = "portal_session"

// SessionProvider hands out the session store of a client.
type SessionProvider interface {
	ForClient(clientID string, opts ...sessionusecase.Option) (*sessionusecase.Store, error)
}

// PortalMiddleware identifies clients and guards portal pages.
type PortalMiddleware struct {
	sessions SessionProvider
	codec    *securecookie.SecureCookie
	cookie   *sessionconfig.Config
	log      logger.Logger
}

// NewPortalMiddleware creates the middleware. The client cookie is signed with
// the configured hash key and encrypted when a block key is set.
func NewPortalMiddleware(sessions SessionProvider, cfg *sessionconfig.Config, log logger.Logger) *PortalMiddleware {
	if log == nil {
		log = logger.NewNopLogger()
	}
	var blockKey []byte
	if cfg.CookieBlockKey != "" {
		blockKey = []byte(cfg.CookieBlockKey)
	}
	codec := securecookie.New([]byte(cfg.CookieHashKey), blockKey)
	codec.MaxAge(int(cfg.CookieTTL / time.Second))

	return &PortalMiddleware{
		sessions: sessions,
		codec:    codec,
		cookie:   cfg,
		log:      log.WithComponent("portal_http"),
	}
}

// RequestID tags each request and copies the id into the request context.
func (m *PortalMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: string(contextkeys.RequestIDKey),
	})
}

// SecurityHeaders adds security headers
func (m *PortalMiddleware) SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

// LoginRateLimiter limits sign-in attempts per remote address.
func (m *PortalMiddleware) LoginRateLimiter(limit int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               limit,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get(fiber.HeaderXForwardedFor, c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// ClientSession resolves the client from its cookie, issuing a new identity when
// the cookie is missing or does not verify, and binds the client's session store.
func (m *PortalMiddleware) ClientSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if rid, ok := c.Locals(string(contextkeys.RequestIDKey)).(string); ok && rid != "" {
			ctx = utils.WithRequestID(ctx, rid)
		}

		clientID, ok := m.readClientID(c)
		if !ok {
			var err error
			if clientID, err = m.issueClientID(c); err != nil {
				m.log.WithContext(ctx).WithError(err).Error("Failed to issue client cookie")
				return fiber.ErrInternalServerError
			}
		}

		store, err := m.sessions.ForClient(clientID,
			sessionusecase.WithResetHook(func(ctx context.Context) {
				if _, err := m.issueClientID(c); err != nil {
					m.log.WithContext(ctx).WithError(err).Error("Failed to rotate client cookie")
				}
			}),
		)
		if err != nil {
			m.log.WithContext(ctx).WithError(err).Error("Failed to open client session")
			return fiber.ErrInternalServerError
		}

		c.Locals(localsSession, store)
		c.SetUserContext(utils.WithClientID(ctx, clientID))
		return c.Next()
	}
}

// Protect requires a signed-in client.
func (m *PortalMiddleware) Protect() fiber.Handler {
	return m.guard("protected", func(s guard.State) guard.Decision {
		return guard.Decide(false, s)
	})
}

// AdminOnly requires a signed-in admin.
func (m *PortalMiddleware) AdminOnly() fiber.Handler {
	return m.guard("admin", func(s guard.State) guard.Decision {
		return guard.Decide(true, s)
	})
}

// GuestOnly sends signed-in clients away from the login and registration pages.
func (m *PortalMiddleware) GuestOnly() fiber.Handler {
	return m.guard("guest", guard.DecideGuest)
}

func (m *PortalMiddleware) guard(name string, decide func(guard.State) guard.Decision) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store, ok := SessionFrom(c)
		if !ok {
			return fiber.ErrInternalServerError
		}

		ctx := c.UserContext()
		state := store.State(ctx)
		if state.User != nil {
			ctx = utils.WithUserID(ctx, strconv.FormatUint(state.User.ID, 10))
			ctx = utils.WithRole(ctx, state.User.Role.String())
			c.SetUserContext(ctx)
		}

		decision := decide(state)
		if decision == guard.Allow {
			return c.Next()
		}

		m.log.WithContext(ctx).WithFields(map[string]interface{}{
			"guard":    name,
			"path":     c.Path(),
			"decision": decision.String(),
		}).Debug("Guard redirected request")
		return c.Redirect(decision.Target(), fiber.StatusSeeOther)
	}
}

// SessionFrom returns the session store bound by ClientSession.
func SessionFrom(c *fiber.Ctx) (*sessionusecase.Store, bool) {
	store, ok := c.Locals(localsSession).(*sessionusecase.Store)
	return store, ok && store != nil
}

func (m *PortalMiddleware) readClientID(c *fiber.Ctx) (string, bool) {
	raw := c.Cookies(m.cookie.CookieName)
	if raw == "" {
		return "", false
	}
	var clientID string
	if err := m.codec.Decode(m.cookie.CookieName, raw, &clientID); err != nil {
		m.log.WithContext(c.UserContext()).WithError(err).Debug("Client cookie rejected")
		return "", false
	}
	if _, err := uuid.Parse(clientID); err != nil {
		return "", false
	}
	return clientID, true
}

func (m *PortalMiddleware) issueClientID(c *fiber.Ctx) (string, error) {
	clientID := uuid.NewString()
	encoded, err := m.codec.Encode(m.cookie.CookieName, clientID)
	if err != nil {
		return "", err
	}
	c.Cookie(&fiber.Cookie{
		Name:     m.cookie.CookieName,
		Value:    encoded,
		Path:     m.cookie.CookiePath,
		Domain:   m.cookie.CookieDomain,
		MaxAge:   int(m.cookie.CookieTTL / time.Second),
		Secure:   m.cookie.CookieSecure,
		HTTPOnly: m.cookie.CookieHTTPOnly,
		SameSite: m.cookie.CookieSameSite,
	})
	return clientID, nil
}
