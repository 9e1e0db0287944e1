package middleware

import (
	"context"
	"strings"

	"github.com/dash-ai/backend/internal/models"
	"github.com/dash-ai/backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CtxSession     = "session"
	CtxBearerToken = "bearer_token"

	// SignInPath is where denied requests are pointed.
	SignInPath = "/signin"
)

type GuardTag int

const (
	GuardPending GuardTag = iota
	GuardDenied
	GuardAllowed
)

// GuardDecision is the tagged result of evaluating a protected request.
// Session is set only for GuardAllowed.
type GuardDecision struct {
	Tag      GuardTag
	Session  *models.Session
	Redirect string
}

// Evaluate decides access for a bearer token against the current store
// state. It is called per request and never caches: a session revoked
// between requests is denied on the next one.
func Evaluate(ctx context.Context, store *session.Store, token string) GuardDecision {
	if !store.Ready() {
		return GuardDecision{Tag: GuardPending}
	}

	if token == "" {
		return GuardDecision{Tag: GuardDenied, Redirect: SignInPath}
	}

	sess, err := store.Current(ctx, token)
	if err != nil {
		// Backend lookup failure, not a bad token. The session may still
		// be live, so the caller retries instead of re-authenticating.
		return GuardDecision{Tag: GuardPending}
	}
	if sess == nil {
		return GuardDecision{Tag: GuardDenied, Redirect: SignInPath}
	}

	return GuardDecision{Tag: GuardAllowed, Session: sess}
}

// BearerToken extracts the token from an Authorization header, or "".
func BearerToken(header string) string {
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return token
}

// AuthMiddleware enforces the guard on a route group and stows the session
// in Locals for handlers.
func AuthMiddleware(store *session.Store, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c.Get("Authorization"))

		decision := Evaluate(c.Context(), store, token)
		switch decision.Tag {
		case GuardPending:
			c.Set("Retry-After", "1")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "session unavailable, retry shortly"})
		case GuardDenied:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":    "authentication required",
				"redirect": decision.Redirect,
			})
		}

		c.Locals(CtxSession, decision.Session)
		c.Locals(CtxBearerToken, token)
		return c.Next()
	}
}

func GetSession(c *fiber.Ctx) *models.Session {
	sess, _ := c.Locals(CtxSession).(*models.Session)
	return sess
}

func GetBearerToken(c *fiber.Ctx) string {
	token, _ := c.Locals(CtxBearerToken).(string)
	return token
}

func GetUserID(c *fiber.Ctx) uuid.UUID {
	if sess := GetSession(c); sess != nil {
		return sess.UserID
	}
	return uuid.Nil
}
