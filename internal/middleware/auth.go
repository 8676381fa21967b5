package middleware

import (
	"context"
	"net/url"

	"worklog/internal/session"

	"github.com/gofiber/fiber/v2"
)

// UserIDLocal is the Fiber locals key holding the signed-in user's id.
const UserIDLocal = "userID"

// UserLookup reports whether the account a session names still exists.
type UserLookup func(ctx context.Context, id uint) (bool, error)

// LoadUser resolves the session cookie on every request. A valid session
// for an existing user stores the user id in c.Locals and in the request
// context; anything else leaves the request anonymous. A nil lookup trusts
// the signed user id.
func LoadUser(sm *session.Manager, lookup UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := sm.Current(c)
		if err != nil {
			if claims == nil {
				return c.Next()
			}
			// Revocation store unreachable: keep the signed session.
			Logger.WarnContext(c.UserContext(), "session revocation check failed", "error", err)
		}

		if lookup != nil {
			exists, err := lookup(c.UserContext(), claims.UserID)
			if err != nil {
				Logger.ErrorContext(c.UserContext(), "session user lookup failed", "user_id", claims.UserID, "error", err)
				return c.Next()
			}
			if !exists {
				Logger.InfoContext(c.UserContext(), "session names unknown user", "user_id", claims.UserID)
				return c.Next()
			}
		}

		c.Locals(UserIDLocal, claims.UserID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, claims.UserID))
		return c.Next()
	}
}

// CurrentUserID returns the signed-in user's id, or 0 for anonymous requests.
func CurrentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(UserIDLocal).(uint)
	return id
}

// LoginRequired redirects anonymous requests to /login, passing the
// requested path as next. It must run after LoadUser.
func LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUserID(c) != 0 {
			return c.Next()
		}
		return c.Redirect("/login?next=" + url.QueryEscape(c.OriginalURL()))
	}
}
