package session

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// FlashCookieName is the cookie carrying a flash to the next request.
	FlashCookieName = "worklog_flash"

	flashLocalsKey = "flash"
	flashTTL       = 5 * time.Minute
)

// Flash categories.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// SetFlash queues a message for the next page render, whether that happens
// in this request or after a redirect.
func SetFlash(c *fiber.Ctx, category, message string) {
	f := Flash{Category: category, Message: message}
	c.Locals(flashLocalsKey, &f)

	b, err := json.Marshal(f)
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		Expires:  time.Now().Add(flashTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// PopFlash returns the pending flash, or nil, and clears it.
func PopFlash(c *fiber.Ctx) *Flash {
	if f, ok := c.Locals(flashLocalsKey).(*Flash); ok && f != nil {
		c.Locals(flashLocalsKey, nil)
		expireCookie(c, FlashCookieName, false)
		return f
	}

	raw := c.Cookies(FlashCookieName)
	if raw == "" {
		return nil
	}
	expireCookie(c, FlashCookieName, false)

	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(b, &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}
