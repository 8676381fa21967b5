package server

import (
	"errors"

	"worklog/internal/middleware"
	"worklog/internal/models"
	"worklog/internal/service"
	"worklog/internal/session"

	"github.com/gofiber/fiber/v2"
)

// LoginPage handles GET /login
func (s *Server) LoginPage(c *fiber.Ctx) error {
	if middleware.CurrentUserID(c) != 0 {
		return c.Redirect("/")
	}
	return s.render(c, fiber.StatusOK, "login", pageData{
		Title: "Log in",
		Form:  service.LoginForm{},
		Next:  c.Query("next"),
	})
}

// Login handles POST /login
func (s *Server) Login(c *fiber.Ctx) error {
	var form service.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form submission")
	}
	next := c.FormValue("next")
	data := pageData{Title: "Log in", Form: service.LoginForm{Username: form.Username}, Next: next}

	user, err := s.authService.Authenticate(c.UserContext(), form)
	if fields, ok := validationErrors(err); ok {
		data.Errors = fields
		return s.render(c, fiber.StatusUnprocessableEntity, "login", data)
	}
	if errors.Is(err, models.ErrInvalidCredentials) {
		session.SetFlash(c, session.FlashError, models.ErrInvalidCredentials.Message)
		return s.render(c, fiber.StatusUnauthorized, "login", data)
	}
	if err != nil {
		return err
	}

	if err := s.sessions.Login(c, user.ID); err != nil {
		return err
	}
	middleware.Logger.InfoContext(c.UserContext(), "user logged in", "user_id", user.ID)
	session.SetFlash(c, session.FlashSuccess, "You've been logged in!")
	return c.Redirect(safeNext(next))
}

// Logout handles GET /logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.sessions.Logout(c); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "session revocation failed", "error", err)
	}
	session.SetFlash(c, session.FlashSuccess, "You've been logged out! Come back soon!")
	return c.Redirect("/")
}
