package server

import (
	"errors"
	"strings"

	"worklog/internal/middleware"
	"worklog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders failures as HTML pages. NOT_FOUND and unknown routes
// get the 404 page; anything unexpected is logged and gets the generic page.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Something went wrong on our side."

	var fe *fiber.Error
	var appErr *models.AppError
	switch {
	case errors.As(err, &fe):
		status = fe.Code
		message = fe.Message
	case errors.As(err, &appErr):
		status = statusFor(appErr.Code)
		if status < fiber.StatusInternalServerError {
			message = appErr.Message
		}
	}

	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error", "error", err, "path", c.Path())
		message = "Something went wrong on our side."
	}

	page := "error"
	if status == fiber.StatusNotFound {
		page = "404"
	}

	if rerr := s.render(c, status, page, pageData{Title: "Error", Status: status, Message: message}); rerr != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "error page failed", "error", rerr)
		return c.Status(status).SendString(message)
	}
	return nil
}

func statusFor(code string) int {
	switch code {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusUnprocessableEntity
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// validationErrors returns the field messages of a VALIDATION_ERROR.
func validationErrors(err error) (map[string]string, bool) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeValidation {
		return nil, false
	}
	if len(appErr.Fields) == 0 {
		return map[string]string{"form": appErr.Message}, true
	}
	return appErr.Fields, true
}

// safeNext returns next when it is a local path, "/" otherwise.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
