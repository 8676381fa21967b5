package server

import (
	"worklog/internal/service"
	"worklog/internal/session"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /
func (s *Server) Index(c *fiber.Ctx) error {
	entries, err := s.entryService.List(c.UserContext())
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "index", pageData{Title: "Work Log", Entries: entries})
}

// EntryDetail handles GET /entries/:slug
func (s *Server) EntryDetail(c *fiber.Ctx) error {
	entry, err := s.entryService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "detail", pageData{Title: entry.Title, Entry: entry})
}

// NewEntryPage handles GET /entry
func (s *Server) NewEntryPage(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "new", pageData{
		Title:  "New Entry",
		Form:   service.EntryForm{},
		Action: "/entry",
	})
}

// CreateEntry handles POST /entry
func (s *Server) CreateEntry(c *fiber.Ctx) error {
	var form service.EntryForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form submission")
	}

	_, err := s.entryService.Create(c.UserContext(), form)
	if fields, ok := validationErrors(err); ok {
		return s.render(c, fiber.StatusUnprocessableEntity, "new", pageData{
			Title:  "New Entry",
			Form:   form,
			Errors: fields,
			Action: "/entry",
		})
	}
	if err != nil {
		return err
	}

	session.SetFlash(c, session.FlashSuccess, "Entry created")
	return c.Redirect("/")
}

// EditEntryPage handles GET /entries/edit/:slug
func (s *Server) EditEntryPage(c *fiber.Ctx) error {
	entry, err := s.entryService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "new", pageData{
		Title:  "Edit Entry",
		Form:   service.EntryFormFrom(entry),
		Entry:  entry,
		Action: "/entries/edit/" + entry.Slug,
	})
}

// UpdateEntry handles POST /entries/edit/:slug
func (s *Server) UpdateEntry(c *fiber.Ctx) error {
	entrySlug := c.Params("slug")

	var form service.EntryForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form submission")
	}

	_, err := s.entryService.Update(c.UserContext(), entrySlug, form)
	if fields, ok := validationErrors(err); ok {
		return s.render(c, fiber.StatusUnprocessableEntity, "new", pageData{
			Title:  "Edit Entry",
			Form:   form,
			Errors: fields,
			Action: "/entries/edit/" + entrySlug,
		})
	}
	if err != nil {
		return err
	}

	session.SetFlash(c, session.FlashSuccess, "Entry updated")
	return c.Redirect("/")
}

// DeleteEntry handles GET /delete/:slug
func (s *Server) DeleteEntry(c *fiber.Ctx) error {
	if err := s.entryService.Delete(c.UserContext(), c.Params("slug")); err != nil {
		return err
	}
	session.SetFlash(c, session.FlashSuccess, "Entry deleted.")
	return c.Redirect("/")
}
