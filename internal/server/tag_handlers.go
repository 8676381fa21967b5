package server

import (
	"github.com/gofiber/fiber/v2"
)

// AllTags handles GET /tags
func (s *Server) AllTags(c *fiber.Ctx) error {
	tags, err := s.tagService.ListDistinct(c.UserContext())
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "all_tags", pageData{Title: "Tags", Tags: tags})
}

// EntriesByTag handles GET /tags/:slug
func (s *Server) EntriesByTag(c *fiber.Ctx) error {
	tagSlug := c.Params("slug")
	entries, err := s.entryService.ListByTag(c.UserContext(), tagSlug)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "tags", pageData{
		Title:   "Tagged " + tagSlug,
		Entries: entries,
		TagSlug: tagSlug,
	})
}
