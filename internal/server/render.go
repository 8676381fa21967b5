package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"worklog/internal/middleware"
	"worklog/internal/models"
	"worklog/internal/session"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"index", "login", "new", "detail", "all_tags", "tags", "404", "error",
}

type renderer struct {
	pages map[string]*template.Template
}

// newRenderer parses every page together with the shared layout.
func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// pageData is the value every template executes against.
type pageData struct {
	Title     string
	SignedIn  bool
	Flash     *session.Flash
	CSRFToken string

	Form   any
	Errors map[string]string
	Action string
	Next   string

	Entries []*models.Entry
	Entry   *models.Entry
	Tags    []models.TagSummary
	TagSlug string

	Status  int
	Message string
}

// render executes page with data and writes it with status. The pending
// flash is consumed here.
func (s *Server) render(c *fiber.Ctx, status int, page string, data pageData) error {
	t, ok := s.pages.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	data.SignedIn = middleware.CurrentUserID(c) != 0
	data.Flash = session.PopFlash(c)
	data.CSRFToken, _ = c.Locals(csrfContextKey).(string)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}
