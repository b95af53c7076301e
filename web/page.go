package web

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed index.html
var indexHTML string

// handleIndex serves the single-page chat interface. All interaction after
// this point goes through the JSON API; the page keeps its session id and
// rendered log in browser memory only.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(indexHTML)
}
