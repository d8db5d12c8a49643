package handlers

import "github.com/gofiber/fiber/v2"

// RouteDoc describes one public route.
type RouteDoc struct {
	Method        string `json:"method"`
	Path          string `json:"path"`
	Summary       string `json:"summary"`
	Authenticated bool   `json:"authenticated"`
}

// DocsHandler serves the route catalogue. It is reachable without a token.
type DocsHandler struct {
	title   string
	version string
	routes  []RouteDoc
}

// NewDocsHandler constructs handler.
func NewDocsHandler(title, version string, routes []RouteDoc) *DocsHandler {
	return &DocsHandler{title: title, version: version, routes: routes}
}

func (h *DocsHandler) Catalogue(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title":   h.title,
		"version": h.version,
		"auth": fiber.Map{
			"scheme": "Bearer",
			"header": fiber.HeaderAuthorization,
			"obtain": "POST /api/login",
		},
		"routes": h.routes,
	})
}
