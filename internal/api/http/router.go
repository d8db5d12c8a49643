package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/phonebook/internal/api/http/handlers"
	"github.com/spec-kit/phonebook/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Contacts      *handlers.ContactsHandler
	Addresses     *handlers.AddressesHandler
	Authenticator *auth.Authenticator
	Title         string
	Version       string
}

type route struct {
	method     string
	path       string
	summary    string
	capability auth.Capability
	handler    fiber.Handler
}

// open reports whether the route is reachable without a principal.
func (r route) open() bool {
	return r.capability == ""
}

func apiRoutes(cfg RouteConfig) []route {
	return []route{
		{fiber.MethodPost, "/api/register", "register an identity", "", cfg.Auth.Register},
		{fiber.MethodPost, "/api/login", "exchange credentials for a bearer token", "", cfg.Auth.Login},

		{fiber.MethodPost, "/api/contacts", "create a contact owned by the caller", auth.CapabilityContacts, cfg.Contacts.Create},
		{fiber.MethodGet, "/api/contacts", "search the caller's contacts", auth.CapabilityContacts, cfg.Contacts.List},
		{fiber.MethodGet, "/api/contacts/:id", "read one of the caller's contacts", auth.CapabilityContacts, cfg.Contacts.Get},
		{fiber.MethodPut, "/api/contacts/:id", "update one of the caller's contacts", auth.CapabilityContacts, cfg.Contacts.Update},
		{fiber.MethodDelete, "/api/contacts/:id", "delete one of the caller's contacts", auth.CapabilityContacts, cfg.Contacts.Delete},

		{fiber.MethodPost, "/api/addresses", "create a shared address", auth.CapabilityAddresses, cfg.Addresses.Create},
		{fiber.MethodGet, "/api/addresses", "search shared addresses", auth.CapabilityAddresses, cfg.Addresses.List},
		{fiber.MethodGet, "/api/addresses/:id", "read a shared address", auth.CapabilityAddresses, cfg.Addresses.Get},
		{fiber.MethodPut, "/api/addresses/:id", "update a shared address", auth.CapabilityAddresses, cfg.Addresses.Update},
		{fiber.MethodDelete, "/api/addresses/:id", "delete a shared address", auth.CapabilityAddresses, cfg.Addresses.Delete},
	}
}

// RegisterRoutes wires HTTP routes. The authenticator runs for every
// request; protected routes then require the principal it attached.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Use(cfg.Authenticator.Handle)

	routes := apiRoutes(cfg)
	docs := make([]handlers.RouteDoc, 0, len(routes)+1)
	docs = append(docs, handlers.RouteDoc{Method: fiber.MethodGet, Path: "/api-docs", Summary: "this catalogue"})

	for _, r := range routes {
		chain := []fiber.Handler{r.handler}
		if !r.open() {
			chain = []fiber.Handler{auth.RequireAuthenticated(), auth.RequireCapability(r.capability), r.handler}
		}
		app.Add(r.method, r.path, chain...)
		docs = append(docs, handlers.RouteDoc{
			Method:        r.method,
			Path:          r.path,
			Summary:       r.summary,
			Authenticated: !r.open(),
		})
	}

	app.Get("/api-docs", handlers.NewDocsHandler(cfg.Title, cfg.Version, docs).Catalogue)
}
