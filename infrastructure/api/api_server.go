package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pagekeep/doclink"
	apimiddleware "github.com/pagekeep/doclink/infrastructure/api/middleware"
	v1 "github.com/pagekeep/doclink/infrastructure/api/v1"
)

// APIServer provides an HTTP API backed by a doclink Client.
type APIServer struct {
	client       *doclink.Client
	apiKeys      []string
	server       *Server
	router       chi.Router
	routerCalled bool
	logger       *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given doclink Client.
// apiKeys configures write-protection: mutating endpoints (POST, PUT,
// PATCH, DELETE) under /api/v1 require a valid X-API-KEY on top of the
// per-principal permission checks. Reads, metrics, and docs stay open.
func NewAPIServer(client *doclink.Client, apiKeys []string) *APIServer {
	return &APIServer{
		client:  client,
		apiKeys: apiKeys,
		logger:  client.Logger(),
	}
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call
// MountRoutes(). If not called, ListenAndServe creates a default router
// with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all v1 API routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

// mountRoutes wires up all v1 API routes on the given router. Every v1
// route runs behind the principal middleware; the per-route permission
// gates live inside the individual routers.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	documentsRouter := v1.NewDocumentsRouter(c)
	documentTypesRouter := v1.NewDocumentTypesRouter(c)
	metadataTypesRouter := v1.NewMetadataTypesRouter(c)
	smartLinksRouter := v1.NewSmartLinksRouter(c)
	workflowsRouter := v1.NewWorkflowsRouter(c)
	instancesRouter := v1.NewInstancesRouter(c)
	eventsRouter := v1.NewEventsRouter(c)
	usersRouter := v1.NewUsersRouter(c)
	accessEntriesRouter := v1.NewAccessEntriesRouter(c)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-API-KEY", apimiddleware.PrincipalHeader, apimiddleware.CorrelationHeader},
			MaxAge:         300,
		}))
		r.Use(apimiddleware.WriteProtect(a.apiKeys))
		r.Use(apimiddleware.Principal(c.Users, a.logger))

		r.Mount("/documents", documentsRouter.Routes())
		r.Mount("/document-types", documentTypesRouter.Routes())
		r.Mount("/metadata-types", metadataTypesRouter.Routes())
		r.Mount("/smart-links", smartLinksRouter.Routes())
		r.Mount("/workflows", workflowsRouter.Routes())
		r.Mount("/workflow-instances", instancesRouter.Routes())
		r.Mount("/events", eventsRouter.Routes())
		r.Mount("/users", usersRouter.Routes())
		r.Mount("/access-entries", accessEntriesRouter.Routes())
	})

	// Prometheus metrics, outside the v1 group so scrapes skip the
	// principal and key middleware.
	router.Method(http.MethodGet, "/metrics", c.Metrics().Handler())
}

// DocsRouter returns a router for Swagger UI and OpenAPI spec.
func (a *APIServer) DocsRouter(specURL string) *DocsRouter {
	return NewDocsRouter(specURL)
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = &server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
