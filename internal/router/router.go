package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/project-workflow/internal/handler"
	"github.com/iliyamo/project-workflow/internal/middleware"
	"github.com/iliyamo/project-workflow/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints under /v1/auth plus the
// authenticated /v1/me profile read.  There is no register endpoint: the
// identity provider owns sign-up, and login exchanges its token for an
// internal session.  The optional limit middleware throttles the
// unauthenticated endpoints, which see untrusted traffic.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limit != nil {
		g.Use(limit)
	}
	g.POST("/login", a.Login)
	// /refresh rotates the refresh token; /refresh-access only mints a new
	// access token and leaves the stored refresh token untouched.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleProjectManager, model.RoleOperationsManager),
	)
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout-all", a.LogoutAll)
}

// RegisterWorkflow registers the project, task and notification endpoints
// under /v1.  Every route requires a valid session; either role may call
// them.  The optional cache middleware is applied to the read-heavy list
// endpoints only — task history and unread notifications must always be
// fresh.
func RegisterWorkflow(e *echo.Echo, p *handler.ProjectHandler, t *handler.TaskHandler,
	n *handler.NotificationHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleProjectManager, model.RoleOperationsManager),
	)

	// ---- Projects ----
	g.POST("/projects", p.Create)
	if cache != nil {
		g.GET("/projects", p.List, cache)
	} else {
		g.GET("/projects", p.List)
	}
	g.GET("/projects/:id", p.Get)
	g.GET("/users/project-managers", p.ListProjectManagers)

	// ---- Tasks ----
	g.POST("/tasks/:id/status", t.UpdateStatus)
	g.POST("/tasks/:id/documents", t.UploadDocument)
	g.POST("/tasks/:id/update", t.CombinedUpdate) // status + optional file, one audit entry
	g.POST("/tasks/:id/assign", t.Assign)
	g.GET("/tasks/:id/logs", t.ListLogs)
	g.GET("/tasks/:id/documents", t.ListDocuments)

	// ---- Notifications ----
	g.GET("/notifications", n.ListUnread)
	g.POST("/notifications/:id/read", n.MarkRead)
}

// RegisterRegistry registers the phase and template administration routes.
// These shape every future project, so they are restricted to operations
// managers.
func RegisterRegistry(e *echo.Echo, r *handler.RegistryHandler, u *handler.UserHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOperationsManager),
	)

	// ---- User audit ----
	g.GET("/users/:id/role-history", u.RoleHistory)

	// ---- Phases ----
	g.POST("/phases", r.CreatePhase)
	g.PUT("/phases/:id", r.UpdatePhase)
	g.DELETE("/phases/:id", r.DeletePhase)

	// ---- Templates ----
	g.POST("/templates", r.CreateTemplate)
	g.PUT("/templates/:id", r.UpdateTemplate)
	g.DELETE("/templates/:id", r.DeleteTemplate)
}

// RegisterCatalog registers the read side of the registry.  Both roles need
// the lists: project managers see them when reviewing cloned tasks, and the
// project creation form groups tasks by phase.
func RegisterCatalog(e *echo.Echo, r *handler.RegistryHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleProjectManager, model.RoleOperationsManager),
	)
	if cache != nil {
		g.GET("/phases", r.ListPhases, cache)
		g.GET("/templates", r.ListTemplates, cache)
		return
	}
	g.GET("/phases", r.ListPhases)
	g.GET("/templates", r.ListTemplates)
}
