package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskwave/backend/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.GET("/auth/callback", handlers.Auth.Callback)

	// Protected routes
	r.GET("/profile", authMiddleware(handlers.Profile.GetProfile))

	r.GET("/task", authMiddleware(handlers.Task.List))
	r.GET("/task/filter", authMiddleware(handlers.Task.Filter))
	r.GET("/task/statistics", authMiddleware(handlers.Task.Statistics))
	r.GET("/task/{id}", authMiddleware(handlers.Task.GetByID))
	r.POST("/task/create", authMiddleware(handlers.Task.Create))
	r.PUT("/task/{id}", authMiddleware(handlers.Task.Update))
	r.DELETE("/task/{id}", authMiddleware(handlers.Task.Delete))
	r.POST("/task/{id}/complete", authMiddleware(handlers.Task.Complete))
	r.POST("/task/{id}/start", authMiddleware(handlers.Task.Start))

	return r
}
