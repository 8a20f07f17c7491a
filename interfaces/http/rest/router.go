package rest

import (
	"net/http"

	"ideaweaver/infrastructure/di"
	"ideaweaver/interfaces/http/rest/handlers"
	"ideaweaver/interfaces/http/rest/middleware"
	pkgerrors "ideaweaver/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{container: container}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	c := rt.container
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(c.Logger))

	if c.Config.EnableTracing {
		router.Use(middleware.Tracing(c.Tracer))
	}

	if c.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	errorHandler := pkgerrors.NewErrorHandler(c.Logger, c.Config.Environment != "production")

	profileHandler := handlers.NewProfileHandler(c.Profiles, c.Reset, c.QueryBus, errorHandler, c.Logger)
	ideaHandler := handlers.NewIdeaHandler(c.Capture, c.UpdateIdea, c.DeleteIdea, c.QueryBus, errorHandler, c.Logger)
	linkHandler := handlers.NewLinkHandler(c.Autolink, c.LinkIdeas, c.Metrics, errorHandler, c.Logger)
	collectiveHandler := handlers.NewCollectiveHandler(c.Collective, errorHandler, c.Logger)
	graphHandler := handlers.NewGraphHandler(c.QueryBus, errorHandler, c.Logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(c.RateLimiter, c.Logger))

		r.Route("/profiles", func(r chi.Router) {
			r.Post("/", profileHandler.CreateProfile)
			r.Get("/", profileHandler.ListProfiles)

			r.Route("/{profileID}", func(r chi.Router) {
				r.Put("/", profileHandler.UpdateProfile)
				r.Delete("/", profileHandler.DeleteProfile)
				r.Post("/reset", profileHandler.ResetProfile)
				r.Post("/autolink", linkHandler.AutolinkProfile)
				r.Post("/edges", linkHandler.LinkIdeas)
				r.Get("/graph", graphHandler.GetGraph)
				r.Post("/context-map", graphHandler.GetContextMap)

				r.Route("/ideas", func(r chi.Router) {
					r.Post("/", ideaHandler.CaptureIdea)
					r.Get("/", ideaHandler.SearchIdeas)
					r.Get("/{nodeID}", ideaHandler.GetIdea)
					r.Put("/{nodeID}", ideaHandler.UpdateIdea)
					r.Delete("/{nodeID}", ideaHandler.DeleteIdea)
					r.Post("/{nodeID}/autolink", linkHandler.AutolinkIdea)
				})

				r.Route("/collective", func(r chi.Router) {
					r.Post("/select", collectiveHandler.Select)
					r.Post("/compose", collectiveHandler.Compose)
				})
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
