// Package api sets up and starts the API server with routing,
// middleware, metrics, and Swagger documentation.
package api

import (
	"fmt"
	"net/http"

	_ "github.com/matt-dz/tidyplan/docs"
	"github.com/matt-dz/tidyplan/internal/api/middleware"
	"github.com/matt-dz/tidyplan/internal/api/routes/auth"
	"github.com/matt-dz/tidyplan/internal/api/routes/families"
	"github.com/matt-dz/tidyplan/internal/api/routes/invitations"
	"github.com/matt-dz/tidyplan/internal/api/routes/ping"
	"github.com/matt-dz/tidyplan/internal/api/routes/projects"
	"github.com/matt-dz/tidyplan/internal/api/routes/tasks"
	"github.com/matt-dz/tidyplan/internal/api/routes/users"
	"github.com/matt-dz/tidyplan/internal/env"
	"github.com/matt-dz/tidyplan/internal/role"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func addDocs(r *chi.Mux, serverAddr string) {
	swagger := httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s/api/swagger/doc.json", serverAddr)),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	)

	r.Mount("/api/swagger", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// Handle preflight
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Allow GET to serve Swagger
		if req.Method == http.MethodGet {
			swagger.ServeHTTP(w, req)
			return
		}

		// Block anything else
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}))
}

func addRoutes(router *chi.Mux) {
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/ping", ping.HandlePing)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", auth.HandleLogin)
			r.With(middleware.AuthorizeRequest(role.RoleUser)).
				Get("/session/verify", auth.HandleVerifySession)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AuthorizeRequest(role.RoleAdmin))

			r.Post("/users", users.HandleCreateUser)
		})

		r.With(middleware.AuthorizeRequest(role.RoleUser)).
			Post("/families", families.HandleCreateFamily)
		r.With(middleware.AuthorizeRequest(role.RoleUser)).
			Post("/projects", projects.HandleCreateProject)

		r.Route("/invitations", func(r chi.Router) {
			// Validation is lookup-only and reachable before login so
			// clients can preview an invitation on the join screen.
			r.Post("/validate", invitations.HandleValidateInvitation)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthorizeRequest(role.RoleUser))

				r.Post("/", invitations.HandleCreateInvitation)
				r.Post("/join", invitations.HandleJoinInvitation)
			})

			r.With(middleware.AuthorizeRequest(role.RoleAdmin)).
				Delete("/{code}", invitations.HandleRevokeInvitation)
		})

		r.With(middleware.AuthorizeRequest(role.RoleUser)).
			Post("/tasks/suggest", tasks.HandleSuggestTasks)
	})
}

// Start godoc
//
//	@title						TidyPlan API
//	@version					1.0
//	@description				API Server for the TidyPlan application.
//
//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						access
//
//	@host						localhost:8080
//	@BasePath					/api
func Start(env *env.Env) error {
	router := chi.NewRouter()
	router.Use(middleware.AddRequestID)
	router.Use(middleware.LogRequest(env.Logger))
	router.Use(middleware.InjectEnv(env))
	router.Use(middleware.AddCors)
	router.Use(middleware.CollectMetrics)

	addRoutes(router)
	serverAddr := fmt.Sprintf("0.0.0.0:%d", env.Config.Port)
	addDocs(router, serverAddr)

	env.Logger.Info(fmt.Sprintf("Listening at %s", serverAddr))
	env.Logger.Info(fmt.Sprintf("Swagger UI available at http://%s/api/swagger/index.html", serverAddr))
	return http.ListenAndServe(fmt.Sprintf(":%d", env.Config.Port), router)
}
