/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/paie/*        Payslip computation (preview + authoritative)
  /api/rubriques     Pay-line catalog
  /api/parametres    Fiscal parameter windows
  /api/bareme        IRPP bracket table
  /api/grille        Salary grid
  /api/employes/*    Employee management
  /api/scenarios/*   Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Computation routes
		r.Route("/paie", func(r chi.Router) {
			r.Post("/calculer", h.Calculer)
			r.Post("/rubriques/calculer", h.CalculerRubrique)
			r.Post("/bulletins", h.GenererBulletin)
			r.Get("/bulletins", h.ListBulletins)
			r.Post("/batch", h.Batch)
		})

		// Configuration routes
		r.Route("/rubriques", func(r chi.Router) {
			r.Get("/", h.ListRubriques)
			r.Post("/", h.UpsertRubrique)
		})
		r.Route("/parametres", func(r chi.Router) {
			r.Get("/", h.ListParametres)
			r.Post("/", h.CreateParametre)
		})
		r.Route("/bareme", func(r chi.Router) {
			r.Get("/", h.GetBareme)
			r.Put("/", h.PutBareme)
		})
		r.Route("/grille", func(r chi.Router) {
			r.Get("/", h.GetGrille)
			r.Put("/", h.PutGrille)
		})

		// Employee routes
		r.Route("/employes", func(r chi.Router) {
			r.Get("/", h.ListEmployes)
			r.Post("/", h.UpsertEmploye)
			r.Get("/{id}", h.GetEmploye)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
