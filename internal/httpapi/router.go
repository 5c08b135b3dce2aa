package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"servicecenter/internal/api"
	"servicecenter/internal/auth"
	"servicecenter/internal/branch"
	"servicecenter/internal/customer"
	"servicecenter/internal/notify"
	"servicecenter/internal/session"
	"servicecenter/internal/staff"
	"servicecenter/internal/submission"
	"servicecenter/internal/ticket"
	"servicecenter/internal/workflow"
	"servicecenter/pkg/config"
)

type Dependencies struct {
	Cfg       config.Config
	DB        *pgxpool.Pool
	Guard     submission.Guard
	Publisher notify.Publisher
	// Accounts defaults to the staff table.
	Accounts api.AccountLookup
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Guard == nil {
		deps.Guard = submission.NewMemoryGuard()
	}
	if deps.Publisher == nil {
		deps.Publisher = notify.Noop{}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(api.RequestLog)
	r.Use(api.CORSMiddleware(api.CORSOptions{
		AllowedOrigins: deps.Cfg.AllowedOrigins,
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAgeSeconds:  600,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	tokens := auth.NewIssuer(deps.Cfg.Auth.JWTSecret, deps.Cfg.Auth.TokenTTL)
	staffRepo := staff.NewRepository(deps.DB)
	if deps.Accounts == nil {
		deps.Accounts = staff.Accounts{Staff: staffRepo}
	}

	sessionHandlers := session.Handlers{Staff: staffRepo, Tokens: tokens}
	branchHandlers := branch.Handlers{Branches: branch.NewRepository(deps.DB)}
	staffHandlers := staff.Handlers{Staff: staffRepo, BcryptCost: deps.Cfg.Auth.BcryptCost}
	customerHandlers := customer.Handlers{Customers: customer.NewRepository(deps.DB)}
	ticketHandlers := ticket.Handlers{
		Tickets: ticket.NewRepository(deps.DB),
		Workflow: workflow.New(workflow.Policy{
			MinCancellationReasonLength: deps.Cfg.Workflow.CancellationReasonMinLength,
		}),
		Guard:     deps.Guard,
		Publisher: deps.Publisher,
	}

	managers := api.RequireRole(auth.RoleAdmin, auth.RoleManager)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", sessionHandlers.Login)

		r.Group(func(r chi.Router) {
			r.Use(api.BearerAuth(tokens, deps.Accounts))

			r.Get("/auth/me", sessionHandlers.Me)
			r.Get("/statuses", ticketHandlers.Statuses)

			r.Get("/branches", branchHandlers.List)
			r.Get("/branches/{id}", branchHandlers.Get)
			r.Group(func(r chi.Router) {
				r.Use(api.RequireRole(auth.RoleAdmin))
				r.Post("/branches", branchHandlers.Create)
				r.Put("/branches/{id}", branchHandlers.Update)
				r.Delete("/branches/{id}", branchHandlers.Delete)
			})

			r.Group(func(r chi.Router) {
				r.Use(managers)
				r.Get("/staff", staffHandlers.List)
				r.Get("/staff/{id}", staffHandlers.Get)
				r.Post("/staff", staffHandlers.Create)
				r.Put("/staff/{id}", staffHandlers.Update)
				r.Delete("/staff/{id}", staffHandlers.Delete)
			})

			r.Get("/customers", customerHandlers.List)
			r.Get("/customers/{id}", customerHandlers.Get)
			r.Post("/customers", customerHandlers.Create)
			r.Put("/customers/{id}", customerHandlers.Update)
			r.With(managers).Delete("/customers/{id}", customerHandlers.Delete)

			r.Get("/tickets", ticketHandlers.List)
			r.Post("/tickets", ticketHandlers.Create)
			r.Get("/tickets/{id}", ticketHandlers.Get)
			r.Put("/tickets/{id}", ticketHandlers.Update)
			r.Put("/tickets/{id}/technician", ticketHandlers.AssignTechnician)
			r.Patch("/tickets/{id}/status", ticketHandlers.PatchStatus)
			r.Get("/tickets/{id}/events", ticketHandlers.Events)
			r.With(managers).Delete("/tickets/{id}", ticketHandlers.Delete)
		})
	})

	return r
}
