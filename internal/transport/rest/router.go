package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/avaldivia/document-routing/internal/auth"
	"github.com/avaldivia/document-routing/internal/chargebook"
	"github.com/avaldivia/document-routing/internal/department"
	"github.com/avaldivia/document-routing/internal/derivation"
	"github.com/avaldivia/document-routing/internal/document"
	"github.com/avaldivia/document-routing/internal/employee"
	"github.com/avaldivia/document-routing/internal/transport/middleware"
	"github.com/avaldivia/document-routing/internal/transport/swagger"
	"github.com/avaldivia/document-routing/internal/user"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth       *auth.Handler
	Authorizer *auth.Authorization
	Department *department.Handler
	Employee   *employee.Handler
	User       *user.Handler
	Document   *document.Handler
	Derivation *derivation.Handler
	ChargeBook *chargebook.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.Instrument)

	middleware.InitMetrics()
	router.Handle("/metrics", middleware.MetricsHandler())

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// Everything below requires a valid token.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.Auth.Me)

			// Administrative resources.
			pr.Group(func(ar chi.Router) {
				ar.Use(h.Authorizer.RequireAdmin())

				ar.Route("/departments", func(dr chi.Router) {
					dr.Post("/", h.Department.CreateDepartment)
					dr.Patch("/{id}", h.Department.UpdateDepartment)
					dr.Delete("/{id}", h.Department.DeleteDepartment)
				})

				ar.Route("/employees", func(er chi.Router) {
					er.Post("/", h.Employee.CreateEmployee)
					er.Patch("/{id}", h.Employee.UpdateEmployee)
					er.Delete("/{id}", h.Employee.DeleteEmployee)
				})

				ar.Route("/users", func(ur chi.Router) {
					ur.Post("/", h.User.CreateUser)
					ur.Get("/", h.User.ListUsers)
					ur.Get("/{id}", h.User.GetUser)
					ur.Patch("/{id}", h.User.UpdateUser)
				})
			})

			pr.Get("/departments", h.Department.ListDepartments)
			pr.Get("/departments/{id}", h.Department.GetDepartment)
			pr.Get("/employees", h.Employee.ListEmployees)
			pr.Get("/employees/{id}", h.Employee.GetEmployee)

			pr.Route("/documents", func(dr chi.Router) {
				dr.Post("/", h.Document.CreateDocument)
				dr.Get("/", h.Document.ListDocuments)
				dr.Get("/{id}", h.Document.GetDocument)
				dr.Patch("/{id}", h.Document.UpdateDocument)
				dr.Delete("/{id}", h.Document.DeleteDocument)
				dr.Post("/{id}/file", h.Document.UploadDocumentFile)
			})

			pr.Route("/derivations", func(dr chi.Router) {
				dr.Post("/", h.Derivation.CreateDerivation)
				dr.Get("/inbox", h.Derivation.Inbox)
				dr.Get("/outbox", h.Derivation.Outbox)
				dr.Get("/{id}", h.Derivation.GetDerivation)
				dr.Patch("/{id}", h.Derivation.UpdateDerivation)
				dr.Delete("/{id}", h.Derivation.DeleteDerivation)
				dr.Post("/{id}/receive", h.Derivation.ReceiveDerivation)
				dr.Post("/{id}/reject", h.Derivation.RejectDerivation)
			})

			pr.Route("/chargebook", func(cr chi.Router) {
				cr.Get("/", h.ChargeBook.ListEntries)
				cr.Get("/{id}", h.ChargeBook.GetEntry)
				cr.Delete("/{id}", h.ChargeBook.DeleteEntry)
			})
		})
	})
}
