package rest

import (
	"log/slog"

	"github.com/frahmantamala/safety-management/internal/annotation"
	"github.com/frahmantamala/safety-management/internal/auth"
	"github.com/frahmantamala/safety-management/internal/certificate"
	"github.com/frahmantamala/safety-management/internal/company"
	"github.com/frahmantamala/safety-management/internal/employee"
	"github.com/frahmantamala/safety-management/internal/metrics"
	"github.com/frahmantamala/safety-management/internal/transport/middleware"
	"github.com/frahmantamala/safety-management/internal/transport/swagger"
	"github.com/go-chi/chi"
)

// Handlers groups everything the router mounts. Nil entries are skipped.
type Handlers struct {
	Auth        *auth.Handler
	Certificate *certificate.Handler
	Employee    *employee.Handler
	Company     *company.Handler
	Annotation  *annotation.Handler
	Health      *HealthHandler
	Metrics     *metrics.Metrics
	MetricsPath string
	Spec        *swagger.Spec
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, allowedOrigins string, logger *slog.Logger) {
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	if h.Metrics != nil {
		router.Use(h.Metrics.Middleware)
		path := h.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, h.Metrics.Handler())
	}

	if h.Spec != nil {
		router.Get(swagger.SpecRoute, h.Spec.ServeSpec)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		if h.Auth == nil {
			return
		}

		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.RefreshToken)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/auth/me", h.Auth.Me)

			if h.Annotation != nil {
				pr.Get("/notes", h.Annotation.ListNotes)
				pr.Post("/notes", h.Annotation.CreateNote)
				pr.Delete("/notes/{id}", h.Annotation.DeleteNote)
			}

			pr.Group(func(vr chi.Router) {
				vr.Use(h.Auth.RequirePermissions(auth.PermissionViewCertificates, auth.PermissionManageCertificates))
				registerReadRoutes(vr, h)
			})

			pr.Group(func(mr chi.Router) {
				mr.Use(h.Auth.RequirePermissions(auth.PermissionManageCertificates))
				registerWriteRoutes(mr, h)
			})
		})
	})
}

func registerReadRoutes(r chi.Router, h Handlers) {
	if h.Certificate != nil {
		r.Get("/certificates", h.Certificate.ListCertificates)
		r.Get("/certificates/{id}", h.Certificate.GetCertificate)
		r.Get("/dashboard", h.Certificate.Dashboard)
		r.Get("/employees/{id}/history", h.Certificate.EmployeeHistory)
		r.Get("/employees/{id}/history.csv", h.Certificate.EmployeeHistoryCSV)
	}
	if h.Employee != nil {
		r.Get("/employees", h.Employee.ListEmployees)
		r.Get("/employees/{id}", h.Employee.GetEmployee)
	}
	if h.Company != nil {
		r.Get("/companies", h.Company.ListCompanies)
		r.Get("/companies/{id}", h.Company.GetCompany)
	}
}

func registerWriteRoutes(r chi.Router, h Handlers) {
	if h.Certificate != nil {
		r.Post("/certificates", h.Certificate.CreateCertificate)
		r.Post("/certificates/import", h.Certificate.Import)
		r.Post("/certificates/sync-status", h.Certificate.SyncStatuses)
		r.Put("/certificates/{id}", h.Certificate.UpdateCertificate)
		r.Delete("/certificates/{id}", h.Certificate.DeleteCertificate)
	}
	if h.Employee != nil {
		r.Post("/employees", h.Employee.CreateEmployee)
	}
	if h.Company != nil {
		r.Post("/companies", h.Company.CreateCompany)
	}
}
