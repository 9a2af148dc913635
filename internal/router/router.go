// Package router sets up the HTTP router and middleware chain.
package router

import (
	"log/slog"
	"net/http"

	"github.com/apricitydigital/attendance-core/internal/config"
	"github.com/apricitydigital/attendance-core/internal/handler"
	"github.com/apricitydigital/attendance-core/internal/middleware"
	"github.com/apricitydigital/attendance-core/internal/service"
	"github.com/apricitydigital/attendance-core/internal/token"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Dependencies holds everything the router needs to wire the attendance
// API's HTTP surface (spec.md §6).
type Dependencies struct {
	Config      *config.Config
	Logger      zerolog.Logger
	SlogLogger  *slog.Logger
	TokenIssuer *token.Issuer
	RBAC        *service.RBACService
	Scope       *service.ScopeService
	RateLimiter middleware.RateLimiter
	Audit       middleware.AuditRecorder

	HealthHandler     *handler.HealthHandler
	AuthHandler       *handler.AuthHandler
	RoleHandler       *handler.RoleHandler
	UserHandler       *handler.UserHandler
	AuditHandler      *handler.AuditHandler
	LocationHandler   *handler.LocationHandler
	AttendanceHandler *handler.AttendanceHandler
	ReportHandler     *handler.ReportHandler
	MessagingHandler  *handler.MessagingHandler
}

// New creates a new router with all middleware and routes configured.
func New(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	rbacMW := middleware.NewRBACMiddleware(deps.RBAC, deps.SlogLogger)
	scopeMW := middleware.NewScopeMiddleware(deps.Scope)
	authMW := middleware.Auth(deps.TokenIssuer, deps.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.FrontendOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global middleware (order matters!)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Trace())
	r.Use(chimiddleware.Timeout(deps.Config.Server.WriteTimeout))
	r.Use(middleware.Audit(deps.Audit))

	r.Get("/health", deps.HealthHandler.Health)
	r.Get("/ready", deps.HealthHandler.Ready)

	r.Route("/api", func(r chi.Router) {
		// Auth: login endpoints are public but brute-force rate limited;
		// everything else under /auth requires a verified bearer token.
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.LoginRateLimit(deps.RateLimiter, deps.Config.Auth.LoginRateLimit, deps.Logger)).
				Post("/login", deps.AuthHandler.Login)
			r.With(middleware.LoginRateLimit(deps.RateLimiter, deps.Config.Auth.LoginRateLimit, deps.Logger)).
				Post("/supervisor-login", deps.AuthHandler.SupervisorLogin)

			r.Group(func(r chi.Router) {
				r.Use(authMW)
				r.Use(middleware.RateLimit(deps.RateLimiter, deps.Config.RateLimit.DefaultRPM, deps.Logger))
				r.Get("/me", deps.AuthHandler.Me)
				r.Post("/logout", deps.AuthHandler.Logout)
			})
		})

		// Everything past this point requires a verified bearer token.
		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Use(middleware.RateLimit(deps.RateLimiter, deps.Config.RateLimit.DefaultRPM, deps.Logger))

			r.Route("/rbac", func(r chi.Router) {
				r.Use(rbacMW.Authorize("rbac", "manage"))

				r.Get("/permissions", deps.RoleHandler.ListPermissions)

				r.Route("/roles", func(r chi.Router) {
					r.Get("/", deps.RoleHandler.ListRoles)
					r.Post("/", deps.RoleHandler.CreateRole)
					r.Get("/{id}", deps.RoleHandler.GetRole)
					r.Put("/{id}", deps.RoleHandler.UpdateRole)
					r.Delete("/{id}", deps.RoleHandler.DeleteRole)
					r.Post("/{id}/permissions", deps.RoleHandler.GrantPermission)
					r.Delete("/{id}/permissions/{permissionID}", deps.RoleHandler.RevokePermission)
				})

				r.Route("/users/{userID}", func(r chi.Router) {
					r.Get("/roles", deps.RoleHandler.GetUserRoles)
					r.Post("/roles", deps.RoleHandler.AssignRole)
					r.Delete("/roles/{roleID}", deps.RoleHandler.RevokeRole)
					r.Get("/permissions", deps.RoleHandler.GetUserPermissions)
					r.Post("/permissions", deps.RoleHandler.GrantUserPermission)
					r.Delete("/permissions/{permissionID}", deps.RoleHandler.RevokeUserPermission)
					r.Get("/check", deps.RoleHandler.CheckPermission)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.With(rbacMW.Authorize("user", "view")).Get("/", deps.UserHandler.ListUsers)
				r.With(rbacMW.Authorize("user", "manage")).Post("/", deps.UserHandler.CreateUser)
				r.Put("/me/password", deps.UserHandler.ChangePassword)
				r.With(rbacMW.Authorize("user", "view")).Get("/{userID}", deps.UserHandler.GetUser)
				r.With(rbacMW.Authorize("user", "manage")).Put("/{userID}", deps.UserHandler.UpdateUser)
				r.With(rbacMW.Authorize("user", "manage")).Delete("/{userID}", deps.UserHandler.DeleteUser)
			})

			r.With(rbacMW.Authorize("audit", "view")).Get("/audit-logs", deps.AuditHandler.List)

			r.Route("/cities", func(r chi.Router) {
				r.Use(scopeMW.Inject("location", "view"))
				r.Get("/", deps.LocationHandler.ListCities)
				r.Get("/{cityID}/zones", deps.LocationHandler.ListZones)
			})
			r.Get("/zones/{zoneID}/wards", deps.LocationHandler.ListWards)
			r.Get("/departments", deps.LocationHandler.ListDepartments)
			r.Get("/designations", deps.LocationHandler.ListDesignations)

			r.Route("/attendance", func(r chi.Router) {
				r.With(rbacMW.Authorize("attendance", "punch")).Post("/", deps.AttendanceHandler.GetOrCreate)
				r.Route("/download", func(r chi.Router) {
					r.Use(rbacMW.Authorize("attendance", "report"))
					r.Use(scopeMW.Inject("attendance", "report"))
					r.Get("/", deps.ReportHandler.Download)
				})
				r.Route("/short-report", func(r chi.Router) {
					r.Use(rbacMW.Authorize("attendance", "view"))
					r.Use(scopeMW.Inject("attendance", "view"))
					r.Get("/", deps.ReportHandler.ShortReport)
				})
			})

			r.Route("/app/attendance/employee", func(r chi.Router) {
				r.Use(rbacMW.Authorize("attendance", "punch"))
				r.Get("/", deps.AttendanceHandler.GetOrCreate)
				r.Post("/", deps.AttendanceHandler.Punch)
				r.Post("/face-attendance", deps.AttendanceHandler.FaceAttendance)
				r.Get("/image", deps.AttendanceHandler.Image)

				r.Route("/faceRoutes", func(r chi.Router) {
					r.Use(rbacMW.Authorize("employee", "manage"))
					r.Post("/store-face", deps.AttendanceHandler.StoreFace)
					r.Delete("/{empId}", deps.AttendanceHandler.UnenrollFace)
				})
			})

			r.Route("/whatsapp", func(r chi.Router) {
				r.Use(rbacMW.Authorize("messaging", "send"))
				r.Use(scopeMW.Inject("attendance", "report"))
				r.Post("/report", deps.MessagingHandler.SendReport)
			})
		})
	})

	return r
}
