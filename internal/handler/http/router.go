package http

import (
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lumina-hr/payroll-engine-go/internal/handler/http/middleware"
	"github.com/lumina-hr/payroll-engine-go/internal/pkg/jwt"
)

func NewRouter(
	JWTService jwt.Service,
	payrollHandler PayrollHandler,
	compensationHandler CompensationHandler,
	disbursementHandler DisbursementHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("version", "v1.0.0"),
		slog.String("env", "development"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))
	r.Use(httprate.LimitByIP(100, time.Minute))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/compensation", func(r chi.Router) {
				r.Route("/components", func(r chi.Router) {
					r.Get("/", compensationHandler.ListComponents)
					r.Get("/{id}", compensationHandler.GetComponent)

					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireRole("admin"))
						r.Post("/", compensationHandler.CreateComponent)
						r.Post("/{id}/approve", compensationHandler.ApproveComponent)
						r.Post("/{id}/reject", compensationHandler.RejectComponent)
					})
				})
			})

			r.Route("/employees/{employeeId}", func(r chi.Router) {
				r.Route("/components", func(r chi.Router) {
					r.Get("/", compensationHandler.GetEmployeeComponents)
					r.With(middleware.RequireRole("admin", "payroll_specialist")).
						Post("/", compensationHandler.AssignComponent)
				})

				r.Route("/disbursements", func(r chi.Router) {
					r.Get("/", disbursementHandler.ListByEmployee)
					r.Get("/{componentId}", disbursementHandler.GetAssignment)
				})

				r.Route("/penalties", func(r chi.Router) {
					r.Get("/", payrollHandler.GetPenalties)
					r.With(middleware.RequireRole("admin", "payroll_specialist")).
						Post("/", payrollHandler.AddPenalty)
				})
			})

			r.With(middleware.RequireRole("admin")).
				Delete("/employee-components/{id}", compensationHandler.RemoveEmployeeComponent)

			r.With(middleware.RequireRole("admin", "payroll_specialist")).
				Post("/disbursements", disbursementHandler.Assign)

			r.Route("/payroll/runs", func(r chi.Router) {
				r.Get("/", payrollHandler.ListRuns)
				r.Get("/{runId}", payrollHandler.GetRun)
				r.Get("/{runId}/settlements", payrollHandler.ListSettlements)
				r.Get("/{runId}/settlements/{employeeId}", payrollHandler.GetSettlement)
				r.Get("/{runId}/payslips/{employeeId}", payrollHandler.GetPayslip)

				// Payroll specialists run the settlement lifecycle
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole("admin", "payroll_specialist"))
					r.Post("/", payrollHandler.OpenRun)
					r.Post("/{runId}/process", payrollHandler.ProcessRun)
					r.Post("/{runId}/reconcile", payrollHandler.ReconcileRun)
					r.Post("/{runId}/finalize", payrollHandler.FinalizeRun)
					r.Post("/{runId}/mark-paid", payrollHandler.MarkRunPaid)
					r.Post("/{runId}/settlements/{employeeId}", payrollHandler.ComputeSettlement)
				})
			})
		})
	})
	return r
}
