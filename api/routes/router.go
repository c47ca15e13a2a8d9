package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bolajoy/bolajoy-backend/api/controllers"
	"github.com/bolajoy/bolajoy-backend/api/middleware"
	"github.com/bolajoy/bolajoy-backend/internal/debts"
	"github.com/bolajoy/bolajoy-backend/internal/enrollments"
	"github.com/bolajoy/bolajoy-backend/pkg/config"
	"github.com/bolajoy/bolajoy-backend/pkg/logger"
	"github.com/bolajoy/bolajoy-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *redis.Client
	Enrollments enrollments.Service
	Debts       debts.Service
	Metrics     http.Handler
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(),
	)

	statusPolicy := middleware.NewStatusRateLimitPolicy(deps.Config.StatusRateLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DB, deps.Redis))
	})

	r.Get("/ping", controllers.PublicPing())

	metricsHandler := deps.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	r.Route("/enrollments", func(r chi.Router) {
		r.Post("/", controllers.EnrollmentSubmit(deps.Enrollments, deps.Logger))
		r.With(middleware.StatusRateLimit(statusPolicy, deps.Redis, deps.Logger)).
			Get("/status/{phone}", controllers.EnrollmentStatusByPhone(deps.Enrollments, deps.Logger))

		r.Get("/", controllers.EnrollmentList(deps.Enrollments, deps.Logger))
		r.Get("/{id}", controllers.EnrollmentGet(deps.Enrollments, deps.Logger))
		r.Put("/{id}", controllers.EnrollmentTransition(deps.Enrollments, deps.Logger))
		r.Patch("/{id}", controllers.EnrollmentUpdate(deps.Enrollments, deps.Logger))
		r.Delete("/{id}", controllers.EnrollmentDelete(deps.Enrollments, deps.Logger))
	})

	r.Route("/debts", func(r chi.Router) {
		r.Get("/", controllers.DebtList(deps.Debts, deps.Logger))
		r.Get("/stats", controllers.DebtStats(deps.Debts, deps.Logger))
		r.Post("/generate", controllers.DebtGenerate(deps.Debts, deps.Logger))
		r.Post("/regenerate", controllers.DebtRegenerate(deps.Debts, deps.Logger))
		r.Post("/{id}/pay", controllers.DebtPay(deps.Debts, deps.Logger))
		r.Post("/{id}/remind", controllers.DebtRemind(deps.Debts, deps.Logger))
		r.Post("/remind-all", controllers.DebtRemindAll(deps.Debts, deps.Logger))
	})

	return r
}
