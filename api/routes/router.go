package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/quotecatalog/api/controllers"
	"github.com/angelmondragon/quotecatalog/api/middleware"
	"github.com/angelmondragon/quotecatalog/pkg/config"
	"github.com/angelmondragon/quotecatalog/pkg/logger"
)

// QuotingService is everything the HTTP surface needs from the quoting service.
type QuotingService interface {
	controllers.CatalogService
	controllers.SessionService
	controllers.QuotationService
}

// NewRouter mounts the health, metrics and /api/v1 routes. A nil rateStore
// disables rate limiting; a nil gatherer hides /metrics.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	svc QuotingService,
	checks map[string]controllers.ReadinessCheck,
	rateStore middleware.RateLimiterStore,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.CORS(cfg.HTTP.CORSOrigins))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks))
	})

	if cfg.Metrics.Enabled && gatherer != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	quotePolicy := middleware.NewRateLimitPolicy("quotations", cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitPerIP, 0)
	documentPolicy := middleware.NewRateLimitPolicy("documents", cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitPerIP, 0)
	reloadPolicy := middleware.NewRateLimitPolicy("reload", cfg.HTTP.RateLimitWindow, 1, 0)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", controllers.CatalogInfo(svc, logg))
			r.Get("/categories", controllers.CatalogCategories(svc, logg))
			r.Get("/search", controllers.CatalogSearch(svc, cfg.Search.MaxLimit, logg))
			r.With(middleware.RateLimit(reloadPolicy, rateStore, logg)).Post("/reload", controllers.CatalogReload(svc, logg))
		})

		r.Post("/sessions", controllers.SessionCreate(svc, logg))
		r.Route("/sessions/{"+middleware.SessionParam+"}", func(r chi.Router) {
			r.Use(middleware.SessionContext(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(svc, logg))
				r.Post("/", controllers.CartAdd(svc, logg))
				r.Delete("/", controllers.CartClear(svc, logg))
				r.Delete("/{index}", controllers.CartRemove(svc, logg))
			})

			r.Route("/quotations", func(r chi.Router) {
				r.With(middleware.RateLimit(quotePolicy, rateStore, logg)).Post("/", controllers.QuotationCreate(svc, logg))
				r.Get("/latest", controllers.QuotationLatest(svc, logg))
				r.With(middleware.RateLimit(documentPolicy, rateStore, logg)).Post("/latest/document", controllers.QuotationDocument(svc, logg))
			})
		})
	})

	return r
}
