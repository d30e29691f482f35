package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/catalogo-backend/api/controllers"
	"github.com/angelmondragon/catalogo-backend/api/middleware"
	products "github.com/angelmondragon/catalogo-backend/internal/products"
	"github.com/angelmondragon/catalogo-backend/pkg/config"
	"github.com/angelmondragon/catalogo-backend/pkg/db"
	"github.com/angelmondragon/catalogo-backend/pkg/logger"
	"github.com/angelmondragon/catalogo-backend/pkg/metrics"
	"github.com/angelmondragon/catalogo-backend/pkg/storage/disk"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	store *disk.Store,
	productService products.Service,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if gatherer != nil {
		r.Get("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}).ServeHTTP)
	}

	if store != nil {
		r.Get(cfg.Uploads.BasePath+"/*", uploadsHandler(cfg.Uploads.BasePath, store.Dir()))
	}

	maxUpload := cfg.Uploads.MaxUploadBytes()
	r.Route("/api", func(r chi.Router) {
		r.Route("/productos", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Post("/", controllers.CreateProduct(productService, logg, maxUpload))
			r.Get("/{id}", controllers.GetProduct(productService, logg))
			r.Put("/{id}", controllers.UpdateProduct(productService, logg, maxUpload))
			r.Delete("/{id}", controllers.DeleteProduct(productService, logg))
		})
	})

	return r
}

// uploadsHandler serves stored images. Directory listings are refused so the
// uploads directory cannot be enumerated.
func uploadsHandler(basePath, dir string) http.HandlerFunc {
	fileServer := http.StripPrefix(basePath, http.FileServer(http.Dir(dir)))
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	}
}
