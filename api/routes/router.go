package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/electrohogar/storefront-backend/api/controllers"
	"github.com/electrohogar/storefront-backend/api/middleware"
	"github.com/electrohogar/storefront-backend/internal/admin"
	"github.com/electrohogar/storefront-backend/internal/catalog"
	"github.com/electrohogar/storefront-backend/internal/contact"
	"github.com/electrohogar/storefront-backend/internal/recommendations"
	"github.com/electrohogar/storefront-backend/internal/search"
	"github.com/electrohogar/storefront-backend/internal/views"
	"github.com/electrohogar/storefront-backend/internal/wishlist"
	"github.com/electrohogar/storefront-backend/pkg/config"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

// NewRouter wires the storefront's HTTP surface. The customer routes carry an
// anonymous session cookie; the wishlist and admin subtrees require a
// Supabase access token.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	promRegistry *prometheus.Registry,
	dbPinger controllers.Pinger,
	redisPinger controllers.Pinger,
	upstreamPinger controllers.Pinger,
	catalogSvc catalog.Service,
	searchSvc search.Service,
	viewsSvc views.Service,
	recommendationsSvc recommendations.Service,
	wishlistRegistry *wishlist.Registry,
	contactSvc contact.Service,
	adminSvc admin.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, redisPinger, upstreamPinger))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Views, cfg.App, logg))

		r.Route("/catalog/{family}", func(r chi.Router) {
			r.Get("/", controllers.CatalogListing(catalogSvc, logg))
			r.Get("/slug/{slug}", controllers.CatalogDetail(catalogSvc, viewsSvc, logg))
			r.Get("/filters", controllers.CatalogFilters(catalogSvc, logg))
		})

		r.Get("/search", controllers.SearchResults(searchSvc, logg))
		r.Get("/search/suggestions", controllers.SearchSuggestions(searchSvc, logg))

		r.Get("/recently-viewed", controllers.RecentlyViewed(viewsSvc, logg))

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/most-viewed", controllers.MostViewed(recommendationsSvc, logg))
			r.Get("/similar", controllers.SimilarProducts(recommendationsSvc, catalogSvc, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(middleware.SupabaseAuth(cfg.Supabase, logg))
			r.Get("/", controllers.WishlistList(wishlistRegistry, logg))
			r.Post("/toggle", controllers.WishlistToggle(wishlistRegistry, logg))
		})

		r.Post("/contact", controllers.ContactSubmit(contactSvc, logg))
		r.Post("/revalidate", controllers.Revalidate(adminSvc, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.SupabaseAuth(cfg.Supabase, logg))
		r.Post("/{family}", controllers.AdminCreateProduct(adminSvc, logg))
		r.Put("/{family}/{id}", controllers.AdminUpdateProduct(adminSvc, logg))
		r.Delete("/{family}/{id}", controllers.AdminDeleteProduct(adminSvc, logg))
	})

	return r
}
