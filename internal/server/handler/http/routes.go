package http

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/stoneworks/internal/metrics"
	"github.com/atinyakov/stoneworks/internal/middleware"
	"github.com/atinyakov/stoneworks/internal/models"
	"github.com/atinyakov/stoneworks/internal/repository"
)

// RouterConfig carries the collaborators of the router. Storage, Auth,
// Uploads, Sessions and Logger are required.
type RouterConfig struct {
	Storage  repository.Storage
	Auth     AuthService
	Uploads  Uploader
	Sessions *scs.SessionManager
	Logger   *zap.Logger

	// Metrics enables request metrics and GET /metrics when set.
	Metrics *metrics.Metrics
	// LoginLimiter throttles POST /api/login; a default limiter is used when nil.
	LoginLimiter *middleware.RateLimiter
	// HealthChecks are pinged by /healthz in addition to Storage.
	HealthChecks map[string]Pinger
	// TrustedOrigins may send cross-origin mutations.
	TrustedOrigins []string
	// CSP overrides middleware.DefaultCSP when set.
	CSP string
}

// NewRouter constructs the HTTP handler serving the site API.
//
// Routes:
//
//	POST   /api/login                     → AuthHandler.Login (rate limited)
//	POST   /api/logout                    → AuthHandler.Logout
//	GET    /api/user                      → AuthHandler.CurrentUser
//	PATCH  /api/user/profile              → AuthHandler.UpdateProfile (manager)
//	GET    /api/{collection}              → public listing
//	POST   /api/{collection}              → create (manager)
//	PATCH  /api/{collection}/{id}         → partial update (manager)
//	DELETE /api/{collection}/{id}         → delete (manager)
//	GET    /api/content/{key}             → ContentHandler.Get
//	POST   /api/content/{key}             → ContentHandler.Put (manager)
//	POST   /api/enquiries                 → public enquiry form
//	GET    /api/admin/enquiries           → enquiry inbox (manager)
//	PATCH  /api/admin/enquiries/{id}/status
//	DELETE /api/admin/enquiries/{id}
//	POST   /api/upload                    → UploadHandler.Upload
//	GET    /healthz, /metrics, /admin
//
// where collection is granites, tiles, slider-images or map-locations.
func NewRouter(cfg RouterConfig) http.Handler {
	store := cfg.Storage
	log := cfg.Logger

	limiter := cfg.LoginLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(0, 0)
	}
	csp := cfg.CSP
	if csp == "" {
		csp = middleware.DefaultCSP
	}
	checks := map[string]Pinger{"storage": store}
	for name, p := range cfg.HealthChecks {
		checks[name] = p
	}

	authHandler := &AuthHandler{AuthService: cfg.Auth, Sessions: cfg.Sessions, Log: log}
	if cfg.Metrics != nil {
		authHandler.Metrics = cfg.Metrics
	}
	contentHandler := &ContentHandler{Store: store, Log: log}
	uploadHandler := &UploadHandler{Uploads: cfg.Uploads, Log: log}
	healthHandler := &HealthHandler{Checks: checks, Log: log}

	granites := &Resource[models.Granite, models.CatalogInput, models.CatalogUpdate]{
		List: store.ListGranites, Create: store.CreateGranite,
		Update: store.UpdateGranite, Delete: store.DeleteGranite, Log: log,
	}
	tiles := &Resource[models.Tile, models.CatalogInput, models.CatalogUpdate]{
		List: store.ListTiles, Create: store.CreateTile,
		Update: store.UpdateTile, Delete: store.DeleteTile, Log: log,
	}
	sliderImages := &Resource[models.SliderImage, models.SliderImageInput, models.SliderImageUpdate]{
		List: store.ListSliderImages, Create: store.CreateSliderImage,
		Update: store.UpdateSliderImage, Delete: store.DeleteSliderImage, Log: log,
	}
	mapLocations := &Resource[models.MapLocation, models.MapLocationInput, models.MapLocationUpdate]{
		List: store.ListMapLocations, Create: store.CreateMapLocation,
		Update: store.UpdateMapLocation, Delete: store.DeleteMapLocation, Log: log,
	}
	enquiries := &Resource[models.Enquiry, models.EnquiryInput, models.EnquiryStatusUpdate]{
		List:   store.ListEnquiries,
		Create: store.CreateEnquiry,
		Update: func(ctx context.Context, id string, upd models.EnquiryStatusUpdate) (*models.Enquiry, error) {
			return store.UpdateEnquiryStatus(ctx, id, upd.Status)
		},
		Delete: store.DeleteEnquiry,
		Log:    log,
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(log))
	r.Use(middleware.SecurityHeaders(csp))
	// Reject cross-site mutations before any session or storage work
	r.Use(middleware.CrossOrigin(cfg.TrustedOrigins, log))
	r.Use(cfg.Sessions.LoadAndSave)
	r.Use(middleware.LoadUser(cfg.Sessions, store, log))

	r.Get("/healthz", healthHandler.Check)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}
	r.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/auth", http.StatusFound)
	})

	// Only allow requests with Content-Type: application/json
	jsonOnly := chiMiddleware.AllowContentType("application/json")

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.With(limiter.Middleware, jsonOnly).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/user", authHandler.CurrentUser)

		r.Get("/granites", granites.HandleList)
		r.Get("/tiles", tiles.HandleList)
		r.Get("/slider-images", sliderImages.HandleList)
		r.Get("/map-locations", mapLocations.HandleList)
		r.Get("/content/{key}", contentHandler.Get)
		r.With(jsonOnly).Post("/enquiries", enquiries.HandleCreate)
		r.With(jsonOnly).Post("/upload", uploadHandler.Upload)

		// Protected group: requires an admin or developer session. The role
		// check runs before the content type check.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireManager())
			r.Use(jsonOnly)

			mountMutations(r, "/granites", granites)
			mountMutations(r, "/tiles", tiles)
			mountMutations(r, "/slider-images", sliderImages)
			mountMutations(r, "/map-locations", mapLocations)
			r.Post("/content/{key}", contentHandler.Put)
			r.Patch("/user/profile", authHandler.UpdateProfile)

			r.Get("/admin/enquiries", enquiries.HandleList)
			r.Patch("/admin/enquiries/{id}/status", enquiries.HandleUpdate)
			r.Delete("/admin/enquiries/{id}", enquiries.HandleDelete)
		})
	})

	return r
}
