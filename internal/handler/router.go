package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"coupon-marketplace/internal/handler/api"
	"coupon-marketplace/internal/handler/middleware"
	"coupon-marketplace/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	fx.In

	Offer       *api.OfferHandler
	Reservation *api.ReservationHandler
	Admin       *api.AdminHandler
	Health      *api.HealthHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, h, middleware.NewRateLimiter(cfg.RateLimit))
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, limiter *middleware.RateLimiter) {
	addRoutes(&engine.RouterGroup, []route{
		{Method: http.MethodGet, Path: "/health", Handler: h.Health.Live},
		{Method: http.MethodGet, Path: "/health/db", Handler: h.Health.DB},
		{Method: http.MethodGet, Path: "/health/workers", Handler: h.Health.Workers},
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/offers/:id", Handler: h.Offer.Get},
		})

		actor := apiGroup.Group("")
		actor.Use(middleware.RequireActor())
		limited := []gin.HandlerFunc{limiter.Middleware()}

		addRoutes(actor, []route{
			{Method: http.MethodPost, Path: "/offers", Handler: h.Offer.Create},
			{Method: http.MethodPut, Path: "/offers/:id", Handler: h.Offer.Update},
			{Method: http.MethodDelete, Path: "/offers/:id", Handler: h.Offer.Delete},
			{Method: http.MethodPost, Path: "/offers/:id/reserve", Handler: h.Reservation.Reserve, Mw: limited},
			{Method: http.MethodPost, Path: "/offers/:id/purchase", Handler: h.Reservation.Purchase, Mw: limited},

			{Method: http.MethodGet, Path: "/coupons", Handler: h.Reservation.ListMine},
			{Method: http.MethodGet, Path: "/coupons/:id", Handler: h.Reservation.GetMine},
			{Method: http.MethodDelete, Path: "/coupons/:id/reservation", Handler: h.Reservation.Cancel},
			{Method: http.MethodPost, Path: "/coupons/:id/use", Handler: h.Reservation.Use},
		})

		admin := actor.Group("/admin")
		{
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/offers/:id/approve", Handler: h.Admin.Approve},
				{Method: http.MethodPost, Path: "/offers/:id/reject", Handler: h.Admin.Reject},
				{Method: http.MethodPost, Path: "/offers/:id/activate", Handler: h.Admin.Activate},
				{Method: http.MethodPost, Path: "/offers/:id/suspend", Handler: h.Admin.Suspend},
				{Method: http.MethodPost, Path: "/offers/:id/resume", Handler: h.Admin.Resume},
				{Method: http.MethodGet, Path: "/settings/:key", Handler: h.Admin.GetSetting},
				{Method: http.MethodPut, Path: "/settings/:key", Handler: h.Admin.PutSetting},
			})
		}
	}
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
