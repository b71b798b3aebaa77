package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"beautybook/internal/handler/api"
	"beautybook/internal/handler/middleware"
	"beautybook/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Reservation  *api.ReservationHandler
	Availability *api.AvailabilityHandler
	Payment      *api.PaymentHandler
	Point        *api.PointHandler
	Referral     *api.ReferralHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, handlers Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, handlers, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Gateway callbacks authenticate with an HMAC signature, not a bearer token.
	engine.POST("/webhooks/payment", h.Payment.HandleWebhook)

	apiGroup := engine.Group("/api")
	{
		shops := apiGroup.Group("/shops")
		{
			addRoutes(shops, []route{
				{Method: http.MethodGet, Path: "/:shop_id/availability", Handler: h.Availability.GetAvailableSlots},
			})
		}

		reservations := apiGroup.Group("/reservations")
		reservations.Use(authMiddleware.RequireAuth())
		{
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Reservation.CreateReservation},
				{Method: http.MethodGet, Path: "", Handler: h.Reservation.ListMyReservations},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Reservation.GetReservation},
				{Method: http.MethodPost, Path: "/:id/confirm", Handler: h.Reservation.ConfirmReservation},
				{Method: http.MethodPost, Path: "/:id/complete", Handler: h.Reservation.CompleteReservation},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Reservation.CancelReservation},
				{Method: http.MethodPost, Path: "/:id/no-show", Handler: h.Reservation.MarkNoShow},
				{Method: http.MethodPost, Path: "/:id/deposit", Handler: h.Payment.PrepareDeposit},
			})
		}

		points := apiGroup.Group("/points")
		points.Use(authMiddleware.RequireAuth())
		{
			addRoutes(points, []route{
				{Method: http.MethodGet, Path: "/balance", Handler: h.Point.GetBalance},
				{Method: http.MethodGet, Path: "/history", Handler: h.Point.GetHistory},
				{Method: http.MethodPost, Path: "/use", Handler: h.Point.UsePoints},
			})
		}

		referrals := apiGroup.Group("/referrals")
		referrals.Use(authMiddleware.RequireAuth())
		{
			addRoutes(referrals, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Referral.RegisterReferral},
				{Method: http.MethodGet, Path: "/status", Handler: h.Referral.GetReferralStatus},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
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
