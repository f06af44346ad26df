package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"pasarlink/internal/domain/actor"
	"pasarlink/internal/handler/api"
	"pasarlink/internal/handler/middleware"
	"pasarlink/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	orderHandler *api.OrderHandler,
	cartHandler *api.CartHandler,
	dispatchHandler *api.DispatchHandler,
	pointsHandler *api.PointsHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, cfg, orderHandler, cartHandler, dispatchHandler, pointsHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	cfg config.Config,
	orderHandler *api.OrderHandler,
	cartHandler *api.CartHandler,
	dispatchHandler *api.DispatchHandler,
	pointsHandler *api.PointsHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		carts := apiGroup.Group("/carts")
		carts.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(actor.RoleBuyer))
		{
			addRoutes(carts, []route{
				{Method: http.MethodPost, Path: "/:seller_id/items", Handler: cartHandler.AddItem},
				{Method: http.MethodGet, Path: "/:seller_id", Handler: cartHandler.GetCart},
				{Method: http.MethodDelete, Path: "/:seller_id", Handler: cartHandler.ClearCart},
			})
		}

		orders := apiGroup.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			addRoutes(orders, []route{
				{Method: http.MethodPost, Path: "", Handler: orderHandler.PlaceOrder,
					Mw: []gin.HandlerFunc{authMiddleware.RequireRole(actor.RoleBuyer)}},
				{Method: http.MethodGet, Path: "", Handler: orderHandler.ListOrders},
				{Method: http.MethodGet, Path: "/:id", Handler: orderHandler.GetOrder},
				{Method: http.MethodGet, Path: "/:id/status", Handler: orderHandler.GetOrderStatus},
				{Method: http.MethodPost, Path: "/:id/status", Handler: orderHandler.UpdateOrderStatus},
			})
		}

		offers := apiGroup.Group("/offers")
		offers.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(actor.RoleCourier))
		{
			addRoutes(offers, []route{
				{Method: http.MethodPost, Path: "/:id/respond", Handler: dispatchHandler.RespondToOffer},
			})
		}

		couriers := apiGroup.Group("/couriers")
		couriers.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(actor.RoleCourier))
		{
			addRoutes(couriers, []route{
				{Method: http.MethodGet, Path: "/me/offer", Handler: dispatchHandler.CurrentOffer},
				{Method: http.MethodPost, Path: "/me/heartbeat", Handler: dispatchHandler.Heartbeat},
			})
		}

		points := apiGroup.Group("/points")
		points.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(actor.RoleBuyer))
		{
			addRoutes(points, []route{
				{Method: http.MethodGet, Path: "/:seller_id", Handler: pointsHandler.GetBalance},
			})
		}

		// The reaper drives this on a timer; the route exists for operators
		// holding the shared internal token.
		internal := apiGroup.Group("/internal")
		internal.Use(middleware.RequireInternalToken(cfg.Server.InternalToken))
		{
			addRoutes(internal, []route{
				{Method: http.MethodPost, Path: "/dispatch/sweep", Handler: dispatchHandler.Sweep},
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
