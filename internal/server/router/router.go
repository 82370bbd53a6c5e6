package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopkeeper/internal/server/handlers"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth  *handlers.AuthHandler
	Stock *handlers.StockHandler
	Sales *handlers.SalesHandler
	Dues  *handlers.DuesHandler
	Stats *handlers.StatsHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/api/auth/signup", h.Auth.SignUp)
	r.POST("/api/auth/signin", h.Auth.SignIn)

	api := r.Group("/api")
	api.Use(h.Auth.Middleware())

	api.POST("/stock", h.Stock.Create)
	api.GET("/stock", h.Stock.List)
	api.PATCH("/stock/:id/quantity", h.Stock.AdjustQuantity)
	api.DELETE("/stock/:id", h.Stock.Retire)
	api.POST("/stock/sweep", h.Stock.Sweep)

	api.POST("/sales", h.Sales.Create)
	api.POST("/sales/reconcile", h.Sales.Reconcile)
	api.GET("/transactions", h.Sales.ListTransactions)

	api.POST("/dues", h.Dues.Create)
	api.GET("/dues", h.Dues.List)
	api.GET("/dues/grouped", h.Dues.Grouped)
	api.POST("/dues/settle", h.Dues.Settle)
	api.POST("/dues/:id/payments", h.Dues.Pay)
	api.POST("/dues/:id/paid", h.Dues.MarkPaid)
	api.DELETE("/dues/:id", h.Dues.Delete)

	api.GET("/stats", h.Stats.Summary)
	api.POST("/stats/snapshot", h.Stats.Snapshot)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
