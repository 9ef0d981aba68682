package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/makersnr-dev/qr-order-nr-admin-v2/config"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/mw"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/proxy"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/reconcile"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/store"
)

// NewRouter creates and configures the admin Gin router.
func NewRouter(cfg *config.Config, s store.Store, r *reconcile.Reconciler, p *proxy.Proxy) *gin.Engine {
	engine := gin.Default()

	handler := NewHandler(s, r, p, cfg.Upstream.APIBase, cfg.Upstream.OrderBase)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// The front-end reads this once at startup; safe to cache.
	engine.GET("/admin-config", caching, handler.GetAdminConfig)

	adb := engine.Group("/adb")
	adb.Use(rateLimiter)
	{
		adb.GET("/clears", handler.GetClears)
		adb.POST("/clear", handler.PostClear)
		adb.POST("/unclear", handler.PostUnclear)

		adb.GET("/tables", handler.GetTables)
		adb.POST("/tables/add", handler.AddTable)
		adb.POST("/tables/toggle", handler.ToggleTable)

		adb.GET("/qr-history", handler.GetQRHistory)
		adb.POST("/qr-history", handler.PostQRHistory)

		adb.POST("/sync/orders", handler.SyncOrders)
		adb.GET("/orders", handler.GetOrders)
		adb.POST("/order-status", handler.PostOrderStatus)
		adb.POST("/order-clear", handler.PostOrderClear)
		adb.POST("/refund", handler.PostRefund)

		adb.GET("/menu", handler.GetMenu)
		adb.POST("/menu", handler.PostMenu)
		adb.PATCH("/menu/:id", handler.PatchMenu)

		adb.GET("/daily-code", handler.GetDailyCode)
		adb.GET("/daily-code/local", handler.GetDailyCodeLocal)
		adb.POST("/daily-code/regen", handler.RegenDailyCode)
		adb.POST("/daily-code/clear", handler.ClearDailyCode)
	}

	return engine
}
