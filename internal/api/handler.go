package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/proxy"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/reconcile"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/store"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/upstream"
)

// Handler holds shared dependencies for the admin API handlers.
type Handler struct {
	store      store.Store
	reconciler *reconcile.Reconciler
	proxy      *proxy.Proxy
	apiBase    string
	orderBase  string
}

// NewHandler creates a new admin API handler.
func NewHandler(s store.Store, r *reconcile.Reconciler, p *proxy.Proxy, apiBase, orderBase string) *Handler {
	return &Handler{
		store:      s,
		reconciler: r,
		proxy:      p,
		apiBase:    apiBase,
		orderBase:  orderBase,
	}
}

// GetAdminConfig tells the front-end which upstream bases to use.
func (h *Handler) GetAdminConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"apiBase": h.apiBase, "orderBase": h.orderBase})
}

// abortUpstream answers 502 for unavailable upstreams, carrying the upstream
// body verbatim when there is one, and 500 for everything else.
func abortUpstream(c *gin.Context, err error) {
	var se *upstream.StatusError
	if errors.As(err, &se) {
		body := se.Body
		if body == "" {
			body = "api fail"
		}
		c.String(http.StatusBadGateway, body)
		return
	}
	if upstream.IsUnavailable(err) {
		c.String(http.StatusBadGateway, "api fail")
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
}
