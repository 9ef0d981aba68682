package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/store"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/upstream"
)

// SyncOrders pulls the full upstream order snapshot into the mirror.
// Partial failures still report how many rows made it.
func (h *Handler) SyncOrders(c *gin.Context) {
	count, err := h.reconciler.SyncOrders(c.Request.Context())
	if err != nil {
		if upstream.IsUnavailable(err) {
			abortUpstream(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "count": count})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": count})
}

// GetOrders lists mirrored orders, newest first. Cleared orders are hidden
// unless includeCleared=1.
func (h *Handler) GetOrders(c *gin.Context) {
	filter := store.OrderFilter{
		TableNo:        strings.TrimSpace(c.Query("table")),
		IncludeCleared: c.Query("includeCleared") == "1",
	}
	orders, err := h.store.ListOrders(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, []gin.H{})
		return
	}
	c.JSON(http.StatusOK, orders)
}

type orderStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// PostOrderStatus changes an order's status through the write-through proxy.
func (h *Handler) PostOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.String(http.StatusBadRequest, "id required")
		return
	}
	if err := h.proxy.UpdateOrderStatus(c.Request.Context(), req.ID, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type orderClearRequest struct {
	ID      string `json:"id"`
	Cleared *bool  `json:"cleared"`
}

// PostOrderClear flips the cleared flag on the mirrored order row and keeps
// the clear ledger in step. Purely local; the upstream is not involved.
func (h *Handler) PostOrderClear(c *gin.Context) {
	var req orderClearRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.String(http.StatusBadRequest, "id required")
		return
	}
	cleared := true
	if req.Cleared != nil {
		cleared = *req.Cleared
	}
	ctx := c.Request.Context()
	if err := h.store.SetOrderCleared(ctx, req.ID, cleared); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	if err := h.store.SetClear(ctx, req.ID, cleared); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type refundRequest struct {
	ID string `json:"id"`
}

// PostRefund forwards a refund upstream; the mirror is only marked refunded
// when the upstream accepted it.
func (h *Handler) PostRefund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.String(http.StatusBadRequest, "id required")
		return
	}
	if err := h.proxy.Refund(c.Request.Context(), req.ID); err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
