package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/upstream"
)

// GetMenu syncs the menu mirror from the upstream and returns the local
// table, so rows the snapshot no longer carries stay visible.
func (h *Handler) GetMenu(c *gin.Context) {
	menus, err := h.reconciler.SyncMenu(c.Request.Context())
	if err != nil {
		if upstream.IsUnavailable(err) {
			abortUpstream(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, []gin.H{})
		return
	}
	c.JSON(http.StatusOK, menus)
}

// PostMenu forwards a new menu item and mirrors it locally.
func (h *Handler) PostMenu(c *gin.Context) {
	var req upstream.MenuPatch
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == nil {
		c.String(http.StatusBadRequest, "id required")
		return
	}
	if err := h.proxy.CreateMenu(c.Request.Context(), req); err != nil {
		if upstream.IsUnavailable(err) {
			abortUpstream(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// PatchMenu forwards a partial menu update; fields absent from the body are
// left unchanged locally.
func (h *Handler) PatchMenu(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid menu id")
		return
	}
	var req upstream.MenuPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.proxy.UpdateMenu(c.Request.Context(), id, req); err != nil {
		if upstream.IsUnavailable(err) {
			abortUpstream(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
