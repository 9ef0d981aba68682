package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDailyCode fetches the current daily code from upstream, mirrors it and
// returns the upstream payload.
func (h *Handler) GetDailyCode(c *gin.Context) {
	code, err := h.reconciler.SyncDailyCode(c.Request.Context())
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, code)
}

// RegenDailyCode asks the upstream for a fresh code, re-reads the resulting
// record, persists it and answers with the regen payload.
func (h *Handler) RegenDailyCode(c *gin.Context) {
	code, err := h.proxy.RegenDailyCode(c.Request.Context())
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, code)
}

// ClearDailyCode drops the override code upstream and mirrors the result.
func (h *Handler) ClearDailyCode(c *gin.Context) {
	code, err := h.proxy.ClearDailyCode(c.Request.Context())
	if err != nil {
		abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, code)
}

// GetDailyCodeLocal reads the mirrored code for one date without touching
// the upstream.
func (h *Handler) GetDailyCodeLocal(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.String(http.StatusBadRequest, "date required")
		return
	}
	code, err := h.store.GetDailyCode(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{})
		return
	}
	if code == nil {
		c.JSON(http.StatusNotFound, gin.H{})
		return
	}
	c.JSON(http.StatusOK, code)
}
