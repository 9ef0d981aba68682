package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/parse"
)

const qrHistoryLimit = 50

// GetClears returns the ids of all explicitly cleared orders.
func (h *Handler) GetClears(c *gin.Context) {
	clears, err := h.store.ListClears(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"cleared": []string{}})
		return
	}
	ids := make([]string, 0, len(clears))
	for _, rec := range clears {
		ids = append(ids, rec.OrderID)
	}
	c.JSON(http.StatusOK, gin.H{"cleared": ids})
}

type clearRequest struct {
	OrderID string `json:"orderId"`
}

// PostClear marks one order as cleared.
func (h *Handler) PostClear(c *gin.Context) {
	var req clearRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" {
		c.String(http.StatusBadRequest, "orderId required")
		return
	}
	if err := h.store.SetClear(c.Request.Context(), req.OrderID, true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// PostUnclear removes an order's clear mark.
func (h *Handler) PostUnclear(c *gin.Context) {
	var req clearRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" {
		c.String(http.StatusBadRequest, "orderId required")
		return
	}
	if err := h.store.SetClear(c.Request.Context(), req.OrderID, false); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetTables lists tables, numeric table numbers first in numeric order.
func (h *Handler) GetTables(c *gin.Context) {
	tables, err := h.store.ListTables(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, []gin.H{})
		return
	}
	c.JSON(http.StatusOK, tables)
}

type addTableRequest struct {
	TableNo string `json:"tableNo"`
}

// AddTable registers one table; re-adding is a no-op.
func (h *Handler) AddTable(c *gin.Context) {
	var req addTableRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TableNo == "" {
		c.String(http.StatusBadRequest, "tableNo required")
		return
	}
	if err := h.store.AddTable(c.Request.Context(), req.TableNo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type toggleTableRequest struct {
	TableNo string `json:"tableNo"`
	Active  bool   `json:"active"`
}

// ToggleTable flips a table's active flag.
func (h *Handler) ToggleTable(c *gin.Context) {
	var req toggleTableRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TableNo == "" {
		c.String(http.StatusBadRequest, "tableNo required")
		return
	}
	if err := h.store.ToggleTable(c.Request.Context(), req.TableNo, req.Active); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetQRHistory returns the most recent QR code URLs, newest first.
func (h *Handler) GetQRHistory(c *gin.Context) {
	entries, err := h.store.LatestQRHistory(c.Request.Context(), qrHistoryLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, []gin.H{})
		return
	}
	c.JSON(http.StatusOK, entries)
}

type qrHistoryRequest struct {
	URL string `json:"url"`
}

// PostQRHistory records a generated QR URL, deriving the table number from
// the URL's table query parameter when present.
func (h *Handler) PostQRHistory(c *gin.Context) {
	var req qrHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.String(http.StatusBadRequest, "url required")
		return
	}
	var tableNo *string
	if t, ok := parse.TableNo(req.URL); ok {
		tableNo = &t
	}
	if err := h.store.AppendQRHistory(c.Request.Context(), req.URL, tableNo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
