package handler

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LapakSync/lapaksync_api/internal/middleware"
	"github.com/LapakSync/lapaksync_api/internal/service"
	"github.com/LapakSync/lapaksync_api/internal/utils"
)

// PushHandler exposes a merchant's push history and cached receipts.
type PushHandler struct {
	catalogSvc *service.CatalogService
}

// NewPushHandler constructs a PushHandler.
func NewPushHandler(catalogSvc *service.CatalogService) *PushHandler {
	return &PushHandler{catalogSvc: catalogSvc}
}

// ListPushes handles GET /v1/pushes
func (h *PushHandler) ListPushes(c *gin.Context) {
	page := 1
	limit := 50
	if v := c.Query("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			page = p
		}
	}
	if v := c.Query("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}

	client := middleware.GetClient(c)
	pushes, total, err := h.catalogSvc.ListPushes(client, page, limit)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve pushes")
		return
	}

	utils.SuccessWithPagination(c, 200, "Pushes retrieved", gin.H{
		"pushes": pushes,
	}, page, limit, total)
}

// GetPush handles GET /v1/pushes/:id
func (h *PushHandler) GetPush(c *gin.Context) {
	client := middleware.GetClient(c)

	push, err := h.catalogSvc.GetPush(client, c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.Error(c, 404, "PUSH_NOT_FOUND", "Push not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve push")
		return
	}

	utils.Success(c, 200, "Push retrieved", push)
}

// GetReceipt handles GET /v1/pushes/:id/receipt
func (h *PushHandler) GetReceipt(c *gin.Context) {
	client := middleware.GetClient(c)

	receipt, err := h.catalogSvc.GetReceipt(c.Request.Context(), client, c.Param("id"))
	if err != nil {
		utils.Error(c, 404, "RECEIPT_NOT_FOUND", "No cached receipt for this push")
		return
	}

	utils.Success(c, 200, "Receipt retrieved", receipt)
}
