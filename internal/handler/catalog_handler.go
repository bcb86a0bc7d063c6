package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/LapakSync/lapaksync_api/internal/middleware"
	"github.com/LapakSync/lapaksync_api/internal/service"
	"github.com/LapakSync/lapaksync_api/internal/utils"
	"github.com/LapakSync/lapaksync_api/pkg/meta"
)

// CatalogHandler exposes the Graph API catalog surface to merchants. Every
// route expects the merchant's own vendor token in X-Meta-Token; the gateway
// forwards it per call and never stores it.
type CatalogHandler struct {
	catalogSvc *service.CatalogService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalogSvc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// metaToken extracts the vendor access token header, writing the error
// response when it is missing.
func metaToken(c *gin.Context) (string, bool) {
	token := c.GetHeader("X-Meta-Token")
	if token == "" {
		utils.Error(c, 400, "MISSING_META_TOKEN", "X-Meta-Token header is required")
		return "", false
	}
	return token, true
}

// writeVendorError maps a pkg/meta failure to the response envelope. Vendor
// rejections surface as 502 with the vendor's message; anything else is a
// plain upstream failure.
func writeVendorError(c *gin.Context, err error) {
	var apiErr *meta.APIError
	if errors.As(err, &apiErr) {
		utils.Error(c, 502, "GRAPH_API_ERROR", apiErr.Message)
		return
	}
	utils.Error(c, 502, "UPSTREAM_ERROR", "Graph API request failed")
}

// ListBusinesses handles GET /v1/meta/users/:userId/businesses
func (h *CatalogHandler) ListBusinesses(c *gin.Context) {
	token, ok := metaToken(c)
	if !ok {
		return
	}

	businesses, err := h.catalogSvc.ListBusinesses(c.Request.Context(), token, meta.UserID(c.Param("userId")))
	if err != nil {
		writeVendorError(c, err)
		return
	}
	utils.Success(c, 200, "Businesses retrieved", gin.H{
		"businesses": businesses,
		"total":      len(businesses),
	})
}

// ListCatalogs handles GET /v1/meta/businesses/:businessId/catalogs
func (h *CatalogHandler) ListCatalogs(c *gin.Context) {
	token, ok := metaToken(c)
	if !ok {
		return
	}

	catalogs, err := h.catalogSvc.ListCatalogs(c.Request.Context(), token, meta.BusinessID(c.Param("businessId")))
	if err != nil {
		writeVendorError(c, err)
		return
	}
	utils.Success(c, 200, "Catalogs retrieved", gin.H{
		"catalogs": catalogs,
		"total":    len(catalogs),
	})
}

// ListProducts handles GET /v1/meta/catalogs/:catalogId/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	token, ok := metaToken(c)
	if !ok {
		return
	}

	products, err := h.catalogSvc.ListProducts(c.Request.Context(), token, meta.CatalogID(c.Param("catalogId")))
	if err != nil {
		writeVendorError(c, err)
		return
	}
	utils.Success(c, 200, "Products retrieved", gin.H{
		"products": products,
		"total":    len(products),
	})
}

// AddProducts handles POST /v1/meta/catalogs/:catalogId/products
func (h *CatalogHandler) AddProducts(c *gin.Context) {
	token, ok := metaToken(c)
	if !ok {
		return
	}

	var req struct {
		Products []meta.ProductInput `json:"products" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "products array is required")
		return
	}

	client := middleware.GetClient(c)
	push, err := h.catalogSvc.AddProducts(c.Request.Context(), client, middleware.IsSandbox(c),
		token, meta.CatalogID(c.Param("catalogId")), req.Products)
	if err != nil {
		writeVendorError(c, err)
		return
	}
	utils.Success(c, 202, "Product batch accepted", push)
}

// DeleteProducts handles DELETE /v1/meta/catalogs/:catalogId/products
func (h *CatalogHandler) DeleteProducts(c *gin.Context) {
	token, ok := metaToken(c)
	if !ok {
		return
	}

	var req struct {
		ProductIDs []meta.ProductID `json:"productIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "productIds array is required")
		return
	}

	client := middleware.GetClient(c)
	push, err := h.catalogSvc.DeleteProducts(c.Request.Context(), client, middleware.IsSandbox(c),
		token, meta.CatalogID(c.Param("catalogId")), req.ProductIDs)
	if err != nil {
		writeVendorError(c, err)
		return
	}
	utils.Success(c, 202, "Product delete batch accepted", push)
}

// ListProductSets handles GET /v1/meta/catalogs/:catalogId/product-sets
func (h *CatalogHandler) ListProductSets(c *gin.Context) {
	token, ok := metaToken(c)
	if !ok {
		return
	}

	sets, err := h.catalogSvc.ListProductSets(c.Request.Context(), token, meta.CatalogID(c.Param("catalogId")))
	if err != nil {
		writeVendorError(c, err)
		return
	}
	utils.Success(c, 200, "Product sets retrieved", gin.H{
		"productSets": sets,
		"total":       len(sets),
	})
}

// CreateProductSets handles POST /v1/meta/catalogs/:catalogId/product-sets
func (h *CatalogHandler) CreateProductSets(c *gin.Context) {
	token, ok := metaToken(c)
	if !ok {
		return
	}

	var req struct {
		Sets []meta.ProductSetInput `json:"sets" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "sets array is required")
		return
	}

	client := middleware.GetClient(c)
	push, err := h.catalogSvc.CreateProductSets(c.Request.Context(), client, middleware.IsSandbox(c),
		token, meta.CatalogID(c.Param("catalogId")), req.Sets)
	if err != nil {
		writeVendorError(c, err)
		return
	}
	utils.Success(c, 202, "Product set batch accepted", push)
}

// DeleteProductSets handles DELETE /v1/meta/catalogs/:catalogId/product-sets
func (h *CatalogHandler) DeleteProductSets(c *gin.Context) {
	token, ok := metaToken(c)
	if !ok {
		return
	}

	var req struct {
		SetIDs []meta.ProductSetID `json:"setIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "setIds array is required")
		return
	}

	client := middleware.GetClient(c)
	push, err := h.catalogSvc.DeleteProductSets(c.Request.Context(), client, middleware.IsSandbox(c),
		token, meta.CatalogID(c.Param("catalogId")), req.SetIDs)
	if err != nil {
		writeVendorError(c, err)
		return
	}
	utils.Success(c, 202, "Product set delete batch accepted", push)
}

// UpdateProductSet handles PUT /v1/meta/product-sets/:setId
func (h *CatalogHandler) UpdateProductSet(c *gin.Context) {
	token, ok := metaToken(c)
	if !ok {
		return
	}

	var req struct {
		ProductIDs []meta.ProductID `json:"productIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	client := middleware.GetClient(c)
	push, set, err := h.catalogSvc.UpdateProductSet(c.Request.Context(), client, middleware.IsSandbox(c),
		token, meta.ProductSetID(c.Param("setId")), meta.ProductSetUpdate{ProductIDs: req.ProductIDs})
	if err != nil {
		if errors.Is(err, meta.ErrMissingMembership) {
			utils.Error(c, 400, "MISSING_MEMBERSHIP", "productIds list is required")
			return
		}
		writeVendorError(c, err)
		return
	}
	utils.Success(c, 200, "Product set updated", gin.H{
		"push":       push,
		"productSet": set,
	})
}
