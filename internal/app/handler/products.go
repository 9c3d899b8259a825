package handler

import (
	"clientadmin/internal/app/ds"
	"clientadmin/internal/app/dto"

	"github.com/gin-gonic/gin"
)

func matchProduct(p ds.Product, query string) bool {
	return contains(query, p.MainAppName, p.MainAppCode, p.MainAppVersion, p.MainAppModelNo)
}

// GetProducts lists products
// @Summary List products
// @Description Active products, filtered by name, code, version or model number
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param query query string false "Case-insensitive search"
// @Param refresh query bool false "Reload from the backend first"
// @Success 200 {object} dto.List[ds.Product]
// @Router /api/products [get]
func (h *Handler) GetProducts(c *gin.Context) {
	listEntities(c, h.Store.Products, matchProduct)
}

// GetProduct returns one product
// @Summary Get product
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} ds.Product
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	getEntity(h, c, h.Store.Products)
}

// CreateProduct
// @Summary Create product
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProductRequest true "Product"
// @Success 201 {object} ds.Product
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if !h.bind(c, &req) {
		return
	}

	createEntity(h, c, h.Store.Products, ds.CreateProductRequest{
		MainAppName:    req.MainAppName,
		MainAppVersion: req.MainAppVersion,
		MainAppCode:    req.MainAppCode,
		MainAppModelNo: req.MainAppModelNo,
		MainAppDesc:    req.MainAppDesc,
		IsActive:       dto.Active(req.IsActive, true),
	})
}

// UpdateProduct
// @Summary Update product
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param request body dto.ProductRequest true "Product"
// @Success 200 {object} ds.Product
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/products/{id} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	current, ok := existing(h, c, h.Store.Products)
	if !ok {
		return
	}
	var req dto.ProductRequest
	if !h.bind(c, &req) {
		return
	}

	updateEntity(h, c, h.Store.Products, ds.UpdateProductRequest{
		MainAppID:      current.MainAppID,
		MainAppName:    req.MainAppName,
		MainAppVersion: req.MainAppVersion,
		MainAppCode:    req.MainAppCode,
		MainAppModelNo: req.MainAppModelNo,
		MainAppDesc:    req.MainAppDesc,
		IsActive:       dto.Active(req.IsActive, current.IsActive),
	})
}

// DeleteProduct
// @Summary Delete product
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/products/{id} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	deleteEntity(h, c, h.Store.Products)
}
