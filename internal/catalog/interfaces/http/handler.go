package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/ecommerce/internal/catalog/application"
	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/response"
)

// CatalogHandler 商品目录 HTTP 处理器
type CatalogHandler struct {
	app *application.CatalogService // 商品目录应用服务
}

// NewCatalogHandler 创建 HTTP 处理器实例
func NewCatalogHandler(app *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{app: app}
}

// RegisterRoutes 注册路由
func (h *CatalogHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/catalog")
	{
		api.POST("/products", h.CreateProduct)
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.PUT("/products/:id", h.UpdateProduct)
		api.DELETE("/products/:id", h.DeleteProduct)

		api.POST("/categories", h.CreateCategory)
		api.GET("/categories", h.ListCategories)
		api.DELETE("/categories/:id", h.DeleteCategory)

		api.POST("/suppliers", h.CreateSupplier)
		api.GET("/suppliers", h.ListSuppliers)
		api.DELETE("/suppliers/:id", h.DeleteSupplier)
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func (h *CatalogHandler) handleDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrSupplierNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrCategoryInUse),
		errors.Is(err, domain.ErrSupplierInUse):
		response.Error(c, http.StatusConflict, err.Error())
	default:
		logger.Error(c.Request.Context(), "catalog request failed", "error", err)
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}

// CreateProduct 创建商品
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var cmd application.CreateProductCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if cmd.Price.IsNegative() || cmd.Stock < 0 {
		response.Error(c, http.StatusBadRequest, "price and stock must be non-negative")
		return
	}

	product, err := h.app.CreateProduct(c.Request.Context(), cmd)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Created(c, product)
}

// GetProduct 获取商品详情
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.app.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, product)
}

// ListProducts 分页列出商品
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	categoryID, _ := strconv.ParseUint(c.DefaultQuery("category_id", "0"), 10, 64)

	products, total, err := h.app.ListProducts(c.Request.Context(), uint(categoryID), page, pageSize)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, gin.H{"items": products, "total": total})
}

// UpdateProduct 更新商品
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var cmd application.UpdateProductCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.app.UpdateProduct(c.Request.Context(), id, cmd)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.app.DeleteProduct(c.Request.Context(), id); err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, nil)
}

// CreateCategory 创建分类
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	category, err := h.app.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Created(c, category)
}

// ListCategories 列出全部分类
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.app.ListCategories(c.Request.Context())
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, categories)
}

// DeleteCategory 删除分类
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.app.DeleteCategory(c.Request.Context(), id); err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, nil)
}

// CreateSupplier 创建供应商
func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	supplier, err := h.app.CreateSupplier(c.Request.Context(), req.Name, req.Email, req.Phone)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Created(c, supplier)
}

// ListSuppliers 列出全部供应商
func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.app.ListSuppliers(c.Request.Context())
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, suppliers)
}

// DeleteSupplier 删除供应商
func (h *CatalogHandler) DeleteSupplier(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.app.DeleteSupplier(c.Request.Context(), id); err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, nil)
}
