package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/ecommerce/internal/cart/application"
	cartdomain "github.com/wyfcoding/ecommerce/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	userdomain "github.com/wyfcoding/ecommerce/internal/user/domain"
	"github.com/wyfcoding/ecommerce/pkg/auth"
	"github.com/wyfcoding/ecommerce/pkg/contextx"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
	"github.com/wyfcoding/ecommerce/pkg/response"
)

// CartHandler 购物车 HTTP 处理器
type CartHandler struct {
	app    *application.CartService // 购物车应用服务
	tokens *auth.Manager
}

// NewCartHandler 创建 HTTP 处理器实例
func NewCartHandler(app *application.CartService, tokens *auth.Manager) *CartHandler {
	return &CartHandler{app: app, tokens: tokens}
}

// RegisterRoutes 注册路由，购物车操作均要求登录
func (h *CartHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/cart")
	api.Use(middleware.JWTAuthMiddleware(h.tokens))
	{
		api.GET("", h.ListCart)
		api.POST("/items", h.AddItem)
		api.GET("/items/:id", h.GetItem)
		api.PUT("/items/:id", h.SetQuantity)
		api.DELETE("/items/:id", h.RemoveItem)
		api.DELETE("", h.ClearCart)
	}
}

func (h *CartHandler) handleDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cartdomain.ErrCartLineNotFound),
		errors.Is(err, catalogdomain.ErrProductNotFound),
		errors.Is(err, userdomain.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, catalogdomain.ErrInsufficientStock):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, application.ErrInvalidQuantity):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error(c.Request.Context(), "cart request failed", "error", err)
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}

func currentUserID(c *gin.Context) (uint, bool) {
	userID, ok := contextx.UserID(c.Request.Context())
	if !ok {
		response.Error(c, http.StatusUnauthorized, "not authenticated")
		return 0, false
	}
	return userID, true
}

// ListCart 查看当前用户购物车
func (h *CartHandler) ListCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	view, err := h.app.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, view)
}

// AddItem 向购物车添加商品
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	line, err := h.app.AddOrUpdate(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, line)
}

// GetItem 获取单个购物车行
func (h *CartHandler) GetItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid id")
		return
	}
	line, err := h.app.GetByID(c.Request.Context(), userID, uint(id))
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, line)
}

// SetQuantity 覆盖购物车行数量
func (h *CartHandler) SetQuantity(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		Quantity int `json:"quantity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	line, err := h.app.SetQuantity(c.Request.Context(), userID, uint(id), req.Quantity)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, line)
}

// RemoveItem 删除购物车行
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.app.Remove(c.Request.Context(), userID, uint(id)); err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, nil)
}

// ClearCart 清空当前用户购物车
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.app.ClearForUser(c.Request.Context(), userID); err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, nil)
}
