package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/internal/order/application"
	"github.com/wyfcoding/ecommerce/internal/order/domain"
	userdomain "github.com/wyfcoding/ecommerce/internal/user/domain"
	"github.com/wyfcoding/ecommerce/pkg/auth"
	"github.com/wyfcoding/ecommerce/pkg/contextx"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
	"github.com/wyfcoding/ecommerce/pkg/response"
)

// OrderHandler 订单 HTTP 处理器
type OrderHandler struct {
	app    *application.OrderService // 订单应用服务
	tokens *auth.Manager
}

// NewOrderHandler 创建 HTTP 处理器实例
func NewOrderHandler(app *application.OrderService, tokens *auth.Manager) *OrderHandler {
	return &OrderHandler{app: app, tokens: tokens}
}

// RegisterRoutes 注册路由，下单与查询要求登录，全量列表与删除要求 admin
func (h *OrderHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/orders")
	api.Use(middleware.JWTAuthMiddleware(h.tokens))
	{
		api.POST("", h.CreateOrder)
		api.POST("/checkout", h.CheckoutCart)
		api.GET("/my", h.ListMyOrders)
		api.GET("/:id", h.GetOrder)
		api.GET("/:id/items", h.GetOrderItems)
		api.PUT("/:id", h.UpdateOrder)
	}

	admin := api.Group("")
	admin.Use(middleware.RequireRole("admin"))
	{
		admin.GET("", h.ListOrders)
		admin.DELETE("/:id", h.DeleteOrder)
	}
}

func (h *OrderHandler) handleDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, catalogdomain.ErrProductNotFound),
		errors.Is(err, userdomain.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, catalogdomain.ErrInsufficientStock):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrEmptyOrder), errors.Is(err, domain.ErrInvalidDiscount),
		errors.Is(err, domain.ErrInvalidQuantity):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error(c.Request.Context(), "order request failed", "error", err)
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

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// CreateOrder 创建订单
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var cmd application.CreateOrderCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	cmd.UserID = userID

	order, err := h.app.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Created(c, order)
}

// CheckoutCart 将当前用户购物车结算为订单
func (h *OrderHandler) CheckoutCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		PaymentMethod  string          `json:"payment_method"`
		GlobalDiscount decimal.Decimal `json:"global_discount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.app.CreateOrderFromCart(c.Request.Context(), userID, req.PaymentMethod, req.GlobalDiscount)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Created(c, order)
}

// GetOrder 获取订单详情
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.app.GetOrder(c.Request.Context(), userID, id)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrderItems 获取订单行
func (h *OrderHandler) GetOrderItems(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	items, err := h.app.GetOrderItems(c.Request.Context(), userID, id)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, items)
}

// ListMyOrders 分页列出当前用户订单
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, total, err := h.app.ListOrdersForUser(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, gin.H{"items": orders, "total": total})
}

// ListOrders 分页列出全部订单
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, total, err := h.app.ListOrders(c.Request.Context(), page, pageSize)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, gin.H{"items": orders, "total": total})
}

// UpdateOrder 修改订单支付方式与整单折扣
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var cmd application.UpdateOrderCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.app.UpdateOrder(c.Request.Context(), userID, id, cmd)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, order)
}

// DeleteOrder 删除订单
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.app.DeleteOrder(c.Request.Context(), id); err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, nil)
}
