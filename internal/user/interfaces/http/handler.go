package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/ecommerce/internal/user/application"
	"github.com/wyfcoding/ecommerce/internal/user/domain"
	"github.com/wyfcoding/ecommerce/pkg/auth"
	"github.com/wyfcoding/ecommerce/pkg/contextx"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
	"github.com/wyfcoding/ecommerce/pkg/response"
)

// UserHandler 用户 HTTP 处理器
type UserHandler struct {
	app    *application.UserService // 用户应用服务
	tokens *auth.Manager
}

// NewUserHandler 创建 HTTP 处理器实例
func NewUserHandler(app *application.UserService, tokens *auth.Manager) *UserHandler {
	return &UserHandler{app: app, tokens: tokens}
}

// RegisterRoutes 注册路由，写操作要求登录，管理操作要求 admin 角色
func (h *UserHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/users")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
	}

	authed := api.Group("")
	authed.Use(middleware.JWTAuthMiddleware(h.tokens))
	{
		authed.GET("/me", h.Me)
		authed.POST("/me/addresses", h.AddAddress)
		authed.GET("/me/addresses", h.ListAddresses)
		authed.DELETE("/me/addresses/:id", h.DeleteAddress)
	}

	admin := api.Group("")
	admin.Use(middleware.JWTAuthMiddleware(h.tokens), middleware.RequireRole("admin"))
	{
		admin.GET("", h.ListUsers)
		admin.GET("/:id", h.GetUser)
		admin.DELETE("/:id", h.DeleteUser)
		admin.POST("/:id/roles", h.AssignRole)
	}
}

func (h *UserHandler) handleDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAddressNotFound),
		errors.Is(err, domain.ErrRoleNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUsernameTaken):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, err.Error())
	default:
		logger.Error(c.Request.Context(), "user request failed", "error", err)
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	var cmd application.RegisterCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.app.Register(c.Request.Context(), cmd)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Created(c, user)
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.app.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, result)
}

// Me 获取当前登录用户
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := contextx.UserID(c.Request.Context())
	if !ok {
		response.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}
	user, err := h.app.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, user)
}

// GetUser 获取指定用户
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid id")
		return
	}
	user, err := h.app.GetUser(c.Request.Context(), uint(id))
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, user)
}

// ListUsers 分页列出用户
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	users, total, err := h.app.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, gin.H{"items": users, "total": total})
}

// DeleteUser 删除用户
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.app.DeleteUser(c.Request.Context(), uint(id)); err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, nil)
}

// AssignRole 为用户授予角色
func (h *UserHandler) AssignRole(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.app.AssignRole(c.Request.Context(), uint(id), req.Role); err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, nil)
}

// AddAddress 为当前用户新增地址
func (h *UserHandler) AddAddress(c *gin.Context) {
	userID, ok := contextx.UserID(c.Request.Context())
	if !ok {
		response.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}
	var cmd application.AddAddressCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	address, err := h.app.AddAddress(c.Request.Context(), userID, cmd)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Created(c, address)
}

// ListAddresses 列出当前用户地址
func (h *UserHandler) ListAddresses(c *gin.Context) {
	userID, ok := contextx.UserID(c.Request.Context())
	if !ok {
		response.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}
	addresses, err := h.app.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, addresses)
}

// DeleteAddress 删除当前用户地址
func (h *UserHandler) DeleteAddress(c *gin.Context) {
	userID, ok := contextx.UserID(c.Request.Context())
	if !ok {
		response.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.app.DeleteAddress(c.Request.Context(), uint(id), userID); err != nil {
		h.handleDomainError(c, err)
		return
	}
	response.Success(c, nil)
}
