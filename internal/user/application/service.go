// Package application 实现用户服务的应用层逻辑
package application

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/wyfcoding/ecommerce/internal/user/domain"
	"github.com/wyfcoding/ecommerce/pkg/auth"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// TxManager 在单个数据库事务内执行回调
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RegisterCommand 注册命令
type RegisterCommand struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginResult 登录结果
type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// UserService 用户应用服务
type UserService struct {
	users     domain.UserRepository
	roles     domain.RoleRepository
	addresses domain.AddressRepository
	tokens    *auth.Manager
	txm       TxManager
}

// NewUserService 创建用户应用服务
func NewUserService(
	users domain.UserRepository,
	roles domain.RoleRepository,
	addresses domain.AddressRepository,
	tokens *auth.Manager,
	txm TxManager,
) *UserService {
	return &UserService{
		users:     users,
		roles:     roles,
		addresses: addresses,
		tokens:    tokens,
		txm:       txm,
	}
}

// Register 注册新用户，默认授予 customer 角色
func (s *UserService) Register(ctx context.Context, cmd RegisterCommand) (*domain.User, error) {
	taken, err := s.users.ExistsByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     cmd.Username,
		Email:        cmd.Email,
		PasswordHash: string(hash),
	}
	err = s.txm.WithTx(ctx, func(txCtx context.Context) error {
		role, err := s.roles.GetOrCreate(txCtx, "customer")
		if err != nil {
			return err
		}
		user.Roles = []domain.Role{*role}
		return s.users.Save(txCtx, user)
	})
	if err != nil {
		logger.Error(ctx, "user registration failed", "username", cmd.Username, "error", err)
		return nil, err
	}
	logger.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login 校验密码并签发 JWT
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Username, user.RoleNames())
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{Token: token, User: user}, nil
}

// GetUser 获取用户信息
func (s *UserService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers 分页列出用户
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) ([]*domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.users.List(ctx, (page-1)*pageSize, pageSize)
}

// DeleteUser 删除用户
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	return s.users.Delete(ctx, id)
}

// AssignRole 为用户授予角色
func (s *UserService) AssignRole(ctx context.Context, userID uint, roleName string) error {
	return s.txm.WithTx(ctx, func(txCtx context.Context) error {
		role, err := s.roles.GetOrCreate(txCtx, roleName)
		if err != nil {
			return err
		}
		return s.users.AssignRole(txCtx, userID, role)
	})
}

// AddAddressCommand 新增地址命令
type AddAddressCommand struct {
	Recipient string `json:"recipient" binding:"required"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1" binding:"required"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	Province  string `json:"province"`
	ZipCode   string `json:"zip_code"`
	IsDefault bool   `json:"is_default"`
}

// AddAddress 为用户新增收货地址；设为默认时原默认地址被清除
func (s *UserService) AddAddress(ctx context.Context, userID uint, cmd AddAddressCommand) (*domain.Address, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	address := &domain.Address{
		UserID:    userID,
		Recipient: cmd.Recipient,
		Phone:     cmd.Phone,
		Line1:     cmd.Line1,
		Line2:     cmd.Line2,
		City:      cmd.City,
		Province:  cmd.Province,
		ZipCode:   cmd.ZipCode,
		IsDefault: cmd.IsDefault,
	}
	err := s.txm.WithTx(ctx, func(txCtx context.Context) error {
		if cmd.IsDefault {
			if err := s.addresses.ClearDefault(txCtx, userID); err != nil {
				return err
			}
		}
		return s.addresses.Save(txCtx, address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// ListAddresses 列出用户全部地址
func (s *UserService) ListAddresses(ctx context.Context, userID uint) ([]*domain.Address, error) {
	return s.addresses.ListByUser(ctx, userID)
}

// DeleteAddress 删除用户地址
func (s *UserService) DeleteAddress(ctx context.Context, id, userID uint) error {
	return s.addresses.Delete(ctx, id, userID)
}
