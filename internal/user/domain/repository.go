package domain

import "context"

// UserRepository 用户仓储接口
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	// GetByID 获取用户（含角色）；不存在时返回 ErrUserNotFound
	GetByID(ctx context.Context, id uint) (*User, error)
	// GetByUsername 按用户名获取用户（含角色）
	GetByUsername(ctx context.Context, username string) (*User, error)
	// ExistsByUsername 判断用户名是否已被注册
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*User, int64, error)
	Delete(ctx context.Context, id uint) error
	// AssignRole 为用户追加角色
	AssignRole(ctx context.Context, userID uint, role *Role) error
}

// RoleRepository 角色仓储接口
type RoleRepository interface {
	// GetOrCreate 按名称获取角色，不存在时创建
	GetOrCreate(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
}

// AddressRepository 地址仓储接口
type AddressRepository interface {
	Save(ctx context.Context, address *Address) error
	GetByID(ctx context.Context, id uint) (*Address, error)
	ListByUser(ctx context.Context, userID uint) ([]*Address, error)
	Delete(ctx context.Context, id, userID uint) error
	// ClearDefault 清除用户当前默认地址标记
	ClearDefault(ctx context.Context, userID uint) error
}
