// Package domain 包含用户服务的领域模型
package domain

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken 用户名已被占用
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrRoleNotFound 角色不存在
	ErrRoleNotFound = errors.New("role not found")
	// ErrAddressNotFound 地址不存在
	ErrAddressNotFound = errors.New("address not found")
)

// User 用户实体
type User struct {
	gorm.Model
	Username string `gorm:"column:username;type:varchar(64);uniqueIndex;not null" json:"username"`
	Email    string `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	// bcrypt 哈希，不对外序列化
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Roles        []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

func (User) TableName() string { return "users" }

// HasRole 判断用户是否拥有某角色
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames 返回角色名列表
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Role 角色
type Role struct {
	gorm.Model
	Name string `gorm:"column:name;type:varchar(32);uniqueIndex;not null" json:"name"`
}

func (Role) TableName() string { return "roles" }

// Address 收货地址
type Address struct {
	gorm.Model
	UserID    uint   `gorm:"column:user_id;index;not null" json:"user_id"`
	Recipient string `gorm:"column:recipient;type:varchar(128);not null" json:"recipient"`
	Phone     string `gorm:"column:phone;type:varchar(50)" json:"phone"`
	Line1     string `gorm:"column:line1;type:varchar(255);not null" json:"line1"`
	Line2     string `gorm:"column:line2;type:varchar(255)" json:"line2"`
	City      string `gorm:"column:city;type:varchar(100)" json:"city"`
	Province  string `gorm:"column:province;type:varchar(100)" json:"province"`
	ZipCode   string `gorm:"column:zip_code;type:varchar(20)" json:"zip_code"`
	IsDefault bool   `gorm:"column:is_default;not null;default:false" json:"is_default"`
}

func (Address) TableName() string { return "addresses" }
