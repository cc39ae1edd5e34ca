package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/wyfcoding/ecommerce/internal/user/domain"
	"github.com/wyfcoding/ecommerce/pkg/auth"
)

type userRepoStub struct {
	users  map[uint]*domain.User
	nextID uint
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: map[uint]*domain.User{}, nextID: 1}
}

func (s *userRepoStub) Save(_ context.Context, u *domain.User) error {
	if u.ID == 0 {
		u.ID = s.nextID
		s.nextID++
	}
	s.users[u.ID] = u
	return nil
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *userRepoStub) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *userRepoStub) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, err := s.GetByUsername(context.Background(), username)
	return err == nil, nil
}

func (s *userRepoStub) List(_ context.Context, _, _ int) ([]*domain.User, int64, error) {
	return nil, 0, nil
}

func (s *userRepoStub) Delete(_ context.Context, id uint) error {
	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *userRepoStub) AssignRole(_ context.Context, userID uint, role *domain.Role) error {
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Roles = append(u.Roles, *role)
	return nil
}

type roleRepoStub struct {
	roles map[string]*domain.Role
}

func newRoleRepoStub() *roleRepoStub {
	return &roleRepoStub{roles: map[string]*domain.Role{}}
}

func (s *roleRepoStub) GetOrCreate(_ context.Context, name string) (*domain.Role, error) {
	if role, ok := s.roles[name]; ok {
		return role, nil
	}
	role := &domain.Role{Model: gorm.Model{ID: uint(len(s.roles) + 1)}, Name: name}
	s.roles[name] = role
	return role, nil
}

func (s *roleRepoStub) List(_ context.Context) ([]*domain.Role, error) {
	var all []*domain.Role
	for _, r := range s.roles {
		all = append(all, r)
	}
	return all, nil
}

type addressRepoStub struct {
	addresses map[uint]*domain.Address
	nextID    uint
}

func newAddressRepoStub() *addressRepoStub {
	return &addressRepoStub{addresses: map[uint]*domain.Address{}, nextID: 1}
}

func (s *addressRepoStub) Save(_ context.Context, a *domain.Address) error {
	if a.ID == 0 {
		a.ID = s.nextID
		s.nextID++
	}
	s.addresses[a.ID] = a
	return nil
}

func (s *addressRepoStub) GetByID(_ context.Context, id uint) (*domain.Address, error) {
	a, ok := s.addresses[id]
	if !ok {
		return nil, domain.ErrAddressNotFound
	}
	return a, nil
}

func (s *addressRepoStub) ListByUser(_ context.Context, userID uint) ([]*domain.Address, error) {
	var result []*domain.Address
	for _, a := range s.addresses {
		if a.UserID == userID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *addressRepoStub) Delete(_ context.Context, id, userID uint) error {
	a, ok := s.addresses[id]
	if !ok || a.UserID != userID {
		return domain.ErrAddressNotFound
	}
	delete(s.addresses, id)
	return nil
}

func (s *addressRepoStub) ClearDefault(_ context.Context, userID uint) error {
	for _, a := range s.addresses {
		if a.UserID == userID {
			a.IsDefault = false
		}
	}
	return nil
}

type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*UserService, *userRepoStub, *addressRepoStub) {
	users := newUserRepoStub()
	addresses := newAddressRepoStub()
	tokens := auth.NewManager("test-secret", "ecommerce", 1)
	svc := NewUserService(users, newRoleRepoStub(), addresses, tokens, passthroughTxManager{})
	return svc, users, addresses
}

func TestRegisterHashesPasswordAndGrantsCustomerRole(t *testing.T) {
	svc, users, _ := newTestService()

	user, err := svc.Register(context.Background(), RegisterCommand{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	stored := users.users[user.ID]
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash, "password must never be stored in clear")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
	assert.True(t, stored.HasRole("customer"))
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterCommand{
		Username: "alice", Email: "a@example.com", Password: "password1",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterCommand{
		Username: "alice", Email: "b@example.com", Password: "password2",
	})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestLoginIssuesParseableToken(t *testing.T) {
	svc, _, _ := newTestService()
	tokens := auth.NewManager("test-secret", "ecommerce", 1)

	registered, err := svc.Register(context.Background(), RegisterCommand{
		Username: "bob", Email: "bob@example.com", Password: "hunter2-long",
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "bob", "hunter2-long")
	require.NoError(t, err)

	claims, err := tokens.Parse(result.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, "bob", claims.Username)
	assert.Contains(t, claims.Roles, "customer")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterCommand{
		Username: "carol", Email: "carol@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "carol", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// 不泄露用户是否存在
	_, err = svc.Login(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAddAddressDefaultHandling(t *testing.T) {
	svc, _, addresses := newTestService()

	user, err := svc.Register(context.Background(), RegisterCommand{
		Username: "dave", Email: "dave@example.com", Password: "password123",
	})
	require.NoError(t, err)

	first, err := svc.AddAddress(context.Background(), user.ID, AddAddressCommand{
		Recipient: "Dave", Line1: "1 Main St", IsDefault: true,
	})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := svc.AddAddress(context.Background(), user.ID, AddAddressCommand{
		Recipient: "Dave", Line1: "2 Side St", IsDefault: true,
	})
	require.NoError(t, err)
	assert.True(t, second.IsDefault)
	assert.False(t, addresses.addresses[first.ID].IsDefault, "previous default must be cleared")

	_, err = svc.AddAddress(context.Background(), 999, AddAddressCommand{Recipient: "X", Line1: "Y"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
