package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/datamodels/query"
	"github.com/example/storefront/internal/datamodels/user"
)

func newUserService(users *fakeUsers) (*UserService, *config.JWTConfig) {
	jwtCfg := &config.JWTConfig{Secret: "test-secret", TTL: 5 * time.Minute}
	svc := NewUserService(users, jwtCfg)
	svc.cost = bcrypt.MinCost
	return svc, jwtCfg
}

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUsers()
	svc, jwtCfg := newUserService(users)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleCustomer, res.User.Role)
	assert.True(t, res.User.Registered)
	assert.NotEqual(t, "secret1", users.items[res.User.ID].Password)

	claims, err := auth.ParseToken(jwtCfg, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, user.RoleCustomer, claims.Role)

	login, err := svc.Login(ctx, "jane@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = svc.Login(ctx, "jane@example.com", "wrong-pass")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	assert.Equal(t, "Invalid credentials", apperr.MessageOf(err))

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.Equal(t, "Invalid credentials", apperr.MessageOf(err))
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"missing password", RegisterInput{Name: "Jane", Email: "jane@example.com"}, "Name, email, and password are required"},
		{"long name", RegisterInput{Name: "Jane Alexandra Catherine Doe-Smith", Email: "jane@example.com", Password: "secret1"}, "Invalid name length"},
		{"bad email", RegisterInput{Name: "Jane", Email: "jane@example", Password: "secret1"}, "Invalid email format"},
		{"short password", RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "123"}, "Password must be at least 6 characters long"},
		{"bad role", RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret1", Role: "root"}, "Role is not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newUserService(newFakeUsers())
			_, err := svc.Register(context.Background(), tt.in)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tt.msg, apperr.MessageOf(err))
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newUserService(newFakeUsers(&user.User{ID: query.NewID(), Email: "jane@example.com"}))

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "User already exists", apperr.MessageOf(err))
}

func TestAdminCreatesAdmin(t *testing.T) {
	svc, _ := newUserService(newFakeUsers())

	res, err := svc.Register(context.Background(), RegisterInput{Name: "Root", Email: "root@example.com", Password: "secret1", Role: user.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, res.User.Role)
}

func TestUpdateProfile(t *testing.T) {
	id, other := query.NewID(), query.NewID()
	users := newFakeUsers(
		&user.User{ID: id, Name: "Jane", Email: "jane@example.com"},
		&user.User{ID: other, Name: "John", Email: "john@example.com"},
	)
	svc, _ := newUserService(users)
	ctx := context.Background()

	u, err := svc.UpdateProfile(ctx, id, ProfileInput{Name: "Jane D", Password: "newpass1"})
	require.NoError(t, err)
	assert.Equal(t, "Jane D", u.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.items[id].Password), []byte("newpass1")))

	_, err = svc.UpdateProfile(ctx, id, ProfileInput{Email: "john@example.com"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = svc.UpdateProfile(ctx, id, ProfileInput{Password: "123"})
	assert.Equal(t, "Password must be at least 6 characters", apperr.MessageOf(err))

	_, err = svc.UpdateProfile(ctx, query.NewID(), ProfileInput{Name: "x"})
	assert.Equal(t, "User not found", apperr.MessageOf(err))
}

func TestListUsersDefaultLimit(t *testing.T) {
	users := newFakeUsers()
	for i := 0; i < 7; i++ {
		id := query.NewID()
		users.items[id] = &user.User{ID: id}
	}
	svc, _ := newUserService(users)

	res, err := svc.List(context.Background(), query.Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Results)
	assert.Equal(t, 3, res.TotalPages)
	assert.EqualValues(t, 7, res.TotalUsers)
}

func TestGetAndDeleteUser(t *testing.T) {
	id := query.NewID()
	svc, _ := newUserService(newFakeUsers(&user.User{ID: id, Name: "Jane"}))
	ctx := context.Background()

	u, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jane", u.Name)

	require.NoError(t, svc.Delete(ctx, id))
	assert.Equal(t, "User not found", apperr.MessageOf(svc.Delete(ctx, id)))
	assert.Equal(t, "Invalid ID format", apperr.MessageOf(svc.Delete(ctx, "123")))
}
