package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/datamodels/query"
	"github.com/example/storefront/internal/datamodels/user"
	"github.com/example/storefront/internal/validation"
)

const defaultUserPageSize = 3

var (
	errUserExists         = apperr.Conflict("User already exists")
	errInvalidCredentials = apperr.Auth("Invalid credentials")
)

// RegisterInput Role 为空时按 customer 处理
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     user.Role
}

// ProfileInput 空字符串表示不修改
type ProfileInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult 注册/登录结果，User 不含密码
type AuthResult struct {
	User  *user.User
	Token string
}

type UserPage struct {
	Users      []*user.User `json:"users"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
	TotalUsers int64        `json:"totalUsers"`
	Results    int          `json:"results"`
}

type UserService struct {
	repo user.Repository
	jwt  *config.JWTConfig
	cost int
	now  func() time.Time
}

func NewUserService(repo user.Repository, jwt *config.JWTConfig) *UserService {
	return &UserService{repo: repo, jwt: jwt, cost: bcrypt.DefaultCost, now: time.Now}
}

func (s *UserService) hashPassword(raw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(raw), s.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Register 注册并返回令牌
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("Name, email, and password are required")
	}
	if in.Role == "" {
		in.Role = user.RoleCustomer
	}
	err := validation.First(
		func() error {
			if utf8.RuneCountInString(in.Name) > 30 {
				return apperr.Validation("Invalid name length")
			}
			return nil
		},
		func() error {
			if utf8.RuneCountInString(in.Email) > 30 {
				return apperr.Validation("Invalid email length")
			}
			return nil
		},
		func() error { return validation.AccountEmail(in.Email) },
		func() error {
			if len(in.Password) < 6 {
				return apperr.Validation("Password must be at least 6 characters long")
			}
			return nil
		},
		func() error {
			if !in.Role.Valid() {
				return apperr.Validation("Role is not allowed")
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, errUserExists
	case !errors.Is(err, query.ErrNotFound):
		return nil, storeErr("user.get_by_email", err)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	u := &user.User{
		ID:         query.NewID(),
		Name:       in.Name,
		Email:      in.Email,
		Password:   hash,
		Role:       in.Role,
		Registered: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, writeErr("user.create", err, errUserExists.Error())
	}
	return s.issue(u)
}

// Login 邮箱不存在与密码错误返回同一个错误
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}
	if err := validation.AccountEmail(email); err != nil {
		return nil, err
	}
	if len(password) < 6 {
		return nil, apperr.Validation("Password must be at least 6 characters")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, query.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, storeErr("user.get_by_email", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, errInvalidCredentials
	}
	return s.issue(u)
}

func (s *UserService) issue(u *user.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(s.jwt, u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

// UpdateProfile 当前登录用户修改自己的资料
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*user.User, error) {
	if err := checkID(userID); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupErr("user.get", err, "User not found")
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		if utf8.RuneCountInString(name) > 30 {
			return nil, apperr.Validation("Name too long")
		}
		u.Name = name
	}
	if email := strings.TrimSpace(in.Email); email != "" && email != u.Email {
		if err := validation.AccountEmail(email); err != nil {
			return nil, err
		}
		other, err := s.repo.GetByEmail(ctx, email)
		switch {
		case err == nil && other.ID != u.ID:
			return nil, apperr.Conflict("Email already in use")
		case err != nil && !errors.Is(err, query.ErrNotFound):
			return nil, storeErr("user.get_by_email", err)
		}
		u.Email = email
	}
	if in.Password != "" {
		if len(in.Password) < 6 {
			return nil, apperr.Validation("Password must be at least 6 characters")
		}
		hash, err := s.hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}

	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, query.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, writeErr("user.update", err, "Email already in use")
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, opts query.Options) (*UserPage, error) {
	opts = opts.Normalize(defaultUserPageSize)
	list, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, storeErr("user.list", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, storeErr("user.count", err)
	}
	return &UserPage{
		Users:      list,
		Page:       opts.Page,
		TotalPages: query.TotalPages(total, opts.Limit),
		TotalUsers: total,
		Results:    len(list),
	}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*user.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("user.get", err, "User not found")
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupErr("user.delete", err, "User not found")
	}
	return nil
}
