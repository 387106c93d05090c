package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/datamodels/category"
	"github.com/example/storefront/internal/datamodels/query"
	"github.com/example/storefront/internal/validation"
)

var errCategoryExists = apperr.Conflict("Category with this name already exists")

type CategoryService struct {
	repo category.Repository
}

func NewCategoryService(repo category.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context) ([]*category.Category, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, storeErr("category.list", err)
	}
	return list, nil
}

// Create 分类名去除首尾空白后校验，重名不区分大小写
func (s *CategoryService) Create(ctx context.Context, name, description string) (*category.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Category name is required and must be a non-empty string")
	}
	if utf8.RuneCountInString(name) > 30 {
		return nil, apperr.Validation("Invalid Name length")
	}
	if err := validation.CategoryName(name); err != nil {
		return nil, err
	}

	_, err := s.repo.FindByName(ctx, name)
	switch {
	case err == nil:
		return nil, errCategoryExists
	case !errors.Is(err, query.ErrNotFound):
		return nil, storeErr("category.find_by_name", err)
	}

	c := &category.Category{ID: query.NewID(), Name: name, Description: description}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, writeErr("category.create", err, errCategoryExists.Error())
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupErr("category.delete", err, "Category not found")
	}
	return nil
}
