package service

import (
	"errors"

	"yamdb/internal/dto"
	"yamdb/internal/models"
	"yamdb/internal/repository"
	"yamdb/pkg/apperrors"

	"gorm.io/gorm"
)

type CategoryService interface {
	CreateCategory(req *dto.CreateCategoryDTO) (*dto.CategoryResponse, error)
	ListCategories(page, pageSize int) (*dto.PaginatedCategoryResponse, error)
	DeleteCategory(slug string) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) CreateCategory(req *dto.CreateCategoryDTO) (*dto.CategoryResponse, error) {
	if _, err := s.categoryRepo.FindBySlug(req.Slug); err == nil {
		return nil, apperrors.Uniqueness("category", "slug already in use")
	}

	category := &models.Category{
		Name: req.Name,
		Slug: req.Slug,
	}

	if err := s.categoryRepo.Create(category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Uniqueness("category", "slug already in use")
		}
		return nil, apperrors.Internal(err)
	}

	return dto.FromModelToCategoryResponse(category), nil
}

func (s *categoryService) ListCategories(page, pageSize int) (*dto.PaginatedCategoryResponse, error) {
	categories, total, err := s.categoryRepo.List(page, pageSize)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	responses := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, *dto.FromModelToCategoryResponse(&categories[i]))
	}

	return dto.NewPaginatedCategoryResponse(responses, int(total), page, pageSize), nil
}

// DeleteCategory removes the category; its titles keep existing with the
// reference cleared.
func (s *categoryService) DeleteCategory(slug string) error {
	if err := s.categoryRepo.Delete(slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("category", "category not found")
		}
		return apperrors.Internal(err)
	}
	return nil
}
