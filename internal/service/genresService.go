package service

import (
	"errors"

	"yamdb/internal/dto"
	"yamdb/internal/models"
	"yamdb/internal/repository"
	"yamdb/pkg/apperrors"

	"gorm.io/gorm"
)

type GenreService interface {
	CreateGenre(req *dto.CreateGenreDTO) (*dto.GenreResponse, error)
	ListGenres(page, pageSize int) (*dto.PaginatedGenreResponse, error)
	DeleteGenre(slug string) error
}

type genreService struct {
	genreRepo repository.GenreRepository
}

func NewGenreService(genreRepo repository.GenreRepository) GenreService {
	return &genreService{genreRepo: genreRepo}
}

func (s *genreService) CreateGenre(req *dto.CreateGenreDTO) (*dto.GenreResponse, error) {
	if _, err := s.genreRepo.FindBySlug(req.Slug); err == nil {
		return nil, apperrors.Uniqueness("genre", "slug already in use")
	}

	genre := &models.Genre{
		Name: req.Name,
		Slug: req.Slug,
	}

	if err := s.genreRepo.Create(genre); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Uniqueness("genre", "slug already in use")
		}
		return nil, apperrors.Internal(err)
	}

	return dto.FromModelToGenreResponse(genre), nil
}

func (s *genreService) ListGenres(page, pageSize int) (*dto.PaginatedGenreResponse, error) {
	genres, total, err := s.genreRepo.List(page, pageSize)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	responses := make([]dto.GenreResponse, 0, len(genres))
	for i := range genres {
		responses = append(responses, *dto.FromModelToGenreResponse(&genres[i]))
	}

	return dto.NewPaginatedGenreResponse(responses, int(total), page, pageSize), nil
}

func (s *genreService) DeleteGenre(slug string) error {
	if err := s.genreRepo.Delete(slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("genre", "genre not found")
		}
		return apperrors.Internal(err)
	}
	return nil
}
