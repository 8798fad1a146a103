package service

import (
	"errors"

	"yamdb/internal/cache"
	"yamdb/internal/dto"
	"yamdb/internal/models"
	"yamdb/internal/repository"
	"yamdb/pkg/apperrors"

	"gorm.io/gorm"
)

type TitleService interface {
	CreateTitle(req *dto.CreateTitleDTO) (*dto.TitleResponse, error)
	GetTitle(titleID int64) (*dto.TitleResponse, error)
	ListTitles(filters repository.TitleFilters, page, pageSize int) (*dto.PaginatedTitleResponse, error)
	UpdateTitle(titleID int64, req *dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	DeleteTitle(titleID int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	reviewRepo   repository.ReviewRepository
	ratingCache  *cache.RatingCache
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	reviewRepo repository.ReviewRepository,
	ratingCache *cache.RatingCache,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		reviewRepo:   reviewRepo,
		ratingCache:  ratingCache,
	}
}

// CreateTitle validates the release year against the current-year ceiling
// and resolves category/genre slugs. The category may be omitted.
func (s *titleService) CreateTitle(req *dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	if err := models.ValidateYear(req.Year); err != nil {
		return nil, apperrors.Validation("title", err.Error())
	}

	title := &models.Title{
		Name: req.Name,
		Year: req.Year,
	}
	if req.Description != "" {
		title.Description = &req.Description
	}

	if req.Category != "" {
		category, err := s.categoryRepo.FindBySlug(req.Category)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.Validation("title", "unknown category: "+req.Category)
			}
			return nil, apperrors.Internal(err)
		}
		title.CategoryID = &category.ID
	}

	genres, err := s.resolveGenres(req.Genres)
	if err != nil {
		return nil, err
	}

	if err := s.titleRepo.Create(title); err != nil {
		return nil, apperrors.Internal(err)
	}
	if len(genres) > 0 {
		if err := s.titleRepo.ReplaceGenres(title, genres); err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	created, err := s.titleRepo.GetByID(title.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return dto.FromModelToTitleResponse(created, nil), nil
}

func (s *titleService) GetTitle(titleID int64) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(titleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("title", "title not found")
		}
		return nil, apperrors.Internal(err)
	}

	return dto.FromModelToTitleResponse(title, s.titleRating(titleID)), nil
}

func (s *titleService) ListTitles(filters repository.TitleFilters, page, pageSize int) (*dto.PaginatedTitleResponse, error) {
	titles, total, err := s.titleRepo.List(filters, page, pageSize)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	responses := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		responses = append(responses, *dto.FromModelToTitleResponse(&titles[i], s.titleRating(titles[i].ID)))
	}

	return dto.NewPaginatedTitleResponse(responses, int(total), page, pageSize), nil
}

func (s *titleService) UpdateTitle(titleID int64, req *dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(titleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("title", "title not found")
		}
		return nil, apperrors.Internal(err)
	}

	if req.Year != nil {
		if err := models.ValidateYear(*req.Year); err != nil {
			return nil, apperrors.Validation("title", err.Error())
		}
		title.Year = *req.Year
	}
	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Description != nil {
		title.Description = req.Description
	}
	if req.Category != nil {
		if *req.Category == "" {
			title.CategoryID = nil
			title.Category = nil
		} else {
			category, err := s.categoryRepo.FindBySlug(*req.Category)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.Validation("title", "unknown category: "+*req.Category)
				}
				return nil, apperrors.Internal(err)
			}
			title.CategoryID = &category.ID
		}
	}

	if err := s.titleRepo.Update(title); err != nil {
		return nil, apperrors.Internal(err)
	}

	if req.Genres != nil {
		genres, err := s.resolveGenres(*req.Genres)
		if err != nil {
			return nil, err
		}
		if err := s.titleRepo.ReplaceGenres(title, genres); err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	updated, err := s.titleRepo.GetByID(titleID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return dto.FromModelToTitleResponse(updated, s.titleRating(titleID)), nil
}

// DeleteTitle removes the title along with its reviews and, through them,
// their comments.
func (s *titleService) DeleteTitle(titleID int64) error {
	if err := s.titleRepo.Delete(titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("title", "title not found")
		}
		return apperrors.Internal(err)
	}

	s.ratingCache.Invalidate(titleID)
	return nil
}

// resolveGenres maps slugs to genre rows; any unknown slug fails the write.
func (s *titleService) resolveGenres(slugs []string) ([]models.Genre, error) {
	genres, err := s.genreRepo.FindBySlugs(slugs)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if len(genres) != len(slugs) {
		found := make(map[string]bool, len(genres))
		for _, g := range genres {
			found[g.Slug] = true
		}
		for _, slug := range slugs {
			if !found[slug] {
				return nil, apperrors.Validation("title", "unknown genre: "+slug)
			}
		}
	}
	return genres, nil
}

// titleRating reads the review aggregate through the cache, falling back to
// the database and repopulating on a miss. Returns nil for unreviewed titles.
func (s *titleService) titleRating(titleID int64) *float64 {
	if cached, ok := s.ratingCache.Get(titleID); ok {
		if cached.Count == 0 {
			return nil
		}
		avg := cached.Average
		return &avg
	}

	count, err := s.reviewRepo.CountByTitle(titleID)
	if err != nil {
		return nil
	}

	rating := cache.TitleRating{Count: count}
	if count > 0 {
		avg, err := s.reviewRepo.AverageScore(titleID)
		if err != nil {
			return nil
		}
		rating.Average = avg
	}

	// best effort, a failed write just means a recompute next time
	s.ratingCache.Set(titleID, rating)

	if count == 0 {
		return nil
	}
	return &rating.Average
}
