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

type ReviewService interface {
	CreateReview(author *models.User, titleID int64, req *dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	GetReview(reviewID int64) (*dto.ReviewResponse, error)
	GetTitleReviews(titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error)
	UpdateReview(actor *models.User, reviewID int64, req *dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	DeleteReview(actor *models.User, reviewID int64) error
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	titleRepo   repository.TitleRepository
	ratingCache *cache.RatingCache
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	titleRepo repository.TitleRepository,
	ratingCache *cache.RatingCache,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		titleRepo:   titleRepo,
		ratingCache: ratingCache,
	}
}

// CreateReview writes one user's evaluation of a title. A second review for
// the same (author, title) pair is rejected; the unique index catches the
// race two concurrent creates would otherwise win together.
func (s *reviewService) CreateReview(author *models.User, titleID int64, req *dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if err := models.ValidateScore(req.Score); err != nil {
		return nil, apperrors.Validation("review", err.Error())
	}

	if _, err := s.titleRepo.GetByID(titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("title", "title not found")
		}
		return nil, apperrors.Internal(err)
	}

	if _, err := s.reviewRepo.GetByAuthorAndTitle(author.ID, titleID); err == nil {
		return nil, apperrors.Uniqueness("review", "you have already reviewed this title")
	}

	review := &models.Review{
		Text:     req.Text,
		Score:    req.Score,
		AuthorID: author.ID,
		TitleID:  titleID,
	}

	if err := s.reviewRepo.Create(review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Uniqueness("review", "you have already reviewed this title")
		}
		return nil, apperrors.Internal(err)
	}

	s.ratingCache.Invalidate(titleID)

	created, err := s.reviewRepo.GetByID(review.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return dto.FromModelToReviewResponse(created), nil
}

func (s *reviewService) GetReview(reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("review", "review not found")
		}
		return nil, apperrors.Internal(err)
	}
	return dto.FromModelToReviewResponse(review), nil
}

// GetTitleReviews lists a title's reviews oldest first.
func (s *reviewService) GetTitleReviews(titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	if _, err := s.titleRepo.GetByID(titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("title", "title not found")
		}
		return nil, apperrors.Internal(err)
	}

	reviews, total, err := s.reviewRepo.GetByTitle(titleID, page, pageSize)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		responses = append(responses, *dto.FromModelToReviewResponse(&reviews[i]))
	}

	return dto.NewPaginatedReviewResponse(responses, int(total), page, pageSize), nil
}

// UpdateReview changes text and/or score. Allowed for the author and for
// moderators/admins; pub_date never changes.
func (s *reviewService) UpdateReview(actor *models.User, reviewID int64, req *dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("review", "review not found")
		}
		return nil, apperrors.Internal(err)
	}

	if !canModerate(actor, review.AuthorID) {
		return nil, apperrors.Forbidden("you cannot edit someone else's review")
	}

	if req.Score != nil {
		if err := models.ValidateScore(*req.Score); err != nil {
			return nil, apperrors.Validation("review", err.Error())
		}
		review.Score = *req.Score
	}
	if req.Text != nil {
		review.Text = *req.Text
	}

	if err := s.reviewRepo.Update(review); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.ratingCache.Invalidate(review.TitleID)

	return dto.FromModelToReviewResponse(review), nil
}

// DeleteReview removes the review and its comments.
func (s *reviewService) DeleteReview(actor *models.User, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("review", "review not found")
		}
		return apperrors.Internal(err)
	}

	if !canModerate(actor, review.AuthorID) {
		return apperrors.Forbidden("you cannot delete someone else's review")
	}

	if err := s.reviewRepo.Delete(reviewID); err != nil {
		return apperrors.Internal(err)
	}

	s.ratingCache.Invalidate(review.TitleID)
	return nil
}

// canModerate reports whether actor may touch content owned by authorID:
// the author themselves, a moderator, or an admin.
func canModerate(actor *models.User, authorID string) bool {
	return actor.ID == authorID || actor.IsModerator() || actor.IsAdmin()
}
