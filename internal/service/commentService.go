package service

import (
	"errors"

	"yamdb/internal/dto"
	"yamdb/internal/models"
	"yamdb/internal/repository"
	"yamdb/pkg/apperrors"

	"gorm.io/gorm"
)

type CommentService interface {
	CreateComment(author *models.User, reviewID int64, req *dto.CreateCommentDTO) (*dto.CommentResponse, error)
	GetReviewComments(reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error)
	UpdateComment(actor *models.User, commentID int64, req *dto.UpdateCommentDTO) (*dto.CommentResponse, error)
	DeleteComment(actor *models.User, commentID int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	reviewRepo repository.ReviewRepository,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

// CreateComment attaches a reply to an existing review.
func (s *commentService) CreateComment(author *models.User, reviewID int64, req *dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	if _, err := s.reviewRepo.GetByID(reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("review", "review not found")
		}
		return nil, apperrors.Internal(err)
	}

	comment := &models.Comment{
		Text:     req.Text,
		AuthorID: author.ID,
		ReviewID: reviewID,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, apperrors.Internal(err)
	}

	created, err := s.commentRepo.GetByID(comment.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return dto.FromModelToCommentResponse(created), nil
}

// GetReviewComments lists a review's comments oldest first.
func (s *commentService) GetReviewComments(reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error) {
	if _, err := s.reviewRepo.GetByID(reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("review", "review not found")
		}
		return nil, apperrors.Internal(err)
	}

	comments, total, err := s.commentRepo.GetByReview(reviewID, page, pageSize)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	responses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, *dto.FromModelToCommentResponse(&comments[i]))
	}

	return dto.NewPaginatedCommentResponse(responses, int(total), page, pageSize), nil
}

func (s *commentService) UpdateComment(actor *models.User, commentID int64, req *dto.UpdateCommentDTO) (*dto.CommentResponse, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("comment", "comment not found")
		}
		return nil, apperrors.Internal(err)
	}

	if !canModerate(actor, comment.AuthorID) {
		return nil, apperrors.Forbidden("you cannot edit someone else's comment")
	}

	comment.Text = req.Text
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, apperrors.Internal(err)
	}

	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) DeleteComment(actor *models.User, commentID int64) error {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("comment", "comment not found")
		}
		return apperrors.Internal(err)
	}

	if !canModerate(actor, comment.AuthorID) {
		return apperrors.Forbidden("you cannot delete someone else's comment")
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
