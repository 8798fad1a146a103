package repository

import (
	"yamdb/internal/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(review *models.Review) error
	Update(review *models.Review) error
	Delete(reviewID int64) error
	GetByID(reviewID int64) (*models.Review, error)
	GetByAuthorAndTitle(authorID string, titleID int64) (*models.Review, error)
	GetByTitle(titleID int64, page, pageSize int) ([]models.Review, int64, error)
	AverageScore(titleID int64) (float64, error)
	CountByTitle(titleID int64) (int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create a new review. The unique (author_id, title_id) index surfaces
// duplicate pairs as gorm.ErrDuplicatedKey even under concurrent writes.
func (r *reviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

// Update persists text/score changes; pub_date keeps its creation value.
func (r *reviewRepository) Update(review *models.Review) error {
	return r.db.Model(review).Select("text", "score").Updates(review).Error
}

// Delete removes the review and its comments in one transaction.
func (r *reviewRepository) Delete(reviewID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", reviewID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Review{}, reviewID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *reviewRepository) GetByID(reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.Where("id = ?", reviewID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByAuthorAndTitle retrieves a user's review for a specific title
func (r *reviewRepository) GetByAuthorAndTitle(authorID string, titleID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.Where("author_id = ? AND title_id = ?", authorID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByTitle retrieves all reviews for a title with pagination, oldest first.
func (r *reviewRepository) GetByTitle(titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// AverageScore calculates the average review score for a title
func (r *reviewRepository) AverageScore(titleID int64) (float64, error) {
	var avg struct {
		Average float64
	}

	err := r.db.Model(&models.Review{}).
		Select("COALESCE(AVG(score), 0) as average").
		Where("title_id = ?", titleID).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}

	return avg.Average, nil
}

func (r *reviewRepository) CountByTitle(titleID int64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Review{}).Where("title_id = ?", titleID).Count(&count).Error
	return count, err
}
