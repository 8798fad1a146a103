package repository

import (
	"yamdb/internal/models"

	"gorm.io/gorm"
)

type GenreRepository interface {
	Create(genre *models.Genre) error
	FindBySlug(slug string) (*models.Genre, error)
	FindBySlugs(slugs []string) ([]models.Genre, error)
	List(page, pageSize int) ([]models.Genre, int64, error)
	Delete(slug string) error
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(genre *models.Genre) error {
	return r.db.Create(genre).Error
}

func (r *genreRepository) FindBySlug(slug string) (*models.Genre, error) {
	var genre models.Genre
	if err := r.db.Where("slug = ?", slug).First(&genre).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

// FindBySlugs resolves a set of slugs; the caller decides what a partial
// match means (title creation treats it as a validation failure).
func (r *genreRepository) FindBySlugs(slugs []string) ([]models.Genre, error) {
	var genres []models.Genre
	if len(slugs) == 0 {
		return genres, nil
	}
	if err := r.db.Where("slug IN ?", slugs).Find(&genres).Error; err != nil {
		return nil, err
	}
	return genres, nil
}

func (r *genreRepository) List(page, pageSize int) ([]models.Genre, int64, error) {
	var genres []models.Genre
	var total int64

	if err := r.db.Model(&models.Genre{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.Order("slug ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&genres).Error
	if err != nil {
		return nil, 0, err
	}

	return genres, total, nil
}

// Delete drops the genre and its join rows. Titles keep their other genres.
func (r *genreRepository) Delete(slug string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var genre models.Genre
		if err := tx.Where("slug = ?", slug).First(&genre).Error; err != nil {
			return err
		}

		if err := tx.Where("genre_id = ?", genre.ID).Delete(&models.TitleGenre{}).Error; err != nil {
			return err
		}

		return tx.Delete(&genre).Error
	})
}
