package repository

import (
	"yamdb/internal/models"

	"gorm.io/gorm"
)

// TitleFilters narrows title listings. Zero values mean "no filter".
type TitleFilters struct {
	CategorySlug string
	GenreSlug    string
	Year         int
	Name         string
}

type TitleRepository interface {
	Create(title *models.Title) error
	GetByID(id int64) (*models.Title, error)
	List(filters TitleFilters, page, pageSize int) ([]models.Title, int64, error)
	Update(title *models.Title) error
	ReplaceGenres(title *models.Title, genres []models.Genre) error
	Delete(id int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) Create(title *models.Title) error {
	return r.db.Create(title).Error
}

func (r *titleRepository) GetByID(id int64) (*models.Title, error) {
	var title models.Title
	err := r.db.Where("id = ?", id).
		Preload("Category").
		Preload("Genres").
		First(&title).Error
	if err != nil {
		return nil, err
	}
	return &title, nil
}

func (r *titleRepository) List(filters TitleFilters, page, pageSize int) ([]models.Title, int64, error) {
	var titles []models.Title
	var total int64

	query := r.db.Model(&models.Title{})
	if filters.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", filters.CategorySlug)
	}
	if filters.GenreSlug != "" {
		query = query.Joins("JOIN title_genres ON title_genres.title_id = titles.id").
			Joins("JOIN genres ON genres.id = title_genres.genre_id").
			Where("genres.slug = ?", filters.GenreSlug)
	}
	if filters.Year != 0 {
		query = query.Where("titles.year = ?", filters.Year)
	}
	if filters.Name != "" {
		query = query.Where("titles.name ILIKE ?", "%"+filters.Name+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Category").
		Preload("Genres").
		Order("titles.id ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&titles).Error
	if err != nil {
		return nil, 0, err
	}

	return titles, total, nil
}

func (r *titleRepository) Update(title *models.Title) error {
	return r.db.Omit("Genres").Save(title).Error
}

// ReplaceGenres swaps the full genre set of a title.
func (r *titleRepository) ReplaceGenres(title *models.Title, genres []models.Genre) error {
	return r.db.Model(title).Association("Genres").Replace(genres)
}

// Delete removes the title with its reviews and, transitively, the comments
// on those reviews. Comments have no direct title link, so the cascade goes
// through reviews.
func (r *titleRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		reviewIDs := tx.Model(&models.Review{}).Select("id").Where("title_id = ?", id)

		if err := tx.Where("review_id IN (?)", reviewIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.TitleGenre{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Title{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
