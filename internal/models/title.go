package models

import "time"

type Title struct {
	ID          int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name" gorm:"size:256;not null"`
	Year        int        `json:"year" gorm:"not null"` // validated against the current-year ceiling before writes
	Description *string    `json:"description,omitempty" gorm:"type:text"`
	CategoryID  *int64     `json:"category_id,omitempty" gorm:"index"`
	CreatedAt   *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`

	// Associations. Deleting a category clears the reference, the title survives.
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genres,omitempty" gorm:"many2many:title_genres;"`
}

func (Title) TableName() string {
	return "titles"
}
