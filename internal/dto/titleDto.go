package dto

import "yamdb/internal/models"

// CreateTitleDTO for creating a title. Genres are referenced by slug;
// category may be omitted entirely.
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Genres      []string `json:"genre"`
}

// UpdateTitleDTO for partial title updates
type UpdateTitleDTO struct {
	Name        *string   `json:"name" binding:"omitempty,max=256"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genres      *[]string `json:"genre"`
}

// TitleResponse for returning title information. Rating is the average
// review score, absent until the first review lands.
type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Description string            `json:"description,omitempty"`
	Rating      *float64          `json:"rating,omitempty"`
	Category    *CategoryResponse `json:"category,omitempty"`
	Genres      []GenreResponse   `json:"genre"`
}

// FromModelToTitleResponse converts a Title model to TitleResponse DTO
func FromModelToTitleResponse(title *models.Title, rating *float64) *TitleResponse {
	resp := &TitleResponse{
		ID:     title.ID,
		Name:   title.Name,
		Year:   title.Year,
		Rating: rating,
		Genres: make([]GenreResponse, 0, len(title.Genres)),
	}
	if title.Description != nil {
		resp.Description = *title.Description
	}
	if title.Category != nil {
		resp.Category = FromModelToCategoryResponse(title.Category)
	}
	for i := range title.Genres {
		resp.Genres = append(resp.Genres, *FromModelToGenreResponse(&title.Genres[i]))
	}
	return resp
}

// PaginatedTitleResponse for returning paginated titles
type PaginatedTitleResponse struct {
	Data       []TitleResponse `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// NewPaginatedTitleResponse creates a paginated title response
func NewPaginatedTitleResponse(data []TitleResponse, total, page, pageSize int) *PaginatedTitleResponse {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return &PaginatedTitleResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
