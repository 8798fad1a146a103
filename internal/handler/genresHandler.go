package handler

import (
	"net/http"

	"yamdb/internal/dto"
	"yamdb/internal/middleware"
	"yamdb/internal/service"
	"yamdb/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type GenreHandler struct {
	genreService service.GenreService
}

func NewGenreHandler(genreService service.GenreService) *GenreHandler {
	return &GenreHandler{
		genreService: genreService,
	}
}

// RegisterRoutes registers genre routes; same split as categories.
func (h *GenreHandler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.GET("/genres", h.List)

	admin := authed.Group("/genres", middleware.RequireAdmin())
	{
		admin.POST("", h.Create)
		admin.DELETE("/:slug", h.Delete)
	}
}

// List returns all genres with pagination
// GET /api/v1/genres
func (h *GenreHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	genres, err := h.genreService.ListGenres(page, pageSize)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, genres)
}

// Create adds a genre
// POST /api/v1/genres
func (h *GenreHandler) Create(c *gin.Context) {
	var req dto.CreateGenreDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	genre, err := h.genreService.CreateGenre(&req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, genre)
}

// Delete removes a genre by slug
// DELETE /api/v1/genres/:slug
func (h *GenreHandler) Delete(c *gin.Context) {
	if err := h.genreService.DeleteGenre(c.Param("slug")); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
