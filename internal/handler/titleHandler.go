package handler

import (
	"net/http"
	"strconv"

	"yamdb/internal/dto"
	"yamdb/internal/middleware"
	"yamdb/internal/repository"
	"yamdb/internal/service"
	"yamdb/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	titleService service.TitleService
}

func NewTitleHandler(titleService service.TitleService) *TitleHandler {
	return &TitleHandler{
		titleService: titleService,
	}
}

// RegisterRoutes registers title routes. Reads are public; writes are
// admin only.
func (h *TitleHandler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.GET("/titles", h.List)
	public.GET("/titles/:title_id", h.Get)

	admin := authed.Group("/titles", middleware.RequireAdmin())
	{
		admin.POST("", h.Create)
		admin.PATCH("/:title_id", h.Update)
		admin.DELETE("/:title_id", h.Delete)
	}
}

// List returns titles with optional category/genre/year/name filters
// GET /api/v1/titles
func (h *TitleHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	filters := repository.TitleFilters{
		CategorySlug: c.Query("category"),
		GenreSlug:    c.Query("genre"),
		Name:         c.Query("name"),
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year filter"})
			return
		}
		filters.Year = year
	}

	titles, err := h.titleService.ListTitles(filters, page, pageSize)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, titles)
}

// Get returns one title with its average review score
// GET /api/v1/titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	titleID, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}

	title, err := h.titleService.GetTitle(titleID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, title)
}

// Create adds a title; the release year must not be in the future
// POST /api/v1/titles
func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.CreateTitleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title, err := h.titleService.CreateTitle(&req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, title)
}

// Update patches a title
// PATCH /api/v1/titles/:title_id
func (h *TitleHandler) Update(c *gin.Context) {
	titleID, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}

	var req dto.UpdateTitleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title, err := h.titleService.UpdateTitle(titleID, &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, title)
}

// Delete removes a title, its reviews, and transitively their comments
// DELETE /api/v1/titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	titleID, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}

	if err := h.titleService.DeleteTitle(titleID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
