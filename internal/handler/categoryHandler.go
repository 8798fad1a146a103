package handler

import (
	"net/http"

	"yamdb/internal/dto"
	"yamdb/internal/middleware"
	"yamdb/internal/service"
	"yamdb/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryService service.CategoryService
}

func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// RegisterRoutes registers category routes. Listing is public; writes are
// admin only and expect the authed parent group.
func (h *CategoryHandler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.GET("/categories", h.List)

	admin := authed.Group("/categories", middleware.RequireAdmin())
	{
		admin.POST("", h.Create)
		admin.DELETE("/:slug", h.Delete)
	}
}

// List returns all categories with pagination
// GET /api/v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	categories, err := h.categoryService.ListCategories(page, pageSize)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// Create adds a category
// POST /api/v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.categoryService.CreateCategory(&req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// Delete removes a category by slug; its titles survive with the category
// reference cleared
// DELETE /api/v1/categories/:slug
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.DeleteCategory(c.Param("slug")); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
