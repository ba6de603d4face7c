package handler

import (
	"net/http"

	"procurement/internal/middleware"
	"procurement/internal/service"
	"procurement/pkg/api"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryService service.CategoryService
	auth            *middleware.AuthMiddleware
}

func NewCategoryHandler(categoryService service.CategoryService, auth *middleware.AuthMiddleware) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auth: auth}
}

func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categorie", h.auth.RequireAuth())
	{
		categories.GET("", h.ListCategories)
		categories.POST("", middleware.RequireRole(api.RoleManager), h.CreateCategory)
		categories.PUT("/:id", middleware.RequireRole(api.RoleManager), h.UpdateCategory)
		categories.DELETE("/:id", middleware.RequireRole(api.RoleManager), h.DeleteCategory)
	}
}

// ListCategories returns the whole catalog.
// @Summary      List categories
// @Tags         categories
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]api.Category}
// @Router       /categorie [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// @Summary      Create category
// @Tags         categories
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      api.CategoryInput  true  "Category"
// @Success      201      {object}  response.Response{data=api.Category}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /categorie [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req api.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), a, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

// @Summary      Update category
// @Tags         categories
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Category ID"
// @Param        payload  body      api.CategoryInput  true  "Category"
// @Success      200      {object}  response.Response{data=api.Category}
// @Failure      404      {object}  response.Response
// @Router       /categorie/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req api.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), a, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, category))
}

// DeleteCategory fails with 409 while requests still reference the category.
// @Summary      Delete category
// @Tags         categories
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /categorie/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.categoryService.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Category deleted"}))
}
