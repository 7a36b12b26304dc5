package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/bookrental/internal/cache"
	"github.com/geocoder89/bookrental/internal/config"
	"github.com/geocoder89/bookrental/internal/domain/category"
	"github.com/gin-gonic/gin"
)

const categoriesCacheKey = "all"

type CategoryStore interface {
	Create(ctx context.Context, name string) (category.Category, error)
	List(ctx context.Context) ([]category.Category, error)
}

type CategoriesHandler struct {
	categories CategoryStore
	cache      *cache.Cache[[]category.Category]
}

func NewCategoriesHandler(categories CategoryStore, ttl time.Duration) *CategoriesHandler {
	return &CategoriesHandler{
		categories: categories,
		cache:      cache.New[[]category.Category](ttl),
	}
}

func (h *CategoriesHandler) ListCategories(ctx *gin.Context) {
	items, err := h.cache.GetOrLoad(categoriesCacheKey, func() ([]category.Category, error) {
		cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		return h.categories.List(cctx)
	})
	if err != nil {
		RespondInternal(ctx, "Could not list categories", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *CategoriesHandler) CreateCategory(ctx *gin.Context) {
	var req category.CreateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	c, err := h.categories.Create(cctx, req.Name)
	if err != nil {
		if errors.Is(err, category.ErrAlreadyExists) {
			RespondConflict(ctx, "Category already exists")
			return
		}
		RespondInternal(ctx, "Could not create category", err)
		return
	}

	h.cache.Delete(categoriesCacheKey)

	ctx.JSON(http.StatusCreated, c)
}
