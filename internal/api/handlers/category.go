package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/caohoangphucs/giadungtinthanh/internal/models"
	"github.com/caohoangphucs/giadungtinthanh/internal/repositories"
	"github.com/caohoangphucs/giadungtinthanh/internal/utils"
)

type CategoryCreate struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	ThumbnailID *string `json:"thumbnailId"`
}

// CategoryUpdate carries only the fields that may change; nil means
// "leave as is".
type CategoryUpdate struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	ThumbnailID *string `json:"thumbnailId"`
}

// GET /api/categories
func ListCategories(w http.ResponseWriter, r *http.Request) {
	var categories []models.Category
	if err := repositories.DB.Preload("Thumbnail").Find(&categories).Error; err != nil {
		internalError(w, "Failed to list categories")
		return
	}
	utils.JSON(w, http.StatusOK, categories)
}

// POST /api/categories
func CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input CategoryCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Name == "" || input.Slug == "" {
		badRequest(w, "Invalid input")
		return
	}

	var existing models.Category
	if err := repositories.DB.Where("slug = ?", input.Slug).First(&existing).Error; err == nil {
		badRequest(w, "Slug already exists")
		return
	}

	category := models.Category{
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		ThumbnailID: input.ThumbnailID,
	}
	if err := repositories.DB.Create(&category).Error; err != nil {
		internalError(w, "Failed to create category")
		return
	}
	utils.JSON(w, http.StatusCreated, category)
}

// GET /api/categories/{category_id}
func GetCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := findCategory(w, r.PathValue("category_id"))
	if !ok {
		return
	}
	utils.JSON(w, http.StatusOK, category)
}

// GET /api/categories/slug/{slug}
func GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	err := repositories.DB.Preload("Thumbnail").
		Where("slug = ?", r.PathValue("slug")).
		First(&category).Error
	if err != nil {
		notFound(w, "Category not found")
		return
	}
	utils.JSON(w, http.StatusOK, category)
}

// PUT /api/categories/{category_id}
func UpdateCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := findCategory(w, r.PathValue("category_id"))
	if !ok {
		return
	}

	var input CategoryUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		badRequest(w, "Invalid input")
		return
	}

	if input.Name != nil {
		category.Name = *input.Name
	}
	if input.Slug != nil {
		category.Slug = *input.Slug
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if input.ThumbnailID != nil {
		category.ThumbnailID = input.ThumbnailID
	}

	// Omit keeps Save from upserting the preloaded thumbnail row
	if err := repositories.DB.Omit(clause.Associations).Save(category).Error; err != nil {
		internalError(w, "Failed to update category")
		return
	}
	utils.JSON(w, http.StatusOK, category)
}

// DELETE /api/categories/{category_id}
func DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("category_id"))
	if err != nil {
		badRequest(w, "Invalid category id")
		return
	}

	res := repositories.DB.Delete(&models.Category{}, id)
	if res.Error != nil {
		internalError(w, "Failed to delete category")
		return
	}
	if res.RowsAffected == 0 {
		notFound(w, "Category not found")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}

func findCategory(w http.ResponseWriter, idStr string) (*models.Category, bool) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		badRequest(w, "Invalid category id")
		return nil, false
	}

	var category models.Category
	err = repositories.DB.Preload("Thumbnail").First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(w, "Category not found")
		return nil, false
	}
	if err != nil {
		internalError(w, "Failed to fetch category")
		return nil, false
	}
	return &category, true
}
