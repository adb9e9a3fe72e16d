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

type VariantAttributeCreate struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type ProductVariantCreate struct {
	Price      float64                  `json:"price"`
	Stock      int                      `json:"stock"`
	ImageID    *string                  `json:"imageId"`
	Attributes []VariantAttributeCreate `json:"attributes"`
}

type ProductCreate struct {
	Name        string                 `json:"name"`
	Description *string                `json:"description"`
	CategoryID  *uint                  `json:"categoryId"`
	ThumbnailID *string                `json:"thumbnailId"`
	MediaIDs    []string               `json:"mediaIds"`
	Variants    []ProductVariantCreate `json:"variants"`
}

// ProductUpdate carries only the optional top-level fields; nested media
// and variants are replaced wholesale when present.
type ProductUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CategoryID  *uint   `json:"categoryId"`
	ThumbnailID *string `json:"thumbnailId"`
}

func productQuery() *gorm.DB {
	return repositories.DB.
		Preload("Thumbnail").
		Preload("Category").
		Preload("Media.File").
		Preload("Variants.Attributes").
		Preload("Variants.Image")
}

// GET /api/products?skip=&limit=&name=&category_id=
func ListProducts(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)

	q := productQuery()
	if name := r.URL.Query().Get("name"); name != "" {
		q = q.Where("name ILIKE ?", "%"+name+"%")
	}
	if cid := r.URL.Query().Get("category_id"); cid != "" {
		q = q.Where("category_id = ?", cid)
	}

	var products []models.Product
	if err := q.Offset(skip).Limit(limit).Find(&products).Error; err != nil {
		internalError(w, "Failed to list products")
		return
	}
	utils.JSON(w, http.StatusOK, products)
}

// GET /api/products/category/{slug}
func ListProductsByCategorySlug(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)

	var products []models.Product
	err := productQuery().
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("categories.slug = ?", r.PathValue("slug")).
		Offset(skip).Limit(limit).
		Find(&products).Error
	if err != nil {
		internalError(w, "Failed to list products")
		return
	}
	utils.JSON(w, http.StatusOK, products)
}

// POST /api/products
func CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input ProductCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Name == "" {
		badRequest(w, "Invalid input")
		return
	}

	product := models.Product{
		Name:        input.Name,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		ThumbnailID: input.ThumbnailID,
	}

	err := repositories.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		for idx, fileID := range input.MediaIDs {
			media := models.ProductMedia{
				ProductID: product.ID,
				FileID:    fileID,
				Position:  idx,
			}
			if err := tx.Create(&media).Error; err != nil {
				return err
			}
		}
		for _, v := range input.Variants {
			variant := models.ProductVariant{
				ProductID: product.ID,
				Price:     v.Price,
				Stock:     v.Stock,
				ImageID:   v.ImageID,
			}
			if err := tx.Create(&variant).Error; err != nil {
				return err
			}
			for _, a := range v.Attributes {
				attr := models.VariantAttribute{
					VariantID: variant.ID,
					Name:      a.Name,
					Value:     a.Value,
					Unit:      a.Unit,
				}
				if err := tx.Create(&attr).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		internalError(w, "Failed to create product")
		return
	}

	created, ok := findProduct(w, strconv.Itoa(int(product.ID)))
	if !ok {
		return
	}
	utils.JSON(w, http.StatusCreated, created)
}

// GET /api/products/{product_id}
func GetProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := findProduct(w, r.PathValue("product_id"))
	if !ok {
		return
	}
	utils.JSON(w, http.StatusOK, product)
}

// PUT /api/products/{product_id}
func UpdateProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := findProduct(w, r.PathValue("product_id"))
	if !ok {
		return
	}

	var input ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		badRequest(w, "Invalid input")
		return
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.ThumbnailID != nil {
		product.ThumbnailID = input.ThumbnailID
	}

	if err := repositories.DB.Omit(clause.Associations).Save(product).Error; err != nil {
		internalError(w, "Failed to update product")
		return
	}
	utils.JSON(w, http.StatusOK, product)
}

// DELETE /api/products/{product_id}
func DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("product_id"))
	if err != nil {
		badRequest(w, "Invalid product id")
		return
	}

	// media/variants/attributes go with it via the FK cascade
	res := repositories.DB.Delete(&models.Product{}, id)
	if res.Error != nil {
		internalError(w, "Failed to delete product")
		return
	}
	if res.RowsAffected == 0 {
		notFound(w, "Product not found")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func findProduct(w http.ResponseWriter, idStr string) (*models.Product, bool) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		badRequest(w, "Invalid product id")
		return nil, false
	}

	var product models.Product
	err = productQuery().First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(w, "Product not found")
		return nil, false
	}
	if err != nil {
		internalError(w, "Failed to fetch product")
		return nil, false
	}
	return &product, true
}

func pagination(r *http.Request) (skip, limit int) {
	skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	if skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 100
	}
	return skip, limit
}
