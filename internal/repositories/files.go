package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/caohoangphucs/giadungtinthanh/internal/models"
	"github.com/caohoangphucs/giadungtinthanh/internal/upload"
)

// FileRepository persists file metadata rows through gorm.
type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts exactly one row. A duplicate id means a concurrent
// completion already committed; the primary-key constraint turns that race
// into upload.ErrConflict instead of a silent double insert.
func (r *FileRepository) Create(ctx context.Context, f *models.File) error {
	err := r.db.WithContext(ctx).Create(f).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return upload.ErrConflict
	}
	return err
}

func (r *FileRepository) Get(ctx context.Context, id string) (*models.File, error) {
	var f models.File
	err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, upload.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.File{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return upload.ErrNotFound
	}
	return nil
}
