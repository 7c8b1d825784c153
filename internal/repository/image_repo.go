package repository

import (
	"context"
	"time"

	"github.com/sketchtalk/sketchtalk/internal/model"
	"gorm.io/gorm"
)

type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	FindByID(ctx context.Context, id uint) (*model.Image, error)
	// FindOrphans lists images no post references that are older than the
	// cutoff, candidates for storage cleanup.
	FindOrphans(ctx context.Context, olderThan time.Time) ([]*model.Image, error)
	Delete(ctx context.Context, id uint) error
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *imageRepository) FindByID(ctx context.Context, id uint) (*model.Image, error) {
	var image model.Image
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) FindOrphans(ctx context.Context, olderThan time.Time) ([]*model.Image, error) {
	var images []*model.Image
	err := r.db.WithContext(ctx).
		Where("uploaded_date < ?", olderThan).
		Where("id NOT IN (?)", r.db.Model(&model.Post{}).Select("image_id")).
		Find(&images).Error
	return images, err
}

func (r *imageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Image{}, id).Error
}
