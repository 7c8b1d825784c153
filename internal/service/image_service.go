package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sketchtalk/sketchtalk/internal/model"
	"github.com/sketchtalk/sketchtalk/internal/repository"
	"github.com/sketchtalk/sketchtalk/pkg/apperror"
	"github.com/sketchtalk/sketchtalk/pkg/storage"
	"gorm.io/gorm"
)

type ImageService interface {
	GetImage(ctx context.Context, imageID uint) (*model.Image, error)
	// CleanupOrphanImages removes stored images that no post ever ended up
	// referencing (upload succeeded but the post insert failed or was
	// abandoned).
	CleanupOrphanImages(ctx context.Context) error
}

type imageService struct {
	imageRepo   repository.ImageRepository
	fileStorage storage.ImageStorage
}

func NewImageService(imageRepo repository.ImageRepository, fileStorage storage.ImageStorage) ImageService {
	return &imageService{
		imageRepo:   imageRepo,
		fileStorage: fileStorage,
	}
}

func (s *imageService) GetImage(ctx context.Context, imageID uint) (*model.Image, error) {
	image, err := s.imageRepo.FindByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("image %d does not exist: %w", imageID, apperror.ErrNotFound)
		}
		return nil, err
	}
	return image, nil
}

func (s *imageService) CleanupOrphanImages(ctx context.Context) error {
	cutoff := time.Now().Add(-24 * time.Hour)
	orphans, err := s.imageRepo.FindOrphans(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, image := range orphans {
		if err := s.fileStorage.DeleteImage(ctx, image.URL); err != nil {
			log.Printf("failed to delete orphan image %d from storage: %v", image.ID, err)
			continue
		}
		if err := s.imageRepo.Delete(ctx, image.ID); err != nil {
			return err
		}
	}

	return nil
}
