package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sketchtalk/sketchtalk/internal/model"
	"github.com/sketchtalk/sketchtalk/internal/repository"
	"github.com/sketchtalk/sketchtalk/pkg/apperror"
)

type fakeImageRepo struct {
	nextID  uint
	images  map[uint]*model.Image
	orphans []uint
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: make(map[uint]*model.Image)}
}

func (r *fakeImageRepo) Create(ctx context.Context, image *model.Image) error {
	r.nextID++
	image.ID = r.nextID
	r.images[image.ID] = image
	return nil
}

func (r *fakeImageRepo) FindByID(ctx context.Context, id uint) (*model.Image, error) {
	image, ok := r.images[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return image, nil
}

func (r *fakeImageRepo) FindOrphans(ctx context.Context, olderThan time.Time) ([]*model.Image, error) {
	var result []*model.Image
	for _, id := range r.orphans {
		if image, ok := r.images[id]; ok && image.UploadedDate.Before(olderThan) {
			result = append(result, image)
		}
	}
	return result, nil
}

func (r *fakeImageRepo) Delete(ctx context.Context, id uint) error {
	delete(r.images, id)
	return nil
}

var _ repository.ImageRepository = (*fakeImageRepo)(nil)

func TestGetImage(t *testing.T) {
	repo := newFakeImageRepo()
	svc := NewImageService(repo, &fakeImageStorage{})
	ctx := context.Background()

	stored := &model.Image{URL: "https://img.test/sketches/1-a.png", FileName: "a.png"}
	require.NoError(t, repo.Create(ctx, stored))

	image, err := svc.GetImage(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.URL, image.URL)

	_, err = svc.GetImage(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCleanupOrphanImages(t *testing.T) {
	repo := newFakeImageRepo()
	store := &fakeImageStorage{}
	svc := NewImageService(repo, store)
	ctx := context.Background()

	stale := &model.Image{URL: "https://img.test/sketches/1-old.png", UploadedDate: time.Now().Add(-48 * time.Hour)}
	fresh := &model.Image{URL: "https://img.test/sketches/2-new.png", UploadedDate: time.Now()}
	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, repo.Create(ctx, fresh))
	repo.orphans = []uint{stale.ID, fresh.ID}

	require.NoError(t, svc.CleanupOrphanImages(ctx))

	// Only the stale orphan is purged; recent uploads get a grace period.
	_, err := repo.FindByID(ctx, stale.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.FindByID(ctx, fresh.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{stale.URL}, store.deleted)
}
