package repository

import (
	"context"

	"github.com/sketchtalk/sketchtalk/internal/model"
	"gorm.io/gorm"
)

type PostRepository interface {
	// CreateWithImage inserts the image row and the post referencing it in
	// one transaction, so a failed post insert never leaves a dangling image.
	CreateWithImage(ctx context.Context, post *model.Post, image *model.Image) error
	FindByID(ctx context.Context, id uint) (*model.Post, error)
	// FindPathOrderedSubtree returns every descendant of root (root itself
	// excluded) ordered by (reply_tree_path, post_id) ascending. Parents
	// always precede their descendants in the result.
	FindPathOrderedSubtree(ctx context.Context, root *model.Post) ([]*model.Post, error)
	FindRootPosts(ctx context.Context) ([]*model.Post, error)
	CountRepliesByDiscussion(ctx context.Context) (map[string]int64, error)
	HasReplies(ctx context.Context, postID uint) (bool, error)
	Update(ctx context.Context, post *model.Post) error
	// UpdateImage swaps the post's image inside a transaction that also
	// inserts the replacement image row.
	UpdateImage(ctx context.Context, post *model.Post, image *model.Image) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) CreateWithImage(ctx context.Context, post *model.Post, image *model.Image) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(image).Error; err != nil {
			return err
		}
		post.ImageID = image.ID
		return tx.Create(post).Error
	})
}

func (r *postRepository) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Author.Role").
		Preload("Image").
		Where("id = ?", id).
		First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindPathOrderedSubtree(ctx context.Context, root *model.Post) ([]*model.Post, error) {
	var posts []*model.Post

	query := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Image").
		Where("discussion_id = ?", root.DiscussionID)

	if root.IsRootPost {
		// The whole discussion minus the root itself.
		query = query.Where("id <> ?", root.ID)
	} else {
		// The path prefix ends in the separator, so post 1 never matches
		// descendants of post 12.
		query = query.Where("reply_tree_path LIKE ?", root.ChildPathPrefix()+"%")
	}

	err := query.Order("reply_tree_path ASC, id ASC").Find(&posts).Error
	return posts, err
}

func (r *postRepository) FindRootPosts(ctx context.Context) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Image").
		Where("is_root_post = ?", true).
		Order("posted_date DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountRepliesByDiscussion(ctx context.Context) (map[string]int64, error) {
	type row struct {
		DiscussionID string
		Count        int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Select("discussion_id, count(*) as count").
		Where("is_root_post = ?", false).
		Group("discussion_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.DiscussionID] = r.Count
	}
	return counts, nil
}

func (r *postRepository) HasReplies(ctx context.Context, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("parent_post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) UpdateImage(ctx context.Context, post *model.Post, image *model.Image) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(image).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).
			Where("id = ?", post.ID).
			Update("image_id", image.ID).Error
	})
}
