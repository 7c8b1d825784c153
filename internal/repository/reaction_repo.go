package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sketchtalk/sketchtalk/internal/model"
	"gorm.io/gorm"
)

type ReactionRepository interface {
	Add(ctx context.Context, reaction *model.Reaction) error
	Remove(ctx context.Context, userID uuid.UUID, postID uint, reactionType string) error
	Exists(ctx context.Context, userID uuid.UUID, postID uint, reactionType string) (bool, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	HasActive(ctx context.Context, postID uint) (bool, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Add(ctx context.Context, reaction *model.Reaction) error {
	// The unique index on (user_id, post_id, type) rejects duplicates.
	return translateDuplicateKey(r.db.WithContext(ctx).Create(reaction).Error)
}

// translateDuplicateKey normalizes the driver's unique-violation error into
// gorm.ErrDuplicatedKey, so callers can match the sentinel even on sessions
// without error translation enabled.
func translateDuplicateKey(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pgErr.Message, gorm.ErrDuplicatedKey)
	}
	return err
}

func (r *reactionRepository) Remove(ctx context.Context, userID uuid.UUID, postID uint, reactionType string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ? AND type = ?", userID, postID, reactionType).
		Delete(&model.Reaction{}).Error
}

func (r *reactionRepository) Exists(ctx context.Context, userID uuid.UUID, postID uint, reactionType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Where("user_id = ? AND post_id = ? AND type = ?", userID, postID, reactionType).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *reactionRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (r *reactionRepository) CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	type row struct {
		PostID uint
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Select("post_id, count(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.PostID] = r.Count
	}
	return counts, nil
}

func (r *reactionRepository) HasActive(ctx context.Context, postID uint) (bool, error) {
	count, err := r.CountByPost(ctx, postID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
