package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sketchtalk/sketchtalk/internal/model"
	"github.com/sketchtalk/sketchtalk/internal/repository"
	"github.com/sketchtalk/sketchtalk/pkg/apperror"
	"gorm.io/gorm"
)

type ReactionService interface {
	React(ctx context.Context, userID uuid.UUID, postID uint, reactionType string) error
	Unreact(ctx context.Context, userID uuid.UUID, postID uint, reactionType string) error
	GetPostReactions(ctx context.Context, postID uint) (int64, error)
	HasUserReacted(ctx context.Context, userID uuid.UUID, postID uint, reactionType string) (bool, error)
}

type reactionService struct {
	reactionRepo repository.ReactionRepository
	postRepo     repository.PostRepository
	redisClient  *redis.Client
}

func NewReactionService(reactionRepo repository.ReactionRepository, postRepo repository.PostRepository, redisClient *redis.Client) ReactionService {
	return &reactionService{
		reactionRepo: reactionRepo,
		postRepo:     postRepo,
		redisClient:  redisClient,
	}
}

func (s *reactionService) React(ctx context.Context, userID uuid.UUID, postID uint, reactionType string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("post with postId %d does not exist: %w", postID, apperror.ErrNotFound)
		}
		return err
	}

	if post.IsDeleted {
		return fmt.Errorf("cannot react to a deleted post: %w", apperror.ErrUnprocessable)
	}

	reaction := &model.Reaction{
		UserID: userID,
		PostID: postID,
		Type:   reactionType,
	}
	if err := s.reactionRepo.Add(ctx, reaction); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("already reacted: %w", apperror.ErrUnprocessable)
		}
		return err
	}

	// Best-effort cache for fast membership checks.
	if s.redisClient != nil {
		_ = s.redisClient.SAdd(ctx, reactionCacheKey(postID), cacheMember(userID, reactionType)).Err()
	}

	return nil
}

func (s *reactionService) Unreact(ctx context.Context, userID uuid.UUID, postID uint, reactionType string) error {
	if err := s.reactionRepo.Remove(ctx, userID, postID, reactionType); err != nil {
		return err
	}

	if s.redisClient != nil {
		_ = s.redisClient.SRem(ctx, reactionCacheKey(postID), cacheMember(userID, reactionType)).Err()
	}

	return nil
}

func (s *reactionService) GetPostReactions(ctx context.Context, postID uint) (int64, error) {
	return s.reactionRepo.CountByPost(ctx, postID)
}

func (s *reactionService) HasUserReacted(ctx context.Context, userID uuid.UUID, postID uint, reactionType string) (bool, error) {
	if s.redisClient != nil {
		isMember, err := s.redisClient.SIsMember(ctx, reactionCacheKey(postID), cacheMember(userID, reactionType)).Result()
		if err == nil && isMember {
			return true, nil
		}
	}

	return s.reactionRepo.Exists(ctx, userID, postID, reactionType)
}

func reactionCacheKey(postID uint) string {
	return fmt.Sprintf("post_reactions:%d", postID)
}

func cacheMember(userID uuid.UUID, reactionType string) string {
	return fmt.Sprintf("%s:%s", userID.String(), reactionType)
}
