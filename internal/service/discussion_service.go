package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sketchtalk/sketchtalk/internal/dto"
	"github.com/sketchtalk/sketchtalk/internal/model"
	"github.com/sketchtalk/sketchtalk/internal/repository"
	"github.com/sketchtalk/sketchtalk/pkg/apperror"
	"github.com/sketchtalk/sketchtalk/pkg/storage"
	"gorm.io/gorm"
)

// ArchiveType reports which terminal state an archived post ended up in.
type ArchiveType string

const (
	ArchiveDeleted ArchiveType = "deleted"
	ArchiveHidden  ArchiveType = "hidden"
)

// NewImage is an uploaded drawing not yet persisted.
type NewImage struct {
	Reader   io.Reader
	FileName string
}

type DiscussionService interface {
	GetPost(ctx context.Context, postID uint) (*model.Post, error)
	GetPostResponse(ctx context.Context, postID uint) (*dto.PostResponse, error)
	CreateThread(ctx context.Context, userID uuid.UUID, img NewImage) (*dto.DiscussionThreadResponse, error)
	CreateReply(ctx context.Context, userID uuid.UUID, parentPostID uint, img NewImage) (*dto.PostResponse, error)
	UpdatePost(ctx context.Context, userID uuid.UUID, postID uint, img NewImage) (*dto.PostResponse, error)
	ArchivePost(ctx context.Context, userID uuid.UUID, postID uint) (ArchiveType, error)
	SetInappropriateFlag(ctx context.Context, userID uuid.UUID, postID uint, value bool) (*dto.PostResponse, error)
	GetPaginatedSummaries(ctx context.Context, sortType dto.SortType, opts *dto.PaginationOptions) (*dto.PaginatedThreadsResponse, error)
	GetPostReplies(ctx context.Context, postID uint, sortType dto.SortType, startAfterPostID *uint) ([]*model.Post, error)
	GetReplyTreeUnderPost(ctx context.Context, postID uint, sortType dto.SortType, opts *dto.PaginationOptions) (*dto.DiscussionTreeNode, error)
}

type discussionService struct {
	postRepo     repository.PostRepository
	userRepo     repository.UserRepository
	reactionRepo repository.ReactionRepository
	fileStorage  storage.ImageStorage
	redisClient  *redis.Client
	uploadFolder string
}

func NewDiscussionService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	reactionRepo repository.ReactionRepository,
	fileStorage storage.ImageStorage,
	redisClient *redis.Client,
) DiscussionService {
	uploadFolder := os.Getenv("CLOUDINARY_UPLOAD_FOLDER")
	if uploadFolder == "" {
		uploadFolder = "sketches"
	}

	return &discussionService{
		postRepo:     postRepo,
		userRepo:     userRepo,
		reactionRepo: reactionRepo,
		fileStorage:  fileStorage,
		redisClient:  redisClient,
		uploadFolder: uploadFolder,
	}
}

// GetPost fetches the post or fails with NotFound.
func (s *discussionService) GetPost(ctx context.Context, postID uint) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post with postId %d does not exist: %w", postID, apperror.ErrNotFound)
		}
		return nil, err
	}
	return post, nil
}

func (s *discussionService) GetPostResponse(ctx context.Context, postID uint) (*dto.PostResponse, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	count, _ := s.reactionRepo.CountByPost(ctx, post.ID)
	resp := s.mapToResponse(post, count)
	return &resp, nil
}

func (s *discussionService) CreateThread(ctx context.Context, userID uuid.UUID, img NewImage) (*dto.DiscussionThreadResponse, error) {
	if err := s.checkPostingCooldowns(ctx, userID); err != nil {
		return nil, err
	}

	creationFailed := true
	defer func() {
		if creationFailed {
			_ = ClearRateLimit(ctx, s.redisClient, userID, "global")
			_ = ClearRateLimit(ctx, s.redisClient, userID, "post")
		}
	}()

	image, err := s.uploadImage(ctx, userID, img)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		DiscussionID: uuid.NewString(),
		IsRootPost:   true,
		AuthorID:     userID,
		PostedDate:   time.Now(),
	}

	if err := s.postRepo.CreateWithImage(ctx, post, image); err != nil {
		return nil, err
	}
	creationFailed = false

	created, err := s.GetPost(ctx, post.ID)
	if err != nil {
		created = post
	}

	return &dto.DiscussionThreadResponse{
		DiscussionID: post.DiscussionID,
		RootPost:     s.mapToResponse(created, 0),
		CommentCount: 0,
	}, nil
}

func (s *discussionService) CreateReply(ctx context.Context, userID uuid.UUID, parentPostID uint, img NewImage) (*dto.PostResponse, error) {
	if err := s.checkPostingCooldowns(ctx, userID); err != nil {
		return nil, err
	}

	creationFailed := true
	defer func() {
		if creationFailed {
			_ = ClearRateLimit(ctx, s.redisClient, userID, "global")
			_ = ClearRateLimit(ctx, s.redisClient, userID, "post")
		}
	}()

	parent, err := s.GetPost(ctx, parentPostID)
	if err != nil {
		return nil, err
	}

	image, err := s.uploadImage(ctx, userID, img)
	if err != nil {
		return nil, err
	}

	reply := &model.Post{
		DiscussionID:  parent.DiscussionID,
		ParentPostID:  &parent.ID,
		ReplyTreePath: parent.ChildPathPrefix(),
		AuthorID:      userID,
		PostedDate:    time.Now(),
	}

	if err := s.postRepo.CreateWithImage(ctx, reply, image); err != nil {
		return nil, err
	}
	creationFailed = false

	created, err := s.GetPost(ctx, reply.ID)
	if err != nil {
		created = reply
	}

	resp := s.mapToResponse(created, 0)
	return &resp, nil
}

// UpdatePost swaps the post's image. Only the author may edit, and only
// while nothing downstream depends on the content.
func (s *discussionService) UpdatePost(ctx context.Context, userID uuid.UUID, postID uint, img NewImage) (*dto.PostResponse, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != userID {
		return nil, fmt.Errorf("only the author can edit a post: %w", apperror.ErrForbidden)
	}

	updatable, err := s.isUpdatable(ctx, post)
	if err != nil {
		return nil, err
	}
	if !updatable {
		return nil, fmt.Errorf("a post cannot be edited once it has replies or active reactions: %w", apperror.ErrUnprocessable)
	}

	image, err := s.uploadImage(ctx, userID, img)
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.UpdateImage(ctx, post, image); err != nil {
		return nil, err
	}

	return s.GetPostResponse(ctx, post.ID)
}

// ArchivePost moves an active post into one of the two terminal archive
// states. A post nothing references is deleted outright; a post with replies
// or reactions is only hidden, because descendant paths embed its id and the
// node must survive as a placeholder.
func (s *discussionService) ArchivePost(ctx context.Context, userID uuid.UUID, postID uint) (ArchiveType, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return "", err
	}

	if post.IsArchived() {
		return "", fmt.Errorf("post is already archived: %w", apperror.ErrUnprocessable)
	}

	if post.AuthorID != userID {
		requester, err := s.userRepo.FindByID(ctx, userID.String())
		if err != nil {
			return "", fmt.Errorf("requesting user not found: %w", apperror.ErrNotFound)
		}
		if !requester.HasAdminRole() {
			return "", fmt.Errorf("only the author or an admin can archive a post: %w", apperror.ErrForbidden)
		}
	}

	deleteable, err := s.isDeleteable(ctx, post)
	if err != nil {
		return "", err
	}

	var archiveType ArchiveType
	if deleteable {
		post.SetDeleted()
		archiveType = ArchiveDeleted
	} else {
		post.Hide()
		archiveType = ArchiveHidden
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return "", err
	}

	return archiveType, nil
}

// SetInappropriateFlag sets or clears the moderation flag. Anyone may raise
// it, only admins may clear it.
func (s *discussionService) SetInappropriateFlag(ctx context.Context, userID uuid.UUID, postID uint, value bool) (*dto.PostResponse, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !value {
		requester, err := s.userRepo.FindByID(ctx, userID.String())
		if err != nil {
			return nil, fmt.Errorf("requesting user not found: %w", apperror.ErrNotFound)
		}
		if !requester.HasAdminRole() {
			return nil, fmt.Errorf("only an admin can clear the inappropriate flag: %w", apperror.ErrForbidden)
		}
	}

	post.IsInappropriate = value
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return s.GetPostResponse(ctx, post.ID)
}

// GetPaginatedSummaries lists every discussion as its root post plus reply
// count, sorted and windowed in memory.
func (s *discussionService) GetPaginatedSummaries(ctx context.Context, sortType dto.SortType, opts *dto.PaginationOptions) (*dto.PaginatedThreadsResponse, error) {
	roots, err := s.postRepo.FindRootPosts(ctx)
	if err != nil {
		return nil, err
	}

	replyCounts, err := s.postRepo.CountRepliesByDiscussion(ctx)
	if err != nil {
		return nil, err
	}

	reactionCounts, err := s.reactionCountsFor(ctx, roots)
	if err != nil {
		return nil, err
	}

	threads := make([]dto.DiscussionThreadResponse, 0, len(roots))
	for _, root := range roots {
		threads = append(threads, dto.DiscussionThreadResponse{
			DiscussionID: root.DiscussionID,
			RootPost:     s.mapToResponse(root, reactionCounts[root.ID]),
			CommentCount: replyCounts[root.DiscussionID],
		})
	}

	switch sortType {
	case dto.SortComments:
		sort.SliceStable(threads, func(i, j int) bool {
			return threads[i].CommentCount > threads[j].CommentCount
		})
	case dto.SortReactions:
		sort.SliceStable(threads, func(i, j int) bool {
			return threads[i].RootPost.ReactionsCount > threads[j].RootPost.ReactionsCount
		})
	}
	// SortNew is the repository's natural order (newest root first).

	page := paginateSummaries(threads, opts)
	return &page, nil
}

// GetPostReplies returns the post's subtree flattened in path order with the
// root prepended, sibling-sorted and cut at the pagination watermark. The
// root is never subject to the start filter.
func (s *discussionService) GetPostReplies(ctx context.Context, postID uint, sortType dto.SortType, startAfterPostID *uint) ([]*model.Post, error) {
	root, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	replies, err := s.postRepo.FindPathOrderedSubtree(ctx, root)
	if err != nil {
		return nil, err
	}

	switch sortType {
	case dto.SortNew:
		replies = SortSiblingGroups(root, replies, siblingLess(sortType, nil))
	case dto.SortReactions:
		counts, err := s.reactionCountsFor(ctx, replies)
		if err != nil {
			return nil, err
		}
		replies = SortSiblingGroups(root, replies, siblingLess(sortType, counts))
	}

	if startAfterPostID != nil {
		replies = FilterRepliesAfter(replies, *startAfterPostID)
	}

	return append([]*model.Post{root}, replies...), nil
}

// GetReplyTreeUnderPost builds the nested reply tree rooted at postID,
// honoring the sibling sort and the start/limit pagination window.
func (s *discussionService) GetReplyTreeUnderPost(ctx context.Context, postID uint, sortType dto.SortType, opts *dto.PaginationOptions) (*dto.DiscussionTreeNode, error) {
	var startAfter *uint
	var limit *int
	if opts != nil {
		startAfter = opts.Start
		limit = opts.Limit
	}

	posts, err := s.GetPostReplies(ctx, postID, sortType, startAfter)
	if err != nil {
		return nil, err
	}

	reactionCounts, err := s.reactionCountsFor(ctx, posts)
	if err != nil {
		return nil, err
	}

	nodes := make([]*dto.DiscussionTreeNode, len(posts))
	for i, post := range posts {
		nodes[i] = &dto.DiscussionTreeNode{
			PostID:       post.ID,
			ParentPostID: post.ParentPostID,
			Post:         s.mapToResponse(post, reactionCounts[post.ID]),
		}
	}

	return BuildReplyTree(nodes, limit)
}

//// HELPERS ////

func (s *discussionService) checkPostingCooldowns(ctx context.Context, userID uuid.UUID) error {
	globalLimit := GetDurationFromEnv("RATE_LIMIT_GLOBAL", 5*time.Second)
	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, userID, "global", globalLimit)
	if err != nil {
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := GetRateLimitTTL(ctx, s.redisClient, userID, "global")
		return fmt.Errorf("you are doing that too fast, wait %.0f seconds: %w", ttl.Seconds(), apperror.ErrRateLimitExceeded)
	}

	postLimit := GetDurationFromEnv("RATE_LIMIT_POST", 15*time.Second)
	allowed, err = CheckAndSetRateLimit(ctx, s.redisClient, userID, "post", postLimit)
	if err != nil {
		_ = ClearRateLimit(ctx, s.redisClient, userID, "global")
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		_ = ClearRateLimit(ctx, s.redisClient, userID, "global")
		ttl, _ := GetRateLimitTTL(ctx, s.redisClient, userID, "post")
		return fmt.Errorf("you can only post every %.0f seconds, wait %.0f seconds: %w",
			postLimit.Seconds(), ttl.Seconds(), apperror.ErrRateLimitExceeded)
	}

	return nil
}

func (s *discussionService) uploadImage(ctx context.Context, userID uuid.UUID, img NewImage) (*model.Image, error) {
	if img.Reader == nil {
		return nil, fmt.Errorf("an image is required: %w", apperror.ErrBadRequest)
	}

	url, err := s.fileStorage.UploadImage(ctx, img.Reader, s.uploadFolder, img.FileName)
	if err != nil {
		return nil, err
	}

	return &model.Image{
		UploaderID: userID,
		URL:        url,
		FileName:   img.FileName,
	}, nil
}

// isUpdatable: editing a post that already has downstream engagement would
// be misleading.
func (s *discussionService) isUpdatable(ctx context.Context, post *model.Post) (bool, error) {
	if post.IsArchived() {
		return false, nil
	}
	return s.hasNoEngagement(ctx, post)
}

// isDeleteable: a post may only be fully deleted while nothing references
// it. Otherwise hiding keeps the tree intact.
func (s *discussionService) isDeleteable(ctx context.Context, post *model.Post) (bool, error) {
	return s.hasNoEngagement(ctx, post)
}

func (s *discussionService) hasNoEngagement(ctx context.Context, post *model.Post) (bool, error) {
	hasReplies, err := s.postRepo.HasReplies(ctx, post.ID)
	if err != nil {
		return false, err
	}
	if hasReplies {
		return false, nil
	}

	hasReactions, err := s.reactionRepo.HasActive(ctx, post.ID)
	if err != nil {
		return false, err
	}
	return !hasReactions, nil
}

func (s *discussionService) reactionCountsFor(ctx context.Context, posts []*model.Post) (map[uint]int64, error) {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return s.reactionRepo.CountByPosts(ctx, ids)
}

func (s *discussionService) mapToResponse(post *model.Post, reactionsCount int64) dto.PostResponse {
	resp := dto.PostResponse{
		PostID:       post.ID,
		DiscussionID: post.DiscussionID,
		IsRootPost:   post.IsRootPost,
		ParentPostID: post.ParentPostID,
		Author: dto.AuthorResponse{
			ID:       post.AuthorID.String(),
			Username: post.Author.Username,
		},
		PostedDate:      post.PostedDate.Format(time.RFC3339),
		IsDeleted:       post.IsDeleted,
		IsHidden:        post.IsHidden,
		IsInappropriate: post.IsInappropriate,
		ReactionsCount:  reactionsCount,
	}

	// Deleted posts keep their slot in the tree but their content is gone.
	if !post.IsDeleted {
		resp.ImageID = post.ImageID
		resp.ImageURL = post.Image.URL
	}

	return resp
}
