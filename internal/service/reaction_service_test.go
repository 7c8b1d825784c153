package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchtalk/sketchtalk/internal/model"
	"github.com/sketchtalk/sketchtalk/pkg/apperror"
)

func newReactionFixture(t *testing.T) (ReactionService, *discussionFixture, *model.Post) {
	t.Helper()
	f := newDiscussionFixture(t)
	root := f.seedThread(t)
	return NewReactionService(f.reactions, f.postRepo, nil), f, root
}

func TestReact(t *testing.T) {
	svc, f, root := newReactionFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.React(ctx, f.member, root.ID, "heart"))

	count, err := svc.GetPostReactions(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	reacted, err := svc.HasUserReacted(ctx, f.member, root.ID, "heart")
	require.NoError(t, err)
	assert.True(t, reacted)
}

func TestReact_Duplicate(t *testing.T) {
	svc, f, root := newReactionFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.React(ctx, f.member, root.ID, "laugh"))
	err := svc.React(ctx, f.member, root.ID, "laugh")
	assert.ErrorIs(t, err, apperror.ErrUnprocessable)
}

func TestReact_DistinctTypesAllowed(t *testing.T) {
	svc, f, root := newReactionFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.React(ctx, f.member, root.ID, "heart"))
	require.NoError(t, svc.React(ctx, f.member, root.ID, "wow"))

	count, err := svc.GetPostReactions(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestReact_MissingPost(t *testing.T) {
	svc, f, _ := newReactionFixture(t)

	err := svc.React(context.Background(), f.member, 404, "heart")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestReact_DeletedPost(t *testing.T) {
	svc, f, root := newReactionFixture(t)
	ctx := context.Background()

	_, err := f.svc.ArchivePost(ctx, f.author, root.ID)
	require.NoError(t, err)

	err = svc.React(ctx, f.member, root.ID, "heart")
	assert.ErrorIs(t, err, apperror.ErrUnprocessable)
}

func TestReact_HiddenPostStillAccepts(t *testing.T) {
	svc, f, root := newReactionFixture(t)
	ctx := context.Background()

	// A reply forces the archive into the hidden state. Hidden posts stay
	// reactable, only deleted ones do not.
	f.seedReply(t, root, time.Now())
	archiveType, err := f.svc.ArchivePost(ctx, f.author, root.ID)
	require.NoError(t, err)
	require.Equal(t, ArchiveHidden, archiveType)

	assert.NoError(t, svc.React(ctx, f.member, root.ID, "sad"))
}

func TestUnreact(t *testing.T) {
	svc, f, root := newReactionFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.React(ctx, f.member, root.ID, "heart"))
	require.NoError(t, svc.Unreact(ctx, f.member, root.ID, "heart"))

	reacted, err := svc.HasUserReacted(ctx, f.member, root.ID, "heart")
	require.NoError(t, err)
	assert.False(t, reacted)

	count, err := svc.GetPostReactions(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestUnreact_WithoutReaction(t *testing.T) {
	svc, f, root := newReactionFixture(t)

	// Removing a reaction that never existed is a no-op.
	assert.NoError(t, svc.Unreact(context.Background(), f.member, root.ID, "heart"))
}
