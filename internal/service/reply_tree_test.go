package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchtalk/sketchtalk/internal/dto"
	"github.com/sketchtalk/sketchtalk/internal/model"
)

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }

func makeNode(postID uint, parentPostID *uint) *dto.DiscussionTreeNode {
	return &dto.DiscussionTreeNode{
		PostID:       postID,
		ParentPostID: parentPostID,
	}
}

func countNodes(node *dto.DiscussionTreeNode) int {
	if node == nil {
		return 0
	}
	count := 1
	for _, child := range node.Children {
		count += countNodes(child)
	}
	return count
}

func findNode(node *dto.DiscussionTreeNode, postID uint) *dto.DiscussionTreeNode {
	if node == nil {
		return nil
	}
	if node.PostID == postID {
		return node
	}
	for _, child := range node.Children {
		if found := findNode(child, postID); found != nil {
			return found
		}
	}
	return nil
}

// Root 1 with replies 2 and 4 (2 has child 3), parents ahead of their
// descendants as the builder requires.
func chainNodes() []*dto.DiscussionTreeNode {
	return []*dto.DiscussionTreeNode{
		makeNode(1, nil),
		makeNode(2, uintPtr(1)),
		makeNode(3, uintPtr(2)),
		makeNode(4, uintPtr(1)),
	}
}

func TestBuildReplyTree_NoLimit(t *testing.T) {
	root, err := BuildReplyTree(chainNodes(), nil)
	require.NoError(t, err)
	require.NotNil(t, root)

	assert.Equal(t, uint(1), root.PostID)
	assert.Equal(t, 4, countNodes(root))
	assert.False(t, root.HasMore)

	require.Len(t, root.Children, 2)
	assert.Equal(t, uint(2), root.Children[0].PostID)
	assert.Equal(t, uint(4), root.Children[1].PostID)

	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, uint(3), root.Children[0].Children[0].PostID)
}

func TestBuildReplyTree_ChildrenCarryParentID(t *testing.T) {
	root, err := BuildReplyTree(chainNodes(), nil)
	require.NoError(t, err)

	var check func(node *dto.DiscussionTreeNode)
	check = func(node *dto.DiscussionTreeNode) {
		for _, child := range node.Children {
			require.NotNil(t, child.ParentPostID)
			assert.Equal(t, node.PostID, *child.ParentPostID)
			check(child)
		}
	}
	check(root)
}

func TestBuildReplyTree_LimitCutsDeepChain(t *testing.T) {
	// P1 <- P2 <- P3: with limit 2 P3 falls over the limit, so its
	// exclusion flags P2, not P1.
	nodes := []*dto.DiscussionTreeNode{
		makeNode(1, nil),
		makeNode(2, uintPtr(1)),
		makeNode(3, uintPtr(2)),
	}

	root, err := BuildReplyTree(nodes, intPtr(2))
	require.NoError(t, err)

	assert.Equal(t, 2, countNodes(root))
	require.Len(t, root.Children, 1)
	assert.False(t, root.HasMore)

	p2 := root.Children[0]
	assert.Equal(t, uint(2), p2.PostID)
	assert.True(t, p2.HasMore)
	assert.Empty(t, p2.Children)
}

func TestBuildReplyTree_LimitZeroKeepsRoot(t *testing.T) {
	root, err := BuildReplyTree(chainNodes(), intPtr(0))
	require.NoError(t, err)
	require.NotNil(t, root)

	assert.Equal(t, uint(1), root.PostID)
	assert.Empty(t, root.Children)
	assert.True(t, root.HasMore)
}

func TestBuildReplyTree_LimitZeroNoReplies(t *testing.T) {
	root, err := BuildReplyTree([]*dto.DiscussionTreeNode{makeNode(1, nil)}, intPtr(0))
	require.NoError(t, err)

	assert.Empty(t, root.Children)
	assert.False(t, root.HasMore)
}

func TestBuildReplyTree_LimitOne(t *testing.T) {
	root, err := BuildReplyTree(chainNodes(), intPtr(1))
	require.NoError(t, err)

	assert.Equal(t, 1, countNodes(root))
	assert.True(t, root.HasMore)
}

func TestBuildReplyTree_HasMoreDoesNotPropagate(t *testing.T) {
	// Limit 3 keeps 1, 2 and 3; post 4 (child of the root) is excluded.
	root, err := BuildReplyTree(chainNodes(), intPtr(3))
	require.NoError(t, err)

	assert.Equal(t, 3, countNodes(root))
	assert.True(t, root.HasMore)
	assert.False(t, findNode(root, 2).HasMore)
	assert.False(t, findNode(root, 3).HasMore)
}

func TestBuildReplyTree_ExcludedParentDropsDescendants(t *testing.T) {
	// Post 3's parent 2 is over the limit, so 3 has nowhere to attach and
	// must be absent from the tree entirely.
	nodes := []*dto.DiscussionTreeNode{
		makeNode(1, nil),
		makeNode(5, uintPtr(1)),
		makeNode(2, uintPtr(1)),
		makeNode(3, uintPtr(2)),
	}

	root, err := BuildReplyTree(nodes, intPtr(2))
	require.NoError(t, err)

	assert.Equal(t, 2, countNodes(root))
	assert.Nil(t, findNode(root, 3))
	assert.True(t, root.HasMore)
}

func TestBuildReplyTree_EmptyInput(t *testing.T) {
	_, err := BuildReplyTree(nil, nil)
	assert.Error(t, err)
}

func TestFilterRepliesAfter_Watermark(t *testing.T) {
	posts := []*model.Post{{ID: 2}, {ID: 3}, {ID: 4}}

	filtered := FilterRepliesAfter(posts, 3)
	require.Len(t, filtered, 1)
	assert.Equal(t, uint(4), filtered[0].ID)
}

func TestFilterRepliesAfter_LastPost(t *testing.T) {
	posts := []*model.Post{{ID: 2}, {ID: 3}}

	filtered := FilterRepliesAfter(posts, 3)
	assert.Empty(t, filtered)
}

func TestFilterRepliesAfter_AbsentWatermark(t *testing.T) {
	posts := []*model.Post{{ID: 2}, {ID: 3}}

	// A stale marker degrades to the unfiltered list.
	filtered := FilterRepliesAfter(posts, 99)
	assert.Equal(t, posts, filtered)
}

func TestFilterRepliesAfter_Deterministic(t *testing.T) {
	posts := []*model.Post{{ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}

	first := FilterRepliesAfter(posts, 3)
	second := FilterRepliesAfter(posts, 3)
	assert.Equal(t, first, second)
}

func TestSortSiblingGroups_NewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	root := &model.Post{ID: 1, IsRootPost: true}
	posts := []*model.Post{
		{ID: 2, ParentPostID: uintPtr(1), ReplyTreePath: "1/", PostedDate: base},
		{ID: 3, ParentPostID: uintPtr(2), ReplyTreePath: "1/2/", PostedDate: base.Add(3 * time.Hour)},
		{ID: 4, ParentPostID: uintPtr(1), ReplyTreePath: "1/", PostedDate: base.Add(time.Hour)},
	}

	sorted := SortSiblingGroups(root, posts, siblingLess(dto.SortNew, nil))

	require.Len(t, sorted, 3)
	// Post 4 is newer than post 2, so it leads; post 3 still follows its
	// parent 2.
	assert.Equal(t, uint(4), sorted[0].ID)
	assert.Equal(t, uint(2), sorted[1].ID)
	assert.Equal(t, uint(3), sorted[2].ID)
}

func TestSortSiblingGroups_ByReactions(t *testing.T) {
	root := &model.Post{ID: 1, IsRootPost: true}
	posts := []*model.Post{
		{ID: 2, ParentPostID: uintPtr(1), ReplyTreePath: "1/"},
		{ID: 4, ParentPostID: uintPtr(1), ReplyTreePath: "1/"},
		{ID: 6, ParentPostID: uintPtr(1), ReplyTreePath: "1/"},
	}
	counts := map[uint]int64{2: 1, 4: 5, 6: 3}

	sorted := SortSiblingGroups(root, posts, siblingLess(dto.SortReactions, counts))

	assert.Equal(t, uint(4), sorted[0].ID)
	assert.Equal(t, uint(6), sorted[1].ID)
	assert.Equal(t, uint(2), sorted[2].ID)
}

func TestSortSiblingGroups_NilComparatorKeepsOrder(t *testing.T) {
	root := &model.Post{ID: 1, IsRootPost: true}
	posts := []*model.Post{
		{ID: 2, ParentPostID: uintPtr(1), ReplyTreePath: "1/"},
		{ID: 4, ParentPostID: uintPtr(1), ReplyTreePath: "1/"},
	}

	assert.Equal(t, posts, SortSiblingGroups(root, posts, nil))
}
