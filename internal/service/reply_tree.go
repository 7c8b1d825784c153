package service

import (
	"fmt"
	"sort"

	"github.com/sketchtalk/sketchtalk/internal/dto"
	"github.com/sketchtalk/sketchtalk/internal/model"
)

// BuildReplyTree nests a flat, path-ordered list of tree nodes. The first
// node must be the subtree root; every other node's parent appears before it
// in the slice. limit is positional over the whole slice, so index 0 (the
// root) counts toward it, but the root itself is always materialized even
// with limit 0.
//
// Nodes past the limit are not attached; instead their parent (when itself
// within the limit) gets HasMore set, signalling truncated children without
// materializing them. HasMore never propagates to ancestors.
func BuildReplyTree(nodes []*dto.DiscussionTreeNode, limit *int) (*dto.DiscussionTreeNode, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("cannot build a reply tree without a root post")
	}

	byID := make(map[uint]*dto.DiscussionTreeNode, len(nodes))
	rootID := nodes[0].PostID

	for i, node := range nodes {
		underLimit := limit == nil || i == 0 || i < *limit
		if underLimit {
			byID[node.PostID] = node
		}

		if node.ParentPostID == nil {
			continue
		}

		// Only ever found if the parent was within the limit; path order
		// guarantees it was already processed.
		parent, ok := byID[*node.ParentPostID]
		if !ok {
			continue
		}

		if underLimit {
			parent.AddReply(node)
		} else {
			parent.HasMore = true
		}
	}

	return byID[rootID], nil
}

// SortSiblingGroups reorders replies so that each sibling group follows the
// given comparator while parents still precede all of their descendants.
// posts must be the path-ordered descendants of root; the result is the
// pre-order flattening of the regrouped tree. A nil comparator returns the
// input untouched.
func SortSiblingGroups(root *model.Post, posts []*model.Post, less func(a, b *model.Post) bool) []*model.Post {
	if less == nil || len(posts) < 2 {
		return posts
	}

	groups := make(map[uint][]*model.Post)
	for _, p := range posts {
		if p.ParentPostID == nil {
			continue
		}
		groups[*p.ParentPostID] = append(groups[*p.ParentPostID], p)
	}

	for _, siblings := range groups {
		sort.SliceStable(siblings, func(i, j int) bool {
			return less(siblings[i], siblings[j])
		})
	}

	ordered := make([]*model.Post, 0, len(posts))
	var walk func(parentID uint)
	walk = func(parentID uint) {
		for _, child := range groups[parentID] {
			ordered = append(ordered, child)
			walk(child.ID)
		}
	}
	walk(root.ID)

	return ordered
}

// siblingLess translates a sort type into a sibling comparator. Reaction
// sorting needs the pre-fetched counts; sort types that only apply to thread
// summaries fall back to path order.
func siblingLess(sortType dto.SortType, reactionCounts map[uint]int64) func(a, b *model.Post) bool {
	switch sortType {
	case dto.SortNew:
		return func(a, b *model.Post) bool {
			return a.PostedDate.After(b.PostedDate)
		}
	case dto.SortReactions:
		return func(a, b *model.Post) bool {
			return reactionCounts[a.ID] > reactionCounts[b.ID]
		}
	default:
		return nil
	}
}
