package dto

// PostResponse is the serialized form of a single post. Archived posts keep
// their identity and tree position but deleted ones lose their content.
type PostResponse struct {
	PostID          uint           `json:"postId"`
	DiscussionID    string         `json:"discussionId"`
	IsRootPost      bool           `json:"isRootPost"`
	ParentPostID    *uint          `json:"parentPostId,omitempty"`
	Author          AuthorResponse `json:"author"`
	ImageID         uint           `json:"imageId,omitempty"`
	ImageURL        string         `json:"imageUrl,omitempty"`
	PostedDate      string         `json:"postedDate"`
	IsDeleted       bool           `json:"isDeleted"`
	IsHidden        bool           `json:"isHidden"`
	IsInappropriate bool           `json:"isInappropriate"`
	ReactionsCount  int64          `json:"reactionsCount"`
}

// DiscussionTreeNode is the nested per-request view of a post and its
// replies. Children keep discovery order from the flattened path-ordered
// list; HasMore marks direct children excluded by a pagination limit.
type DiscussionTreeNode struct {
	PostID       uint                  `json:"postId"`
	ParentPostID *uint                 `json:"parentPostId,omitempty"`
	Post         PostResponse          `json:"post"`
	Children     []*DiscussionTreeNode `json:"children"`
	HasMore      bool                  `json:"hasMore"`
}

// AddReply appends a child node, preserving insertion order.
func (n *DiscussionTreeNode) AddReply(child *DiscussionTreeNode) {
	n.Children = append(n.Children, child)
}

type SetInappropriateRequest struct {
	Value *bool `json:"value" binding:"required"`
}

type ArchiveResponse struct {
	PostID      uint   `json:"postId"`
	ArchiveType string `json:"archiveType"` // "deleted" or "hidden"
}
