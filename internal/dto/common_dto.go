package dto

// SortType selects the ordering strategy for thread summaries and for
// sibling replies inside a tree. It never affects parent/child structure.
type SortType string

const (
	SortNone      SortType = ""
	SortNew       SortType = "new"
	SortComments  SortType = "comments"
	SortReactions SortType = "reactions"
)

// PaginationOptions is the start/limit pair shared by the summary list and
// the reply tree. For summaries Start is a result offset; for reply trees it
// is the watermark post id of the last reply already seen.
type PaginationOptions struct {
	Start *uint `form:"start" binding:"omitempty"`
	Limit *int  `form:"limit" binding:"omitempty,min=0,max=500"`
}

type TreeQuery struct {
	Sort SortType `form:"sort" binding:"omitempty,oneof=new comments reactions"`
	PaginationOptions
}

type AuthorResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
