package dto

type ReactRequest struct {
	Type string `json:"type" binding:"required,oneof=heart laugh wow sad"`
}

type ReactionCountResponse struct {
	PostID uint  `json:"postId"`
	Count  int64 `json:"count"`
}
