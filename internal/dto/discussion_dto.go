package dto

// DiscussionThreadResponse is a thread summary: the root post plus an
// aggregate reply count. Composed on demand, never persisted.
type DiscussionThreadResponse struct {
	DiscussionID string       `json:"discussionId"`
	RootPost     PostResponse `json:"rootPost"`
	CommentCount int64        `json:"commentCount"`
}

type PaginatedThreadsResponse struct {
	Threads     []DiscussionThreadResponse `json:"threads"`
	Start       int                        `json:"start"`
	Size        int                        `json:"size"`
	HasNextPage bool                       `json:"hasNextPage"`
}
