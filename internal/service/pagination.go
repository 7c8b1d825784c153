package service

import (
	"github.com/sketchtalk/sketchtalk/internal/dto"
	"github.com/sketchtalk/sketchtalk/internal/model"
)

const defaultPageSize = 10

// FilterRepliesAfter drops every post at or before the watermark post in the
// given order, returning only the posts "after" it. When the watermark does
// not appear in the slice the input is returned unchanged, so a stale or
// bogus start marker degrades to the first page instead of an empty one.
func FilterRepliesAfter(posts []*model.Post, startAfterPostID uint) []*model.Post {
	for i, p := range posts {
		if p.ID == startAfterPostID {
			return posts[i+1:]
		}
	}
	return posts
}

// paginateSummaries windows an already-sorted summary list with an offset
// start and a limit, reporting whether another page follows.
func paginateSummaries(threads []dto.DiscussionThreadResponse, opts *dto.PaginationOptions) dto.PaginatedThreadsResponse {
	start := 0
	limit := defaultPageSize
	if opts != nil {
		if opts.Start != nil {
			start = int(*opts.Start)
		}
		if opts.Limit != nil {
			limit = *opts.Limit
		}
	}

	if start > len(threads) {
		start = len(threads)
	}
	end := start + limit
	if end > len(threads) {
		end = len(threads)
	}

	page := threads[start:end]
	return dto.PaginatedThreadsResponse{
		Threads:     page,
		Start:       start,
		Size:        len(page),
		HasNextPage: end < len(threads),
	}
}
