package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sketchtalk/sketchtalk/internal/dto"
	"github.com/sketchtalk/sketchtalk/internal/service"
	"github.com/sketchtalk/sketchtalk/pkg/response"
	"github.com/sketchtalk/sketchtalk/pkg/validator"
)

type DiscussionHandler struct {
	service service.DiscussionService
}

func NewDiscussionHandler(service service.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{service: service}
}

// GetSummaries lists thread summaries: every discussion's root post with its
// aggregate reply count, sorted and paginated.
func (h *DiscussionHandler) GetSummaries(c *gin.Context) {
	var query dto.TreeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	summaries, err := h.service.GetPaginatedSummaries(c.Request.Context(), query.Sort, &query.PaginationOptions)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// CreateThread starts a new discussion from an uploaded drawing.
func (h *DiscussionHandler) CreateThread(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	img, err := imageFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer img.close()

	thread, err := h.service.CreateThread(c.Request.Context(), userID, img.NewImage)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, thread)
}
