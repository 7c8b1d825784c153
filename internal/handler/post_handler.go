package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sketchtalk/sketchtalk/internal/dto"
	"github.com/sketchtalk/sketchtalk/internal/service"
	"github.com/sketchtalk/sketchtalk/pkg/response"
	"github.com/sketchtalk/sketchtalk/pkg/validator"
)

type PostHandler struct {
	service service.DiscussionService
}

func NewPostHandler(service service.DiscussionService) *PostHandler {
	return &PostHandler{service: service}
}

func (h *PostHandler) GetPost(c *gin.Context) {
	postID, err := postIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.service.GetPostResponse(c.Request.Context(), postID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// GetReplyTree returns the nested reply tree under the post, honoring
// sort/start/limit query parameters.
func (h *PostHandler) GetReplyTree(c *gin.Context) {
	postID, err := postIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var query dto.TreeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	tree, err := h.service.GetReplyTreeUnderPost(c.Request.Context(), postID, query.Sort, &query.PaginationOptions)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, tree)
}

func (h *PostHandler) CreateReply(c *gin.Context) {
	parentPostID, err := postIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

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

	reply, err := h.service.CreateReply(c.Request.Context(), userID, parentPostID, img.NewImage)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reply)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID, err := postIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

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

	post, err := h.service.UpdatePost(c.Request.Context(), userID, postID, img.NewImage)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// ArchivePost soft-removes a post: deleted outright when nothing references
// it, hidden otherwise.
func (h *PostHandler) ArchivePost(c *gin.Context) {
	postID, err := postIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	archiveType, err := h.service.ArchivePost(c.Request.Context(), userID, postID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ArchiveResponse{
		PostID:      postID,
		ArchiveType: string(archiveType),
	})
}

func (h *PostHandler) SetInappropriateFlag(c *gin.Context) {
	postID, err := postIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req dto.SetInappropriateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	post, err := h.service.SetInappropriateFlag(c.Request.Context(), userID, postID, *req.Value)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}
