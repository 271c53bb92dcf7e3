package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vireo.social/vireo/internal/service"
	"vireo.social/vireo/pkg/response"
	"vireo.social/vireo/pkg/validator"
)

type StatusHandler struct {
	statusService service.StatusService
	graphService  service.GraphService
}

func NewStatusHandler(statusService service.StatusService, graphService service.GraphService) *StatusHandler {
	return &StatusHandler{
		statusService: statusService,
		graphService:  graphService,
	}
}

// CreateStatus accepts multipart form data: a content field plus an optional
// attachment file.
func (h *StatusHandler) CreateStatus(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	content := c.PostForm("content")

	var attachment *service.Attachment
	if fileHeader, err := c.FormFile("attachment"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read attachment"})
			return
		}
		defer file.Close()
		attachment = &service.Attachment{FileName: fileHeader.Filename, Reader: file}
	}

	if _, err := h.statusService.Create(c.Request.Context(), userID, content, attachment); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type createReplyRequest struct {
	Content string `json:"content" binding:"required,max=250"`
}

func (h *StatusHandler) CreateReply(c *gin.Context) {
	statusID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req createReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if _, err := h.statusService.CreateReply(c.Request.Context(), statusID, userID, req.Content); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reply created successfully."})
}

func (h *StatusHandler) GetReplies(c *gin.Context) {
	statusID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status id"})
		return
	}

	if _, err := response.GetUserID(c); err != nil {
		response.ResponseError(c, err)
		return
	}

	replies, err := h.statusService.GetReplies(c.Request.Context(), statusID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statusReplies": replies})
}

type toggleLikeRequest struct {
	Author string `json:"author" binding:"required,uuid"`
}

func (h *StatusHandler) ToggleLike(c *gin.Context) {
	statusID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req toggleLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	authorID, _ := uuid.Parse(req.Author)

	liked, err := h.graphService.ToggleLike(c.Request.Context(), statusID, userID, authorID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// RecordView counts an impression; the client fires it once per card scrolled
// into view.
func (h *StatusHandler) RecordView(c *gin.Context) {
	statusID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status id"})
		return
	}

	if err := h.statusService.RecordView(c.Request.Context(), statusID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *StatusHandler) DeleteStatus(c *gin.Context) {
	statusID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.statusService.Delete(c.Request.Context(), statusID, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
