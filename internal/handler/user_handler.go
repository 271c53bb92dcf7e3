package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vireo.social/vireo/internal/service"
	"vireo.social/vireo/pkg/response"
)

type UserHandler struct {
	graphService        service.GraphService
	statusService       service.StatusService
	notificationService service.NotificationService
	profileService      service.ProfileService
	lookupService       service.LookupService
}

func NewUserHandler(graphService service.GraphService, statusService service.StatusService, notificationService service.NotificationService, profileService service.ProfileService, lookupService service.LookupService) *UserHandler {
	return &UserHandler{
		graphService:        graphService,
		statusService:       statusService,
		notificationService: notificationService,
		profileService:      profileService,
		lookupService:       lookupService,
	}
}

func (h *UserHandler) GetFollowers(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No User ID was provided"})
		return
	}

	followers, err := h.graphService.GetFollowers(c.Request.Context(), authorID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": followers, "count": len(followers)})
}

func (h *UserHandler) GetUserStatuses(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No User ID was provided"})
		return
	}

	statuses, err := h.statusService.GetUserStatuses(c.Request.Context(), authorID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, statuses)
}

// GetUserReplies returns the latest 10 replies authored by the user.
func (h *UserHandler) GetUserReplies(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No User ID was provided"})
		return
	}

	replies, err := h.statusService.GetUserReplies(c.Request.Context(), authorID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, replies)
}

func (h *UserHandler) ToggleFollow(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No User ID was provided"})
		return
	}

	followerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	action, err := h.graphService.ToggleFollow(c.Request.Context(), followerID, authorID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "action": action})
}

func (h *UserHandler) GetNotifications(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No user found"})
		return
	}

	notifications, err := h.notificationService.GetRecent(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

func (h *UserHandler) Lookup(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	users, err := h.lookupService.Lookup(c.Request.Context(), c.Query("search"), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetProfileByUsername(c *gin.Context) {
	user, err := h.profileService.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	update := service.ProfileUpdate{}
	if v, ok := c.GetPostForm("name"); ok {
		update.Name = &v
	}
	if v, ok := c.GetPostForm("biography"); ok {
		update.Biography = &v
	}
	if v, ok := c.GetPostForm("website"); ok {
		update.Website = &v
	}

	if fileHeader, err := c.FormFile("avatar"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read avatar"})
			return
		}
		defer file.Close()
		update.Avatar = &service.Attachment{FileName: fileHeader.Filename, Reader: file}
	}
	if fileHeader, err := c.FormFile("banner"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read banner"})
			return
		}
		defer file.Close()
		update.Banner = &service.Attachment{FileName: fileHeader.Filename, Reader: file}
	}

	user, err := h.profileService.UpdateProfile(c.Request.Context(), userID, update)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
