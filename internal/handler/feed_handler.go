package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vireo.social/vireo/internal/service"
	"vireo.social/vireo/pkg/response"
)

type FeedHandler struct {
	feedService  service.FeedService
	trendService service.TrendService
}

func NewFeedHandler(feedService service.FeedService, trendService service.TrendService) *FeedHandler {
	return &FeedHandler{
		feedService:  feedService,
		trendService: trendService,
	}
}

// Feed pages are always served fresh; clients poll them aggressively.
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
}

func (h *FeedHandler) GetFeed(c *gin.Context) {
	cursor, err := service.ParseCursor(c.Query("cursor"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	var id *uuid.UUID
	if raw := c.Query("id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status id"})
			return
		}
		id = &parsed
	}

	page, err := h.feedService.GetFeed(c.Request.Context(), cursor, limit, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	noStore(c)
	c.JSON(http.StatusOK, page)
}

func (h *FeedHandler) GetFollowingFeed(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	cursor, err := service.ParseCursor(c.Query("cursor"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	page, err := h.feedService.GetFollowingFeed(c.Request.Context(), userID, cursor, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	noStore(c)
	c.JSON(http.StatusOK, page)
}

func (h *FeedHandler) GetTrends(c *gin.Context) {
	trends, err := h.trendService.GetTrends(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	noStore(c)
	c.JSON(http.StatusOK, trends)
}
