package handler

import (
	"strconv"

	"accountability/service"
	"accountability/utils"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feedSvc *service.FeedService
}

func NewFeedHandler(feedSvc *service.FeedService) *FeedHandler {
	return &FeedHandler{feedSvc: feedSvc}
}

// Feed returns the handler for one fixed scope.
func (h *FeedHandler) Feed(scope service.FeedScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		// a missing or malformed limit falls back to the default page size
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

		var before uint
		if raw := c.Query("before"); raw != "" {
			v, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				utils.BadRequest(c, "invalid before cursor")
				return
			}
			before = uint(v)
		}

		page, err := h.feedSvc.GetFeedPage(c.Request.Context(), service.FeedQuery{
			ViewerID: userID,
			Scope:    scope,
			Limit:    limit,
			BeforeID: before,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, page)
	}
}
