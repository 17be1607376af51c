package handler

import (
	"accountability/service"
	"accountability/utils"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	followSvc *service.FollowService
}

func NewFollowHandler(followSvc *service.FollowService) *FollowHandler {
	return &FollowHandler{followSvc: followSvc}
}

// Follow POST /follow/:user_id
func (h *FollowHandler) Follow(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.followSvc.Follow(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, "followed", gin.H{"follower_id": userID, "following_id": targetID})
}

// Unfollow DELETE /follow/:user_id
func (h *FollowHandler) Unfollow(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.followSvc.Unfollow(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "unfollowed", nil)
}

// GetFollowings GET /followings
func (h *FollowHandler) GetFollowings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	following, err := h.followSvc.ListFollowing(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"followings": following})
}

// GetFollowers GET /followers
func (h *FollowHandler) GetFollowers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	followers, err := h.followSvc.ListFollowers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"followers": followers})
}
