package handler

import (
	"accountability/service"
	"accountability/utils"

	"github.com/gin-gonic/gin"
)

type CircleHandler struct {
	circleSvc      *service.CircleService
	leaderboardSvc *service.LeaderboardService
}

func NewCircleHandler(circleSvc *service.CircleService, leaderboardSvc *service.LeaderboardService) *CircleHandler {
	return &CircleHandler{circleSvc: circleSvc, leaderboardSvc: leaderboardSvc}
}

type circleRequest struct {
	Name        string `json:"name" binding:"required,max=80"`
	Description string `json:"description" binding:"max=200"`
}

// CreateCircle POST /circle
func (h *CircleHandler) CreateCircle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req circleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	circle, err := h.circleSvc.CreateCircle(c.Request.Context(), userID, service.CircleInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, "circle created", circle)
}

// GetMyCircles GET /circles
func (h *CircleHandler) GetMyCircles(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	circles, err := h.circleSvc.ListUserCircles(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"circles": circles})
}

func (h *CircleHandler) GetCircle(c *gin.Context) {
	circleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	circle, err := h.circleSvc.GetCircle(c.Request.Context(), circleID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, circle)
}

func (h *CircleHandler) UpdateCircle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	circleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req circleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	circle, err := h.circleSvc.UpdateCircle(c.Request.Context(), circleID, userID, service.CircleInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "circle updated", circle)
}

func (h *CircleHandler) DeleteCircle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	circleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.circleSvc.DeleteCircle(c.Request.Context(), circleID, userID); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "circle deleted", nil)
}

// AddMember POST /circle/:id/users
func (h *CircleHandler) AddMember(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	circleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserID uint   `json:"user_id" binding:"required"`
		Role   string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.circleSvc.AuthorizeMemberAdd(c.Request.Context(), circleID, userID, req.UserID, req.Role); err != nil {
		respondError(c, err)
		return
	}

	member, err := h.circleSvc.AddMember(c.Request.Context(), circleID, req.UserID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, "member added", member)
}

// RemoveMember DELETE /circle/:id/users
func (h *CircleHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	circleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.circleSvc.AuthorizeMemberRemove(c.Request.Context(), circleID, userID, req.UserID); err != nil {
		respondError(c, err)
		return
	}
	if err := h.circleSvc.RemoveMember(c.Request.Context(), circleID, req.UserID); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "member removed", nil)
}

// GetMembers GET /circle/:id/users
func (h *CircleHandler) GetMembers(c *gin.Context) {
	circleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	members, err := h.circleSvc.ListMembers(c.Request.Context(), circleID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"members": members})
}

// GetLeaderboard GET /circle/:id/leaderboard
func (h *CircleHandler) GetLeaderboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	circleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	board, err := h.leaderboardSvc.GetCircleLeaderboard(c.Request.Context(), circleID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"leaderboard": board})
}
