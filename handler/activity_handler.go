package handler

import (
	"accountability/service"
	"accountability/utils"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activitySvc *service.ActivityService
}

func NewActivityHandler(activitySvc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activitySvc: activitySvc}
}

// CreateGoal POST /goals
func (h *ActivityHandler) CreateGoal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required,max=50"`
		Description string `json:"description" binding:"max=256"`
		GoalType    string `json:"goal_type"`
		CircleID    *uint  `json:"circle_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	goal, err := h.activitySvc.CreateGoal(c.Request.Context(), userID, service.GoalInput{
		Title:       req.Title,
		Description: req.Description,
		GoalType:    req.GoalType,
		CircleID:    req.CircleID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, "goal created", goal)
}

// CreateCheckIn POST /check-ins
func (h *ActivityHandler) CreateCheckIn(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		GoalID   *uint  `json:"goal_id"`
		TargetID *uint  `json:"target_id"`
		Content  string `json:"content" binding:"max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	checkIn, err := h.activitySvc.CreateCheckIn(c.Request.Context(), userID, service.CheckInInput{
		GoalID:   req.GoalID,
		TargetID: req.TargetID,
		Content:  req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, "check-in recorded", checkIn)
}
