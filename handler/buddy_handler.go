package handler

import (
	"accountability/service"
	"accountability/utils"

	"github.com/gin-gonic/gin"
)

type BuddyHandler struct {
	buddySvc *service.BuddyService
}

func NewBuddyHandler(buddySvc *service.BuddyService) *BuddyHandler {
	return &BuddyHandler{buddySvc: buddySvc}
}

// SendRequest POST /buddy/request/:id where id is the target user.
func (h *BuddyHandler) SendRequest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message" binding:"max=500"`
	}
	// the body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
	}

	request, err := h.buddySvc.SendRequest(c.Request.Context(), userID, targetID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, "buddy request sent", request)
}

// AcceptRequest POST /buddy/request/:id/accept
func (h *BuddyHandler) AcceptRequest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.buddySvc.Accept(c.Request.Context(), requestID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "buddy request accepted", request)
}

// DeclineRequest POST /buddy/request/:id/decline
func (h *BuddyHandler) DeclineRequest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.buddySvc.Decline(c.Request.Context(), requestID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "buddy request declined", request)
}

func (h *BuddyHandler) GetReceivedRequests(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	requests, err := h.buddySvc.ListReceived(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"requests": requests})
}

func (h *BuddyHandler) GetSentRequests(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	requests, err := h.buddySvc.ListSent(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"requests": requests})
}

// GetBuddies GET /buddy/list
func (h *BuddyHandler) GetBuddies(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	buddies, err := h.buddySvc.ListBuddies(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"buddies": buddies})
}

// RemoveBuddy DELETE /buddy/:user_id/remove
func (h *BuddyHandler) RemoveBuddy(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	otherID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.buddySvc.RemoveBuddy(c.Request.Context(), userID, otherID); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "buddy removed", nil)
}
