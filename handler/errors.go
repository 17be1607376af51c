package handler

import (
	"errors"
	"net/http"
	"strconv"

	"accountability/middleware"
	"accountability/service"
	"accountability/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorKind struct {
	status int
	code   int
	kind   string
}

// errorKinds maps service sentinels to the wire contract. Order matters only
// in that the first match wins.
var errorKinds = []struct {
	err  error
	kind errorKind
}{
	{service.ErrSelfRelationship, errorKind{http.StatusBadRequest, 40001, "self_relationship"}},
	{service.ErrNotBuddy, errorKind{http.StatusBadRequest, 40002, "not_buddy"}},
	{service.ErrInvalidScope, errorKind{http.StatusBadRequest, 40003, "invalid_scope"}},
	{service.ErrInvalidRole, errorKind{http.StatusBadRequest, 40004, "invalid_role"}},
	{service.ErrInvalidArgument, errorKind{http.StatusBadRequest, 40005, "invalid_argument"}},
	{service.ErrForbidden, errorKind{http.StatusForbidden, 40301, "forbidden"}},
	{service.ErrNotFound, errorKind{http.StatusNotFound, 40401, "not_found"}},
	{service.ErrEdgeNotFound, errorKind{http.StatusNotFound, 40402, "edge_not_found"}},
	{service.ErrDuplicateEdge, errorKind{http.StatusConflict, 40901, "duplicate_edge"}},
	{service.ErrDuplicatePending, errorKind{http.StatusConflict, 40902, "duplicate_pending"}},
	{service.ErrDuplicateMembership, errorKind{http.StatusConflict, 40903, "duplicate_membership"}},
	{service.ErrAlreadyBuddies, errorKind{http.StatusConflict, 40904, "already_buddies"}},
	{service.ErrAlreadyResponded, errorKind{http.StatusConflict, 40905, "already_responded"}},
	{service.ErrBusy, errorKind{http.StatusServiceUnavailable, 50301, "busy"}},
}

// respondError writes the envelope for a service error. Store failures are
// logged and reported without driver detail.
func respondError(c *gin.Context, err error) {
	for _, e := range errorKinds {
		if errors.Is(err, e.err) {
			utils.ErrorWithKind(c, e.kind.status, e.kind.code, e.kind.kind, err.Error())
			return
		}
	}

	utils.Logger().Error("request failed",
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")))

	if errors.Is(err, service.ErrPersistence) {
		utils.ErrorWithKind(c, http.StatusInternalServerError, 50001, "persistence", "internal server error")
		return
	}
	utils.InternalServerError(c, "internal server error")
}

// parseIDParam reads a positive integer path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// currentUser returns the authenticated user id or writes 401.
func currentUser(c *gin.Context) (uint, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return 0, false
	}
	return userID, true
}
