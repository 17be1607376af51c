package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"accountability/model"
	"accountability/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuddyService runs the request/accept/decline handshake and is the only
// code that writes buddy-kind edges.
type BuddyService struct {
	db     *gorm.DB
	cache  *AuthorCache
	locker *Locker
	users  *UserService
}

func NewBuddyService(db *gorm.DB, cache *AuthorCache, locker *Locker) *BuddyService {
	return &BuddyService{db: db, cache: cache, locker: locker, users: NewUserService(db)}
}

// SendRequest creates a pending request from -> to.
func (s *BuddyService) SendRequest(ctx context.Context, fromID, toID uint, message string) (*model.BuddyRequest, error) {
	if fromID == toID {
		return nil, ErrSelfRelationship
	}
	if utf8.RuneCountInString(message) > 500 {
		return nil, fmt.Errorf("%w: message longer than 500 characters", ErrInvalidArgument)
	}

	db := s.db.WithContext(ctx)
	if err := requireUser(db, toID); err != nil {
		return nil, err
	}

	edge, err := findEdge(db, fromID, toID)
	if err != nil {
		return nil, err
	}
	if edge != nil && edge.IsBuddy() {
		return nil, ErrAlreadyBuddies
	}

	var pending int64
	if err := db.Model(&model.BuddyRequest{}).
		Where("from_user_id = ? AND to_user_id = ? AND status = ?", fromID, toID, model.BuddyRequestPending).
		Count(&pending).Error; err != nil {
		return nil, persistenceError("check pending request", err)
	}
	if pending > 0 {
		return nil, ErrDuplicatePending
	}

	req := &model.BuddyRequest{
		FromUserID: fromID,
		ToUserID:   toID,
		Status:     model.BuddyRequestPending,
		Message:    message,
	}
	if err := db.Create(req).Error; err != nil {
		return nil, persistenceError("create buddy request", err)
	}
	return req, nil
}

// Accept marks the request accepted and upserts both edges as buddy in one
// transaction.
func (s *BuddyService) Accept(ctx context.Context, requestID, responderID uint) (*model.BuddyRequest, error) {
	release, err := s.locker.Acquire(ctx, fmt.Sprintf("lock:buddy_request:%d", requestID))
	if err != nil {
		return nil, err
	}
	defer release()

	var accepted *model.BuddyRequest
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := respond(tx, requestID, responderID, model.BuddyRequestAccepted)
		if err != nil {
			return err
		}
		if err := upsertBuddyEdge(tx, req.FromUserID, req.ToUserID); err != nil {
			return err
		}
		if err := upsertBuddyEdge(tx, req.ToUserID, req.FromUserID); err != nil {
			return err
		}
		accepted = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, accepted.FromUserID, accepted.ToUserID)
	utils.Logger().Info("buddy request accepted",
		zap.Uint("request", requestID),
		zap.Uint("from", accepted.FromUserID),
		zap.Uint("to", accepted.ToUserID))
	return accepted, nil
}

// Decline marks the request declined. Edges are untouched.
func (s *BuddyService) Decline(ctx context.Context, requestID, responderID uint) (*model.BuddyRequest, error) {
	var declined *model.BuddyRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := respond(tx, requestID, responderID, model.BuddyRequestDeclined)
		if err != nil {
			return err
		}
		declined = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return declined, nil
}

// respond moves a pending request to a terminal status. The conditional
// UPDATE makes the transition happen at most once even under races.
func respond(tx *gorm.DB, requestID, responderID uint, status model.BuddyRequestStatus) (*model.BuddyRequest, error) {
	var req model.BuddyRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("buddy request", requestID)
	}
	if err != nil {
		return nil, persistenceError("load buddy request", err)
	}

	if req.ToUserID != responderID {
		return nil, fmt.Errorf("%w: only the addressee can respond to a buddy request", ErrForbidden)
	}
	if !req.IsPending() {
		return nil, ErrAlreadyResponded
	}

	now := time.Now()
	result := tx.Model(&model.BuddyRequest{}).
		Where("id = ? AND status = ?", requestID, model.BuddyRequestPending).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": now,
		})
	if result.Error != nil {
		return nil, persistenceError("update buddy request", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrAlreadyResponded
	}

	req.Status = status
	req.RespondedAt = &now
	return &req, nil
}

// upsertBuddyEdge sets an existing edge to buddy or inserts a new buddy edge.
func upsertBuddyEdge(tx *gorm.DB, followerID, followingID uint) error {
	edge := &model.Follow{
		FollowerID:       followerID,
		FollowingID:      followingID,
		RelationshipType: model.KindBuddy,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"relationship_type", "updated_at"}),
	}).Create(edge).Error
	if err != nil {
		return persistenceError("upsert buddy edge", err)
	}
	return nil
}

// RemoveBuddy downgrades user -> other to follow, and the mirror edge too
// when it exists.
func (s *BuddyService) RemoveBuddy(ctx context.Context, userID, otherID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge, err := findEdge(tx, userID, otherID)
		if err != nil {
			return err
		}
		if edge == nil || !edge.IsBuddy() {
			return ErrNotBuddy
		}

		if err := setEdgeKind(tx, userID, otherID, model.KindFollow); err != nil {
			return err
		}

		mirror, err := findEdge(tx, otherID, userID)
		if err != nil {
			return err
		}
		if mirror == nil {
			utils.Logger().Warn("buddy edge had no mirror",
				zap.Uint("user", userID), zap.Uint("other", otherID))
			return nil
		}
		if mirror.IsBuddy() {
			return setEdgeKind(tx, otherID, userID, model.KindFollow)
		}
		return nil
	})
}

func setEdgeKind(tx *gorm.DB, followerID, followingID uint, kind model.RelationshipKind) error {
	if err := tx.Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Update("relationship_type", kind).Error; err != nil {
		return persistenceError("update follow kind", err)
	}
	return nil
}

// ListBuddies returns users with a buddy edge from userID.
func (s *BuddyService) ListBuddies(ctx context.Context, userID uint) ([]model.Buddy, error) {
	var buddies []model.Buddy
	err := s.db.WithContext(ctx).Table("follows").
		Select("users.id AS user_id, users.username, users.email, follows.created_at AS buddies_since").
		Joins("INNER JOIN users ON users.id = follows.following_id").
		Where("follows.follower_id = ? AND follows.relationship_type = ?", userID, model.KindBuddy).
		Order("follows.created_at ASC").
		Scan(&buddies).Error
	if err != nil {
		return nil, persistenceError("list buddies", err)
	}
	if buddies == nil {
		buddies = []model.Buddy{}
	}
	return buddies, nil
}

// ListReceived returns pending requests addressed to userID, newest first.
func (s *BuddyService) ListReceived(ctx context.Context, userID uint) ([]model.BuddyRequestView, error) {
	return s.listRequests(ctx, "to_user_id = ? AND status = ?", userID, model.BuddyRequestPending)
}

// ListSent returns every request userID has sent, newest first.
func (s *BuddyService) ListSent(ctx context.Context, userID uint) ([]model.BuddyRequestView, error) {
	return s.listRequests(ctx, "from_user_id = ?", userID)
}

func (s *BuddyService) listRequests(ctx context.Context, where string, args ...interface{}) ([]model.BuddyRequestView, error) {
	var requests []model.BuddyRequest
	if err := s.db.WithContext(ctx).
		Where(where, args...).
		Order("created_at DESC, id DESC").
		Find(&requests).Error; err != nil {
		return nil, persistenceError("list buddy requests", err)
	}

	ids := make([]uint, 0, len(requests)*2)
	for _, r := range requests {
		ids = append(ids, r.FromUserID, r.ToUserID)
	}
	displays, err := s.users.GetDisplays(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]model.BuddyRequestView, 0, len(requests))
	for _, r := range requests {
		view := model.BuddyRequestView{BuddyRequest: r}
		if d, ok := displays[r.FromUserID]; ok {
			view.FromUser = &d
		}
		if d, ok := displays[r.ToUserID]; ok {
			view.ToUser = &d
		}
		views = append(views, view)
	}
	return views, nil
}
