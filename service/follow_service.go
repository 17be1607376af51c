package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accountability/model"
	"accountability/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FollowService owns follow-kind edges. Buddy-kind mutations belong to
// BuddyService.
type FollowService struct {
	db    *gorm.DB
	cache *AuthorCache
}

func NewFollowService(db *gorm.DB, cache *AuthorCache) *FollowService {
	return &FollowService{db: db, cache: cache}
}

// Follow creates follower -> target with kind follow.
func (s *FollowService) Follow(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return ErrSelfRelationship
	}

	db := s.db.WithContext(ctx)
	if err := requireUser(db, targetID); err != nil {
		return err
	}

	exists, err := edgeExists(db, followerID, targetID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateEdge
	}

	edge := &model.Follow{
		FollowerID:       followerID,
		FollowingID:      targetID,
		RelationshipType: model.KindFollow,
	}
	if err := db.Create(edge).Error; err != nil {
		// a concurrent follow won the insert
		if isDuplicateKey(err) {
			return ErrDuplicateEdge
		}
		return persistenceError("create follow", err)
	}

	s.cache.Invalidate(ctx, followerID)
	return nil
}

// Unfollow deletes follower -> target whatever its kind. Unfollowing a buddy
// leaves the mirror edge tagged buddy.
func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID uint) error {
	db := s.db.WithContext(ctx)
	if err := requireUser(db, targetID); err != nil {
		return err
	}

	edge, err := findEdge(db, followerID, targetID)
	if err != nil {
		return err
	}
	if edge == nil {
		return ErrEdgeNotFound
	}

	result := db.Where("follower_id = ? AND following_id = ?", followerID, targetID).
		Delete(&model.Follow{})
	if result.Error != nil {
		return persistenceError("delete follow", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEdgeNotFound
	}

	if edge.IsBuddy() {
		utils.Logger().Warn("unfollow broke one side of a buddy pair",
			zap.Uint("follower", followerID), zap.Uint("following", targetID))
	}

	s.cache.Invalidate(ctx, followerID)
	return nil
}

// ListFollowing returns the users userID follows.
func (s *FollowService) ListFollowing(ctx context.Context, userID uint) ([]model.Connection, error) {
	return s.listConnections(ctx, userID, "follows.follower_id = ?", "follows.following_id")
}

// ListFollowers returns the users following userID.
func (s *FollowService) ListFollowers(ctx context.Context, userID uint) ([]model.Connection, error) {
	return s.listConnections(ctx, userID, "follows.following_id = ?", "follows.follower_id")
}

func (s *FollowService) listConnections(ctx context.Context, userID uint, where, joinColumn string) ([]model.Connection, error) {
	db := s.db.WithContext(ctx)
	if err := requireUser(db, userID); err != nil {
		return nil, err
	}

	type row struct {
		ID               uint
		Username         string
		Email            string
		RelationshipType string
		CreatedAt        time.Time
	}

	var rows []row
	err := db.Table("follows").
		Select("users.id, users.username, users.email, follows.relationship_type, follows.created_at").
		Joins(fmt.Sprintf("INNER JOIN users ON users.id = %s", joinColumn)).
		Where(where, userID).
		Order("follows.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, persistenceError("list connections", err)
	}

	connections := make([]model.Connection, 0, len(rows))
	for _, r := range rows {
		kind, err := model.ParseRelationshipKind(r.RelationshipType)
		if err != nil {
			return nil, err
		}
		connections = append(connections, model.Connection{
			UserDisplay:      model.UserDisplay{ID: r.ID, Username: r.Username, Email: r.Email},
			RelationshipType: kind,
			Since:            r.CreatedAt,
		})
	}
	return connections, nil
}

func followingIDs(db *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	if err := db.Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, persistenceError("list following ids", err)
	}
	return ids, nil
}

// findEdge returns nil, nil when the edge is absent.
func findEdge(db *gorm.DB, followerID, followingID uint) (*model.Follow, error) {
	var edge model.Follow
	err := db.Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("load follow", err)
	}
	return &edge, nil
}

func edgeExists(db *gorm.DB, followerID, followingID uint) (bool, error) {
	var count int64
	if err := db.Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, persistenceError("check follow", err)
	}
	return count > 0, nil
}
