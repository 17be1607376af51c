package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"accountability/model"
	"accountability/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxCircleNameLen        = 80
	maxCircleDescriptionLen = 200
)

// CircleService owns circles and their membership rosters.
type CircleService struct {
	db     *gorm.DB
	cache  *AuthorCache
	admins *AdminPolicy
}

func NewCircleService(db *gorm.DB, cache *AuthorCache, admins *AdminPolicy) *CircleService {
	return &CircleService{db: db, cache: cache, admins: admins}
}

// canManage: creator of the circle or an admin identity.
func (s *CircleService) canManage(circle *model.Circle, userID uint) bool {
	return circle.CreatedByID == userID || s.admins.IsAdmin(userID)
}

// canManageRoster extends canManage to members holding the owner or admin
// role in this circle.
func (s *CircleService) canManageRoster(db *gorm.DB, circle *model.Circle, userID uint) (bool, error) {
	if s.canManage(circle, userID) {
		return true, nil
	}
	m, err := findMembership(db, circle.ID, userID)
	if err != nil {
		return false, err
	}
	return m != nil && (m.Role == model.CircleRoleOwner || m.Role == model.CircleRoleAdmin), nil
}

// AuthorizeMemberAdd checks that actorID may enrol targetID with role. Anyone
// may join as a plain member; everything else needs roster rights, and only
// the creator or an admin identity may hand out the owner role.
func (s *CircleService) AuthorizeMemberAdd(ctx context.Context, circleID, actorID, targetID uint, role string) error {
	db := s.db.WithContext(ctx)
	circle, err := loadCircle(db, circleID)
	if err != nil {
		return err
	}
	if role == model.CircleRoleOwner && !s.canManage(circle, actorID) {
		return fmt.Errorf("%w: only the circle creator can grant the owner role", ErrForbidden)
	}
	if actorID == targetID && (role == "" || role == model.CircleRoleMember) {
		return nil
	}
	ok, err := s.canManageRoster(db, circle, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: not allowed to add members to circle %d", ErrForbidden, circleID)
	}
	return nil
}

// AuthorizeMemberRemove checks that actorID may remove targetID. Leaving is
// always allowed.
func (s *CircleService) AuthorizeMemberRemove(ctx context.Context, circleID, actorID, targetID uint) error {
	db := s.db.WithContext(ctx)
	circle, err := loadCircle(db, circleID)
	if err != nil {
		return err
	}
	if actorID == targetID {
		return nil
	}
	ok, err := s.canManageRoster(db, circle, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: not allowed to remove members from circle %d", ErrForbidden, circleID)
	}
	return nil
}

type CircleInput struct {
	Name        string
	Description string
}

func (in CircleInput) validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: circle name is required", ErrInvalidArgument)
	}
	if utf8.RuneCountInString(name) > maxCircleNameLen {
		return fmt.Errorf("%w: circle name longer than %d characters", ErrInvalidArgument, maxCircleNameLen)
	}
	if utf8.RuneCountInString(in.Description) > maxCircleDescriptionLen {
		return fmt.Errorf("%w: circle description longer than %d characters", ErrInvalidArgument, maxCircleDescriptionLen)
	}
	return nil
}

// CreateCircle creates the circle and enrols the creator as owner.
func (s *CircleService) CreateCircle(ctx context.Context, creatorID uint, in CircleInput) (*model.CircleWithMembers, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var circle model.Circle
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, creatorID); err != nil {
			return err
		}
		circle = model.Circle{
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
			CreatedByID: creatorID,
		}
		if err := tx.Create(&circle).Error; err != nil {
			return persistenceError("create circle", err)
		}
		owner := &model.CircleMembership{
			CircleID: circle.ID,
			UserID:   creatorID,
			Role:     model.CircleRoleOwner,
			JoinedAt: time.Now(),
		}
		if err := tx.Create(owner).Error; err != nil {
			return persistenceError("create owner membership", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, creatorID)
	return s.GetCircle(ctx, circle.ID)
}

// GetCircle returns the circle with its roster.
func (s *CircleService) GetCircle(ctx context.Context, circleID uint) (*model.CircleWithMembers, error) {
	db := s.db.WithContext(ctx)
	circle, err := loadCircle(db, circleID)
	if err != nil {
		return nil, err
	}
	members, err := listMembers(db, circleID)
	if err != nil {
		return nil, err
	}
	return &model.CircleWithMembers{Circle: *circle, Members: members}, nil
}

// UpdateCircle changes name and description. Only the creator or an admin
// may do this.
func (s *CircleService) UpdateCircle(ctx context.Context, circleID, actorID uint, in CircleInput) (*model.CircleWithMembers, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	circle, err := loadCircle(db, circleID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(circle, actorID) {
		return nil, fmt.Errorf("%w: only the circle creator can update it", ErrForbidden)
	}

	if err := db.Model(circle).Updates(map[string]interface{}{
		"name":        strings.TrimSpace(in.Name),
		"description": in.Description,
	}).Error; err != nil {
		return nil, persistenceError("update circle", err)
	}
	return s.GetCircle(ctx, circleID)
}

// DeleteCircle removes the circle and every membership in one transaction.
// Goals that pointed at the circle are detached, not deleted.
func (s *CircleService) DeleteCircle(ctx context.Context, circleID, actorID uint) error {
	var memberIDs []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		circle, err := loadCircle(tx, circleID)
		if err != nil {
			return err
		}
		if !s.canManage(circle, actorID) {
			return fmt.Errorf("%w: only the circle creator can delete it", ErrForbidden)
		}

		memberIDs, err = circleMemberIDs(tx, circleID)
		if err != nil {
			return err
		}
		if err := tx.Where("circle_id = ?", circleID).Delete(&model.CircleMembership{}).Error; err != nil {
			return persistenceError("delete memberships", err)
		}
		if err := tx.Model(&model.Goal{}).Where("circle_id = ?", circleID).
			Update("circle_id", nil).Error; err != nil {
			return persistenceError("detach goals", err)
		}
		if err := tx.Delete(&model.Circle{}, circleID).Error; err != nil {
			return persistenceError("delete circle", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Every member's circle mates changed.
	s.cache.Invalidate(ctx, memberIDs...)
	utils.Logger().Info("circle deleted", zap.Uint("circle", circleID), zap.Uint("actor", actorID))
	return nil
}

// ListUserCircles returns the circles userID belongs to, newest first.
func (s *CircleService) ListUserCircles(ctx context.Context, userID uint) ([]model.Circle, error) {
	db := s.db.WithContext(ctx)
	mine := db.Session(&gorm.Session{NewDB: true}).
		Model(&model.CircleMembership{}).
		Select("circle_id").
		Where("user_id = ?", userID)

	var circles []model.Circle
	if err := db.Where("id IN (?)", mine).
		Order("created_at DESC, id DESC").
		Find(&circles).Error; err != nil {
		return nil, persistenceError("list user circles", err)
	}
	if circles == nil {
		circles = []model.Circle{}
	}
	return circles, nil
}

// AddMember enrols userID with role; an empty role means member.
func (s *CircleService) AddMember(ctx context.Context, circleID, userID uint, role string) (*model.CircleMember, error) {
	if role == "" {
		role = model.CircleRoleMember
	}
	if !model.ValidCircleRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	db := s.db.WithContext(ctx)
	if _, err := loadCircle(db, circleID); err != nil {
		return nil, err
	}
	var user model.User
	err := db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user", userID)
	}
	if err != nil {
		return nil, persistenceError("load user", err)
	}

	existing, err := findMembership(db, circleID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateMembership
	}

	membership := &model.CircleMembership{
		CircleID: circleID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	}
	if err := db.Create(membership).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateMembership
		}
		return nil, persistenceError("create membership", err)
	}

	s.invalidateRoster(ctx, circleID, userID)
	return &model.CircleMember{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     membership.Role,
		JoinedAt: membership.JoinedAt,
	}, nil
}

// RemoveMember deletes the membership row.
func (s *CircleService) RemoveMember(ctx context.Context, circleID, userID uint) error {
	db := s.db.WithContext(ctx)
	if _, err := loadCircle(db, circleID); err != nil {
		return err
	}
	if err := requireUser(db, userID); err != nil {
		return err
	}

	result := db.Where("circle_id = ? AND user_id = ?", circleID, userID).Delete(&model.CircleMembership{})
	if result.Error != nil {
		return persistenceError("delete membership", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d is not a member of circle %d", ErrNotFound, userID, circleID)
	}

	s.invalidateRoster(ctx, circleID, userID)
	return nil
}

// ListMembers returns the roster in join order.
func (s *CircleService) ListMembers(ctx context.Context, circleID uint) ([]model.CircleMember, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadCircle(db, circleID); err != nil {
		return nil, err
	}
	return listMembers(db, circleID)
}

// invalidateRoster drops cached author sets for the whole roster plus the
// changed user, who may no longer be on it.
func (s *CircleService) invalidateRoster(ctx context.Context, circleID, changedUserID uint) {
	if s.cache == nil {
		return
	}
	ids, err := circleMemberIDs(s.db.WithContext(ctx), circleID)
	if err != nil {
		utils.Logger().Warn("roster lookup for cache invalidation failed", zap.Uint("circle", circleID), zap.Error(err))
	}
	s.cache.Invalidate(ctx, append(ids, changedUserID)...)
}

func loadCircle(db *gorm.DB, circleID uint) (*model.Circle, error) {
	var circle model.Circle
	err := db.First(&circle, circleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("circle", circleID)
	}
	if err != nil {
		return nil, persistenceError("load circle", err)
	}
	return &circle, nil
}

// findMembership returns nil, nil when userID is not in the circle.
func findMembership(db *gorm.DB, circleID, userID uint) (*model.CircleMembership, error) {
	var m model.CircleMembership
	err := db.Where("circle_id = ? AND user_id = ?", circleID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("load membership", err)
	}
	return &m, nil
}

// listMembers is the roster query shared by circle listings and the
// leaderboard.
func listMembers(db *gorm.DB, circleID uint) ([]model.CircleMember, error) {
	var members []model.CircleMember
	err := db.Table("circle_memberships").
		Select("users.id AS user_id, users.username, users.email, circle_memberships.role, circle_memberships.joined_at").
		Joins("INNER JOIN users ON users.id = circle_memberships.user_id").
		Where("circle_memberships.circle_id = ?", circleID).
		Order("circle_memberships.joined_at ASC, users.id ASC").
		Scan(&members).Error
	if err != nil {
		return nil, persistenceError("list members", err)
	}
	if members == nil {
		members = []model.CircleMember{}
	}
	return members, nil
}

func circleMemberIDs(db *gorm.DB, circleID uint) ([]uint, error) {
	var ids []uint
	if err := db.Model(&model.CircleMembership{}).
		Where("circle_id = ?", circleID).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, persistenceError("list member ids", err)
	}
	return ids, nil
}

// circleMateIDs is every member of every circle userID belongs to, userID
// included when they are in at least one circle.
func circleMateIDs(db *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	mine := db.Session(&gorm.Session{NewDB: true}).
		Model(&model.CircleMembership{}).
		Select("circle_id").
		Where("user_id = ?", userID)
	if err := db.Model(&model.CircleMembership{}).
		Distinct("user_id").
		Where("circle_id IN (?)", mine).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, persistenceError("list circle mates", err)
	}
	return ids, nil
}
