package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"accountability/model"

	"gorm.io/gorm"
)

// ActivityService writes goals and check-ins and serves the feed's
// check-in query.
type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

type GoalInput struct {
	Title       string
	Description string
	GoalType    string
	CircleID    *uint
}

// CreateGoal creates an active goal. A circle goal requires membership.
func (s *ActivityService) CreateGoal(ctx context.Context, userID uint, in GoalInput) (*model.Goal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || utf8.RuneCountInString(title) > 50 {
		return nil, fmt.Errorf("%w: goal title must be 1-50 characters", ErrInvalidArgument)
	}
	if utf8.RuneCountInString(in.Description) > 256 {
		return nil, fmt.Errorf("%w: goal description longer than 256 characters", ErrInvalidArgument)
	}
	goalType := in.GoalType
	if goalType == "" {
		goalType = model.GoalTypeDaily
	}
	if !model.ValidGoalType(goalType) {
		return nil, fmt.Errorf("%w: unknown goal type %q", ErrInvalidArgument, goalType)
	}

	db := s.db.WithContext(ctx)
	if in.CircleID != nil {
		if _, err := loadCircle(db, *in.CircleID); err != nil {
			return nil, err
		}
		m, err := findMembership(db, *in.CircleID, userID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("%w: not a member of circle %d", ErrForbidden, *in.CircleID)
		}
	}

	goal := &model.Goal{
		UserID:      userID,
		CircleID:    in.CircleID,
		Title:       title,
		Description: in.Description,
		GoalType:    goalType,
		IsActive:    true,
	}
	if err := db.Create(goal).Error; err != nil {
		return nil, persistenceError("create goal", err)
	}
	return goal, nil
}

type CheckInInput struct {
	GoalID   *uint
	TargetID *uint
	Content  string
}

// CreateCheckIn records a check-in, optionally against one of the caller's goals.
func (s *ActivityService) CreateCheckIn(ctx context.Context, userID uint, in CheckInInput) (*model.CheckIn, error) {
	if utf8.RuneCountInString(in.Content) > 255 {
		return nil, fmt.Errorf("%w: check-in content longer than 255 characters", ErrInvalidArgument)
	}

	db := s.db.WithContext(ctx)
	if in.GoalID != nil {
		var goal model.Goal
		err := db.First(&goal, *in.GoalID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("goal", *in.GoalID)
		}
		if err != nil {
			return nil, persistenceError("load goal", err)
		}
		if goal.UserID != userID {
			return nil, fmt.Errorf("%w: goal %d belongs to another user", ErrForbidden, goal.ID)
		}
	}

	checkIn := &model.CheckIn{
		UserID:   userID,
		GoalID:   in.GoalID,
		TargetID: in.TargetID,
		Content:  in.Content,
	}
	if err := db.Create(checkIn).Error; err != nil {
		return nil, persistenceError("create check-in", err)
	}
	return checkIn, nil
}

// CheckInsByAuthors returns up to limit check-ins by any of authors, newest
// first with id as tie-break. beforeID > 0 restricts to check-ins strictly
// after that one in the same order.
func (s *ActivityService) CheckInsByAuthors(ctx context.Context, authors []uint, limit int, beforeID uint) ([]model.CheckIn, error) {
	if len(authors) == 0 || limit <= 0 {
		return []model.CheckIn{}, nil
	}

	db := s.db.WithContext(ctx)
	query := db.Where("user_id IN ?", authors)

	if beforeID > 0 {
		var cursor model.CheckIn
		err := db.Select("id, created_at").First(&cursor, beforeID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown cursor %d", ErrInvalidArgument, beforeID)
		}
		if err != nil {
			return nil, persistenceError("load feed cursor", err)
		}
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var checkIns []model.CheckIn
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&checkIns).Error; err != nil {
		return nil, persistenceError("list check-ins", err)
	}
	if checkIns == nil {
		checkIns = []model.CheckIn{}
	}
	return checkIns, nil
}
