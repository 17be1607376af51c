package model

import "time"

const (
	GoalTypeDaily   = "daily"
	GoalTypeWeekly  = "weekly"
	GoalTypeMonthly = "monthly"
	GoalTypeProject = "project"
	GoalTypeHabit   = "habit"
	GoalTypeCustom  = "custom"
)

func ValidGoalType(t string) bool {
	switch t {
	case GoalTypeDaily, GoalTypeWeekly, GoalTypeMonthly, GoalTypeProject, GoalTypeHabit, GoalTypeCustom:
		return true
	}
	return false
}

// Goal owned by a user, optionally scoped to a circle.
type Goal struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	CircleID    *uint     `json:"circle_id,omitempty" gorm:"index"`
	Title       string    `json:"title" gorm:"type:varchar(50);not null"`
	Description string    `json:"description,omitempty" gorm:"type:varchar(256)"`
	GoalType    string    `json:"goal_type" gorm:"type:varchar(20);not null"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Goal) TableName() string {
	return "goals"
}

// CheckIn is append-only; the feed reads it by author.
type CheckIn struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_check_in_user_created"`
	GoalID    *uint     `json:"goal_id,omitempty" gorm:"index"`
	TargetID  *uint     `json:"target_id,omitempty"`
	Content   string    `json:"content" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_check_in_user_created"`
}

func (CheckIn) TableName() string {
	return "check_ins"
}

// All returns every model managed by this service, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&BuddyRequest{},
		&Circle{},
		&CircleMembership{},
		&Goal{},
		&CheckIn{},
	}
}

// FeedItem is a check-in as shown in a feed, with its author resolved.
type FeedItem struct {
	CheckIn
	Author *UserDisplay `json:"author,omitempty"`
}
