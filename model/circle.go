package model

import "time"

const (
	CircleRoleOwner  = "owner"
	CircleRoleAdmin  = "admin"
	CircleRoleMember = "member"
)

// ValidCircleRole reports whether role is one of owner/admin/member.
func ValidCircleRole(role string) bool {
	switch role {
	case CircleRoleOwner, CircleRoleAdmin, CircleRoleMember:
		return true
	}
	return false
}

// Circle is a named group with a membership roster.
type Circle struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(80);not null"`
	Description string    `json:"description" gorm:"type:varchar(200);not null"`
	CreatedByID uint      `json:"created_by_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Circle) TableName() string {
	return "circles"
}

// CircleMembership (circle_id, user_id) is unique.
type CircleMembership struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	CircleID uint      `json:"circle_id" gorm:"not null;uniqueIndex:ux_circle_member"`
	UserID   uint      `json:"user_id" gorm:"not null;uniqueIndex:ux_circle_member;index"`
	Role     string    `json:"role" gorm:"type:varchar(50);not null;default:member"`
	JoinedAt time.Time `json:"joined_at" gorm:"not null"`
}

func (CircleMembership) TableName() string {
	return "circle_memberships"
}

// CircleMember is a membership joined with the member's display fields.
type CircleMember struct {
	UserID   uint      `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// CircleWithMembers circle detail payload.
type CircleWithMembers struct {
	Circle
	Members []CircleMember `json:"members"`
}

// LeaderboardEntry per-member rollup inside one circle.
type LeaderboardEntry struct {
	UserID        uint       `json:"user_id"`
	Username      string     `json:"username"`
	Role          string     `json:"role"`
	JoinedAt      time.Time  `json:"joined_at"`
	TotalCheckIns int64      `json:"total_check_ins"`
	ActiveGoals   int64      `json:"active_goals"`
	LastCheckIn   *time.Time `json:"last_check_in,omitempty"`
}
