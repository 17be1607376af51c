package model

import "time"

type BuddyRequestStatus string

const (
	BuddyRequestPending  BuddyRequestStatus = "pending"
	BuddyRequestAccepted BuddyRequestStatus = "accepted"
	BuddyRequestDeclined BuddyRequestStatus = "declined"
)

// BuddyRequest pending -> accepted | declined. Terminal states never change.
type BuddyRequest struct {
	ID          uint               `json:"id" gorm:"primaryKey"`
	FromUserID  uint               `json:"from_user_id" gorm:"not null;index:idx_buddy_request_pair"`
	ToUserID    uint               `json:"to_user_id" gorm:"not null;index:idx_buddy_request_pair;index"`
	Status      BuddyRequestStatus `json:"status" gorm:"type:varchar(20);not null;default:pending"`
	Message     string             `json:"message" gorm:"type:varchar(500)"`
	CreatedAt   time.Time          `json:"created_at" gorm:"autoCreateTime"`
	RespondedAt *time.Time         `json:"responded_at,omitempty"`
}

func (BuddyRequest) TableName() string {
	return "buddy_requests"
}

func (r BuddyRequest) IsPending() bool {
	return r.Status == BuddyRequestPending
}

// Buddy list item.
type Buddy struct {
	UserID       uint      `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	BuddiesSince time.Time `json:"buddies_since"`
}

// BuddyRequestView is a request with both parties' display fields.
type BuddyRequestView struct {
	BuddyRequest
	FromUser *UserDisplay `json:"from_user,omitempty"`
	ToUser   *UserDisplay `json:"to_user,omitempty"`
}
