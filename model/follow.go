package model

import (
	"fmt"
	"time"
)

// RelationshipKind is the tag carried by a follow edge.
type RelationshipKind string

const (
	KindFollow RelationshipKind = "follow"
	KindBuddy  RelationshipKind = "buddy"
)

func (k RelationshipKind) Valid() bool {
	switch k {
	case KindFollow, KindBuddy:
		return true
	}
	return false
}

// ParseRelationshipKind converts the stored discriminant back into a kind.
func ParseRelationshipKind(s string) (RelationshipKind, error) {
	k := RelationshipKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown relationship kind %q", s)
	}
	return k, nil
}

// Follow is a directed edge follower -> following, one row per ordered pair.
// A buddy edge is only meaningful when the mirror row is also buddy; the
// buddy service keeps the two rows in step.
type Follow struct {
	FollowerID       uint             `json:"follower_id" gorm:"primaryKey;autoIncrement:false"`
	FollowingID      uint             `json:"following_id" gorm:"primaryKey;autoIncrement:false;index"`
	RelationshipType RelationshipKind `json:"relationship_type" gorm:"type:varchar(20);not null;default:follow"`
	CreatedAt        time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Follow) TableName() string {
	return "follows"
}

// IsBuddy reports whether this edge carries the buddy tag.
func (f Follow) IsBuddy() bool {
	return f.RelationshipType == KindBuddy
}

// Connection is a user on the other end of an edge, as returned by
// following/follower listings.
type Connection struct {
	UserDisplay
	RelationshipType RelationshipKind `json:"relationship_type"`
	Since            time.Time        `json:"since"`
}
