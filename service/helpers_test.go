package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"accountability/model"
	"accountability/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const defaultTestTTL = time.Minute

// newTestDB opens a private in-memory sqlite database with the full schema.
// A single connection keeps the memory database alive and serialises writers.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := utils.OpenDB(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func seedUsers(t *testing.T, db *gorm.DB, n int) []model.User {
	t.Helper()

	users := NewUserService(db)
	out := make([]model.User, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("user%d_%s", i+1, uuid.NewString()[:8])
		u, err := users.Create(context.Background(), name, name+"@example.com")
		require.NoError(t, err)
		out = append(out, *u)
	}
	return out
}

// seedCheckIn inserts a check-in with an explicit timestamp.
func seedCheckIn(t *testing.T, db *gorm.DB, userID uint, content string, at time.Time) model.CheckIn {
	t.Helper()

	c := model.CheckIn{UserID: userID, Content: content, CreatedAt: at}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedCircle(t *testing.T, db *gorm.DB, creatorID uint, memberIDs ...uint) uint {
	t.Helper()

	ctx := context.Background()
	circles := NewCircleService(db, nil, nil)
	c, err := circles.CreateCircle(ctx, creatorID, CircleInput{Name: "circle " + uuid.NewString()[:6]})
	require.NoError(t, err)
	for _, id := range memberIDs {
		_, err := circles.AddMember(ctx, c.ID, id, "")
		require.NoError(t, err)
	}
	return c.ID
}

func edgeKind(t *testing.T, db *gorm.DB, followerID, followingID uint) model.RelationshipKind {
	t.Helper()

	edge, err := findEdge(db, followerID, followingID)
	require.NoError(t, err)
	if edge == nil {
		return ""
	}
	return edge.RelationshipType
}
