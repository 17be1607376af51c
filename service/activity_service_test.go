package service

import (
	"context"
	"strings"
	"testing"

	"accountability/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGoal(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 2)
	member, outsider := users[0].ID, users[1].ID
	circleID := seedCircle(t, db, member)
	svc := NewActivityService(db)
	ctx := context.Background()

	g, err := svc.CreateGoal(ctx, member, GoalInput{Title: "Read daily"})
	require.NoError(t, err)
	assert.Equal(t, model.GoalTypeDaily, g.GoalType)
	assert.True(t, g.IsActive)
	assert.Nil(t, g.CircleID)

	g, err = svc.CreateGoal(ctx, member, GoalInput{Title: "Ship it", GoalType: model.GoalTypeProject, CircleID: &circleID})
	require.NoError(t, err)
	require.NotNil(t, g.CircleID)
	assert.Equal(t, circleID, *g.CircleID)

	_, err = svc.CreateGoal(ctx, outsider, GoalInput{Title: "Sneak in", CircleID: &circleID})
	assert.ErrorIs(t, err, ErrForbidden)

	missing := uint(9999)
	_, err = svc.CreateGoal(ctx, member, GoalInput{Title: "ghost", CircleID: &missing})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateGoal(ctx, member, GoalInput{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.CreateGoal(ctx, member, GoalInput{Title: "x", GoalType: "yearly"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateCheckIn(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 2)
	a, b := users[0].ID, users[1].ID
	svc := NewActivityService(db)
	ctx := context.Background()

	goal, err := svc.CreateGoal(ctx, a, GoalInput{Title: "Run"})
	require.NoError(t, err)

	c, err := svc.CreateCheckIn(ctx, a, CheckInInput{GoalID: &goal.ID, Content: "5k"})
	require.NoError(t, err)
	assert.Equal(t, a, c.UserID)
	assert.False(t, c.CreatedAt.IsZero())

	_, err = svc.CreateCheckIn(ctx, b, CheckInInput{GoalID: &goal.ID, Content: "not mine"})
	assert.ErrorIs(t, err, ErrForbidden)

	missing := uint(9999)
	_, err = svc.CreateCheckIn(ctx, a, CheckInInput{GoalID: &missing})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateCheckIn(ctx, a, CheckInInput{Content: strings.Repeat("c", 256)})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	free, err := svc.CreateCheckIn(ctx, b, CheckInInput{Content: "no goal"})
	require.NoError(t, err)
	assert.Nil(t, free.GoalID)
}

func TestCheckInsByAuthors_EmptyAuthors(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 1)
	seedCheckIn(t, db, users[0].ID, "x", feedEpoch)

	got, err := NewActivityService(db).CheckInsByAuthors(context.Background(), nil, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestActivity_LimitsCountCharacters(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 1)
	svc := NewActivityService(db)
	ctx := context.Background()

	goal, err := svc.CreateGoal(ctx, users[0].ID, GoalInput{
		Title:       strings.Repeat("目", 50),
		Description: strings.Repeat("é", 256),
	})
	require.NoError(t, err)

	_, err = svc.CreateCheckIn(ctx, users[0].ID, CheckInInput{GoalID: &goal.ID, Content: strings.Repeat("✓", 255)})
	require.NoError(t, err)

	_, err = svc.CreateGoal(ctx, users[0].ID, GoalInput{Title: strings.Repeat("目", 51)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.CreateCheckIn(ctx, users[0].ID, CheckInInput{Content: strings.Repeat("✓", 256)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
