package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"accountability/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBuddyRequest_SelfRejected(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 1)
	svc := NewBuddyService(db, nil, nil)

	_, err := svc.SendRequest(context.Background(), users[0].ID, users[0].ID, "hi")
	assert.ErrorIs(t, err, ErrSelfRelationship)
}

func TestBuddyRequest_Validation(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 2)
	a, b := users[0].ID, users[1].ID
	svc := NewBuddyService(db, nil, nil)
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, a, 9999, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SendRequest(ctx, a, b, strings.Repeat("x", 501))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	req, err := svc.SendRequest(ctx, a, b, "keep me honest")
	require.NoError(t, err)
	assert.Equal(t, model.BuddyRequestPending, req.Status)
	assert.Nil(t, req.RespondedAt)

	_, err = svc.SendRequest(ctx, a, b, "again")
	assert.ErrorIs(t, err, ErrDuplicatePending)

	// the reverse direction is a different ordered pair
	_, err = svc.SendRequest(ctx, b, a, "")
	assert.NoError(t, err)
}

func TestBuddyAccept_SymmetricEdges(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 2)
	a, b := users[0].ID, users[1].ID
	ctx := context.Background()

	// a already follows b; accept must upgrade that row and insert b -> a.
	require.NoError(t, NewFollowService(db, nil).Follow(ctx, a, b))

	svc := NewBuddyService(db, nil, nil)
	req, err := svc.SendRequest(ctx, a, b, "")
	require.NoError(t, err)

	accepted, err := svc.Accept(ctx, req.ID, b)
	require.NoError(t, err)
	assert.Equal(t, model.BuddyRequestAccepted, accepted.Status)
	assert.NotNil(t, accepted.RespondedAt)

	assert.Equal(t, model.KindBuddy, edgeKind(t, db, a, b))
	assert.Equal(t, model.KindBuddy, edgeKind(t, db, b, a))

	listA, err := svc.ListBuddies(ctx, a)
	require.NoError(t, err)
	require.Len(t, listA, 1)
	assert.Equal(t, b, listA[0].UserID)

	listB, err := svc.ListBuddies(ctx, b)
	require.NoError(t, err)
	require.Len(t, listB, 1)
	assert.Equal(t, a, listB[0].UserID)

	_, err = svc.SendRequest(ctx, a, b, "")
	assert.ErrorIs(t, err, ErrAlreadyBuddies)
}

func TestBuddyRespond_Guards(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 3)
	a, b, c := users[0].ID, users[1].ID, users[2].ID
	svc := NewBuddyService(db, nil, nil)
	ctx := context.Background()

	_, err := svc.Accept(ctx, 9999, b)
	assert.ErrorIs(t, err, ErrNotFound)

	req, err := svc.SendRequest(ctx, a, b, "")
	require.NoError(t, err)

	_, err = svc.Accept(ctx, req.ID, c)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Decline(ctx, req.ID, a)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBuddyRequest_TerminalState(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 3)
	a, b, c := users[0].ID, users[1].ID, users[2].ID
	svc := NewBuddyService(db, nil, nil)
	ctx := context.Background()

	accepted, err := svc.SendRequest(ctx, a, b, "")
	require.NoError(t, err)
	_, err = svc.Accept(ctx, accepted.ID, b)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, accepted.ID, b)
	assert.ErrorIs(t, err, ErrAlreadyResponded)
	_, err = svc.Decline(ctx, accepted.ID, b)
	assert.ErrorIs(t, err, ErrAlreadyResponded)

	declined, err := svc.SendRequest(ctx, a, c, "")
	require.NoError(t, err)
	resp, err := svc.Decline(ctx, declined.ID, c)
	require.NoError(t, err)
	assert.Equal(t, model.BuddyRequestDeclined, resp.Status)
	assert.Equal(t, model.RelationshipKind(""), edgeKind(t, db, a, c))

	_, err = svc.Accept(ctx, declined.ID, c)
	assert.ErrorIs(t, err, ErrAlreadyResponded)
	_, err = svc.Decline(ctx, declined.ID, c)
	assert.ErrorIs(t, err, ErrAlreadyResponded)
}

func TestBuddyAccept_ConcurrentAcceptsSucceedOnce(t *testing.T) {
	db := newTestDB(t)
	rdb, _ := newTestRedis(t)
	users := seedUsers(t, db, 2)
	a, b := users[0].ID, users[1].ID
	ctx := context.Background()

	svc := NewBuddyService(db, NewAuthorCache(rdb, defaultTestTTL), NewLocker(rdb))
	req, err := svc.SendRequest(ctx, a, b, "")
	require.NoError(t, err)

	const racers = 5
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Accept(ctx, req.ID, b)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyResponded)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, model.KindBuddy, edgeKind(t, db, a, b))
	assert.Equal(t, model.KindBuddy, edgeKind(t, db, b, a))
}

func TestRemoveBuddy(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 3)
	a, b, c := users[0].ID, users[1].ID, users[2].ID
	svc := NewBuddyService(db, nil, nil)
	ctx := context.Background()

	req, err := svc.SendRequest(ctx, a, b, "")
	require.NoError(t, err)
	_, err = svc.Accept(ctx, req.ID, b)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RemoveBuddy(ctx, a, c), ErrNotBuddy)

	require.NoError(t, svc.RemoveBuddy(ctx, a, b))
	assert.Equal(t, model.KindFollow, edgeKind(t, db, a, b))
	assert.Equal(t, model.KindFollow, edgeKind(t, db, b, a))

	assert.ErrorIs(t, svc.RemoveBuddy(ctx, b, a), ErrNotBuddy)

	list, err := svc.ListBuddies(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListReceivedAndSent(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 3)
	a, b, c := users[0].ID, users[1].ID, users[2].ID
	svc := NewBuddyService(db, nil, nil)
	ctx := context.Background()

	r1, err := svc.SendRequest(ctx, a, c, "")
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, b, c, "")
	require.NoError(t, err)
	_, err = svc.Decline(ctx, r1.ID, c)
	require.NoError(t, err)

	received, err := svc.ListReceived(ctx, c)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, b, received[0].FromUserID)
	require.NotNil(t, received[0].FromUser)
	assert.Equal(t, users[1].Username, received[0].FromUser.Username)

	sent, err := svc.ListSent(ctx, a)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, model.BuddyRequestDeclined, sent[0].Status)
}

func TestBuddyRequest_MessageLimitCountsCharacters(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 3)
	svc := NewBuddyService(db, nil, nil)
	ctx := context.Background()

	req, err := svc.SendRequest(ctx, users[0].ID, users[1].ID, strings.Repeat("é", 500))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 500), req.Message)

	_, err = svc.SendRequest(ctx, users[0].ID, users[2].ID, strings.Repeat("é", 501))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuddyAccept_RollsBackWhenEdgeWriteFails(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 2)
	a, b := users[0].ID, users[1].ID
	svc := NewBuddyService(db, nil, nil)
	ctx := context.Background()

	req, err := svc.SendRequest(ctx, a, b, "")
	require.NoError(t, err)

	// fail the second follows insert, after the status update and first edge
	edgeWrites := 0
	const hook = "test:fail_second_edge"
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register(hook, func(tx *gorm.DB) {
		if tx.Statement.Table != "follows" {
			return
		}
		edgeWrites++
		if edgeWrites == 2 {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	_, err = svc.Accept(ctx, req.ID, b)
	require.Error(t, err)
	assert.Equal(t, 2, edgeWrites)

	var reloaded model.BuddyRequest
	require.NoError(t, db.First(&reloaded, req.ID).Error)
	assert.Equal(t, model.BuddyRequestPending, reloaded.Status)
	assert.Nil(t, reloaded.RespondedAt)
	assert.Equal(t, model.RelationshipKind(""), edgeKind(t, db, a, b))
	assert.Equal(t, model.RelationshipKind(""), edgeKind(t, db, b, a))

	// the request is still answerable once the store recovers
	require.NoError(t, db.Callback().Create().Remove(hook))
	_, err = svc.Accept(ctx, req.ID, b)
	require.NoError(t, err)
	assert.Equal(t, model.KindBuddy, edgeKind(t, db, a, b))
	assert.Equal(t, model.KindBuddy, edgeKind(t, db, b, a))
}
