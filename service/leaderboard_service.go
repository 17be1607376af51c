package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"accountability/model"

	"gorm.io/gorm"
)

type LeaderboardService struct {
	db *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{db: db}
}

// GetCircleLeaderboard ranks circle members by check-ins on their goals in
// this circle. Only members may view it.
func (s *LeaderboardService) GetCircleLeaderboard(ctx context.Context, circleID, viewerID uint) ([]model.LeaderboardEntry, error) {
	db := s.db.WithContext(ctx)

	if _, err := retryRead(ctx, func() (*model.Circle, error) { return loadCircle(db, circleID) }); err != nil {
		return nil, err
	}
	viewer, err := retryRead(ctx, func() (*model.CircleMembership, error) { return findMembership(db, circleID, viewerID) })
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, fmt.Errorf("%w: not a member of circle %d", ErrForbidden, circleID)
	}

	members, err := retryRead(ctx, func() ([]model.CircleMember, error) { return listMembers(db, circleID) })
	if err != nil {
		return nil, err
	}
	goals, err := retryRead(ctx, func() (map[uint]int64, error) { return activeGoalCounts(db, circleID) })
	if err != nil {
		return nil, err
	}
	checkIns, err := retryRead(ctx, func() (map[uint]checkInStats, error) { return circleCheckInStats(db, circleID) })
	if err != nil {
		return nil, err
	}

	// members arrive in join order, so a stable sort keeps it as the tie-break.
	entries := make([]model.LeaderboardEntry, 0, len(members))
	for _, m := range members {
		entry := model.LeaderboardEntry{
			UserID:      m.UserID,
			Username:    m.Username,
			Role:        m.Role,
			JoinedAt:    m.JoinedAt,
			ActiveGoals: goals[m.UserID],
		}
		if st, ok := checkIns[m.UserID]; ok {
			entry.TotalCheckIns = st.total
			last := st.last
			entry.LastCheckIn = &last
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalCheckIns > entries[j].TotalCheckIns
	})
	return entries, nil
}

func activeGoalCounts(db *gorm.DB, circleID uint) (map[uint]int64, error) {
	var rows []struct {
		UserID uint
		Count  int64
	}
	if err := db.Model(&model.Goal{}).
		Select("user_id, COUNT(*) AS count").
		Where("circle_id = ? AND is_active = ?", circleID, true).
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, persistenceError("count active goals", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.UserID] = r.Count
	}
	return counts, nil
}

type checkInStats struct {
	total int64
	last  time.Time
}

// circleCheckInStats counts check-ins on circle goals, credited to the goal
// owner, with the latest timestamp per owner.
func circleCheckInStats(db *gorm.DB, circleID uint) (map[uint]checkInStats, error) {
	rows, err := db.Table("check_ins").
		Select("goals.user_id, COUNT(*), MAX(check_ins.created_at)").
		Joins("INNER JOIN goals ON goals.id = check_ins.goal_id").
		Where("goals.circle_id = ? AND check_ins.user_id = goals.user_id", circleID).
		Group("goals.user_id").
		Rows()
	if err != nil {
		return nil, persistenceError("aggregate circle check-ins", err)
	}
	defer rows.Close()

	stats := make(map[uint]checkInStats)
	for rows.Next() {
		var (
			userID uint
			total  int64
			last   interface{}
		)
		if err := rows.Scan(&userID, &total, &last); err != nil {
			return nil, persistenceError("scan circle check-ins", err)
		}
		lastAt, err := parseAggregateTime(last)
		if err != nil {
			return nil, persistenceError("parse last check-in", err)
		}
		stats[userID] = checkInStats{total: total, last: lastAt}
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("read circle check-ins", err)
	}
	return stats, nil
}

// sqlite loses the column type on aggregates and hands MAX back as text.
var aggregateTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

func parseAggregateTime(v interface{}) (time.Time, error) {
	var raw string
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		raw = t
	case []byte:
		raw = string(t)
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
	for _, layout := range aggregateTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}
