package service

import (
	"context"
	"fmt"
	"sort"

	"accountability/model"

	"gorm.io/gorm"
)

// FeedScope selects which authors contribute to a feed.
type FeedScope string

const (
	ScopeAll       FeedScope = "all"
	ScopeFollowing FeedScope = "following"
	ScopeCircles   FeedScope = "circles"
)

var feedScopes = []FeedScope{ScopeAll, ScopeFollowing, ScopeCircles}

func ParseFeedScope(s string) (FeedScope, error) {
	for _, scope := range feedScopes {
		if string(scope) == s {
			return scope, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
}

// FeedQuery describes one page of a feed. Limit <= 0 means the default page
// size; BeforeID, when set, only returns check-ins older than that one.
type FeedQuery struct {
	ViewerID uint
	Scope    FeedScope
	Limit    int
	BeforeID uint
}

// FeedPage is one page of a feed. NextCursor is zero on the last page.
type FeedPage struct {
	Items      []model.FeedItem `json:"feed"`
	NextCursor uint             `json:"next_cursor,omitempty"`
}

type FeedService struct {
	db          *gorm.DB
	cache       *AuthorCache
	activity    *ActivityService
	users       *UserService
	pageSize    int
	maxPageSize int
}

func NewFeedService(db *gorm.DB, cache *AuthorCache, pageSize, maxPageSize int) *FeedService {
	if pageSize <= 0 {
		pageSize = 50
	}
	if maxPageSize < pageSize {
		maxPageSize = pageSize
	}
	return &FeedService{
		db:          db,
		cache:       cache,
		activity:    NewActivityService(db),
		users:       NewUserService(db),
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
	}
}

// GetFeed returns the newest check-ins visible to viewerID in scope.
func (s *FeedService) GetFeed(ctx context.Context, viewerID uint, scope FeedScope, pageSize int) ([]model.FeedItem, error) {
	page, err := s.GetFeedPage(ctx, FeedQuery{ViewerID: viewerID, Scope: scope, Limit: pageSize})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *FeedService) GetFeedPage(ctx context.Context, q FeedQuery) (*FeedPage, error) {
	if _, err := ParseFeedScope(string(q.Scope)); err != nil {
		return nil, err
	}
	limit := s.clamp(q.Limit)

	authors, err := s.ResolveAuthors(ctx, q.ViewerID, q.Scope)
	if err != nil {
		return nil, err
	}
	if len(authors) == 0 {
		return &FeedPage{Items: []model.FeedItem{}}, nil
	}

	checkIns, err := retryRead(ctx, func() ([]model.CheckIn, error) {
		return s.activity.CheckInsByAuthors(ctx, authors, limit, q.BeforeID)
	})
	if err != nil {
		return nil, err
	}

	authorIDs := make([]uint, 0, len(checkIns))
	for _, c := range checkIns {
		authorIDs = append(authorIDs, c.UserID)
	}
	displays, err := retryRead(ctx, func() (map[uint]model.UserDisplay, error) {
		return s.users.GetDisplays(ctx, authorIDs)
	})
	if err != nil {
		return nil, err
	}

	page := &FeedPage{Items: make([]model.FeedItem, 0, len(checkIns))}
	for _, c := range checkIns {
		item := model.FeedItem{CheckIn: c}
		if d, ok := displays[c.UserID]; ok {
			item.Author = &d
		}
		page.Items = append(page.Items, item)
	}
	if len(checkIns) == limit {
		page.NextCursor = checkIns[len(checkIns)-1].ID
	}
	return page, nil
}

func (s *FeedService) clamp(limit int) int {
	if limit <= 0 {
		return s.pageSize
	}
	if limit > s.maxPageSize {
		return s.maxPageSize
	}
	return limit
}

// ResolveAuthors returns the sorted, de-duplicated author set for a scope.
func (s *FeedService) ResolveAuthors(ctx context.Context, viewerID uint, scope FeedScope) ([]uint, error) {
	if ids, ok := s.cache.Get(ctx, viewerID, scope); ok {
		return ids, nil
	}

	db := s.db.WithContext(ctx)
	set := make(map[uint]struct{})

	if scope == ScopeAll {
		set[viewerID] = struct{}{}
	}
	if scope == ScopeAll || scope == ScopeFollowing {
		ids, err := retryRead(ctx, func() ([]uint, error) { return followingIDs(db, viewerID) })
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}
	if scope == ScopeAll || scope == ScopeCircles {
		ids, err := retryRead(ctx, func() ([]uint, error) { return circleMateIDs(db, viewerID) })
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}

	authors := make([]uint, 0, len(set))
	for id := range set {
		authors = append(authors, id)
	}
	sort.Slice(authors, func(i, j int) bool { return authors[i] < authors[j] })

	s.cache.Set(ctx, viewerID, scope, authors)
	return authors, nil
}
