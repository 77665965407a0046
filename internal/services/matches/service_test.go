package matches

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchapp-io/match-service/internal/domain/model"
	"github.com/matchapp-io/match-service/internal/domain/pair"
	pgrepo "github.com/matchapp-io/match-service/internal/repo/postgres"
	redrepo "github.com/matchapp-io/match-service/internal/repo/redis"
)

func TestCreatePersistsBeforeChat(t *testing.T) {
	store := newMemStore()
	gateway := &chatGatewayStub{chatID: 900}
	svc := NewService(Dependencies{Store: store, ChatGateway: gateway}, Config{})

	before := time.Now().UTC()
	result, err := svc.Create(context.Background(), 5, 3)
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	if result.ChatID != 900 {
		t.Fatalf("unexpected chat id: got %d want 900", result.ChatID)
	}

	view, err := svc.GetByPair(context.Background(), 5, 3)
	if err != nil {
		t.Fatalf("get by pair after create: %v", err)
	}
	if view.View1 || view.View2 {
		t.Fatalf("expected both view flags false, got %+v", view)
	}
	if view.CreatedAt.Before(before) {
		t.Fatalf("created_at %v earlier than call time %v", view.CreatedAt, before)
	}
}

func TestCreateSurvivesChatGatewayFailure(t *testing.T) {
	store := newMemStore()
	queue := &chatQueueStub{}
	svc := NewService(Dependencies{
		Store:       store,
		ChatGateway: &chatGatewayStub{err: errors.New("chat service down")},
		ChatQueue:   queue,
	}, Config{})

	result, err := svc.Create(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("create with failing chat gateway: %v", err)
	}
	if result.ChatID != NoChatID {
		t.Fatalf("expected NoChatID sentinel, got %d", result.ChatID)
	}

	if _, err := svc.GetByPair(context.Background(), 1, 2); err != nil {
		t.Fatalf("match should exist despite chat failure: %v", err)
	}

	if len(queue.entries) != 1 {
		t.Fatalf("expected 1 queued pending chat, got %d", len(queue.entries))
	}
	if queue.entries[0].MatchID != result.MatchID {
		t.Fatalf("queued wrong match id: got %d want %d", queue.entries[0].MatchID, result.MatchID)
	}
}

func TestCreateRejectsDuplicatePair(t *testing.T) {
	store := newMemStore()
	svc := NewService(Dependencies{Store: store, ChatGateway: &chatGatewayStub{chatID: 1}}, Config{})

	if _, err := svc.Create(context.Background(), 2, 9); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(context.Background(), 9, 2)
	if !errors.Is(err, ErrAlreadyMatched) {
		t.Fatalf("expected ErrAlreadyMatched for reversed duplicate, got %v", err)
	}
}

func TestCreateRejectsInvalidPair(t *testing.T) {
	svc := NewService(Dependencies{Store: newMemStore()}, Config{})

	tests := []struct {
		name string
		a, b int64
	}{
		{name: "self pair", a: 4, b: 4},
		{name: "zero user", a: 0, b: 4},
		{name: "negative user", a: -1, b: 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.a, tc.b); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestGetByPairIsSymmetric(t *testing.T) {
	store := newMemStore()
	svc := NewService(Dependencies{Store: store, ChatGateway: &chatGatewayStub{chatID: 1}}, Config{})

	if _, err := svc.Create(context.Background(), 8, 3); err != nil {
		t.Fatalf("create: %v", err)
	}

	forward, err := svc.GetByPair(context.Background(), 8, 3)
	if err != nil {
		t.Fatalf("get (8, 3): %v", err)
	}
	reversed, err := svc.GetByPair(context.Background(), 3, 8)
	if err != nil {
		t.Fatalf("get (3, 8): %v", err)
	}
	if forward.ID != reversed.ID {
		t.Fatalf("pair lookup not symmetric: %d vs %d", forward.ID, reversed.ID)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := NewService(Dependencies{Store: newMemStore()}, Config{})

	if _, err := svc.GetByID(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByUserNormalizesSlots(t *testing.T) {
	store := newMemStore()
	svc := NewService(Dependencies{Store: store, ChatGateway: &chatGatewayStub{chatID: 1}}, Config{})
	ctx := context.Background()

	// User 7 sits in both storage slots across these pairs.
	if _, err := svc.Create(ctx, 7, 12); err != nil {
		t.Fatalf("create (7, 12): %v", err)
	}
	if _, err := svc.Create(ctx, 2, 7); err != nil {
		t.Fatalf("create (2, 7): %v", err)
	}

	views, err := svc.GetByUser(ctx, 7)
	if err != nil {
		t.Fatalf("get by user: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("unexpected match count: got %d want 2", len(views))
	}
	for _, view := range views {
		if view.User1ID != 7 {
			t.Fatalf("requested user not in slot 1: %+v", view)
		}
		if view.User2ID == 7 {
			t.Fatalf("counterpart slot holds requested user: %+v", view)
		}
	}
}

func TestGetByUserFlagsFollowOwners(t *testing.T) {
	store := newMemStore()
	svc := NewService(Dependencies{Store: store, ChatGateway: &chatGatewayStub{chatID: 1}}, Config{})
	ctx := context.Background()

	// Stored canonically as (2, 7): user 7 owns the second slot.
	if _, err := svc.Create(ctx, 2, 7); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Mark user 7's flag.
	if _, err := svc.UpdateViews(ctx, 7, 2, true, false); err != nil {
		t.Fatalf("update views: %v", err)
	}

	views, err := svc.GetByUser(ctx, 7)
	if err != nil {
		t.Fatalf("get by user: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("unexpected match count: got %d", len(views))
	}
	if !views[0].View1 || views[0].View2 {
		t.Fatalf("flags did not follow owners on slot swap: %+v", views[0])
	}
}

func TestGetByUserEmpty(t *testing.T) {
	svc := NewService(Dependencies{Store: newMemStore()}, Config{})

	views, err := svc.GetByUser(context.Background(), 33)
	if err != nil {
		t.Fatalf("get by user without matches: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected empty slice, got %d entries", len(views))
	}
}

func TestUpdateViewsPreservesOtherFlagAndCreatedAt(t *testing.T) {
	store := newMemStore()
	svc := NewService(Dependencies{Store: store, ChatGateway: &chatGatewayStub{chatID: 1}}, Config{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, 4, 9); err != nil {
		t.Fatalf("create: %v", err)
	}
	original, err := svc.GetByPair(ctx, 4, 9)
	if err != nil {
		t.Fatalf("get original: %v", err)
	}

	updated, err := svc.UpdateViews(ctx, 4, 9, true, false)
	if err != nil {
		t.Fatalf("update views: %v", err)
	}
	if !updated {
		t.Fatal("expected update to report success")
	}

	after, err := svc.GetByPair(ctx, 4, 9)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if !after.View1 || after.View2 {
		t.Fatalf("unexpected flags after update: %+v", after)
	}
	if !after.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("created_at changed on update: %v -> %v", original.CreatedAt, after.CreatedAt)
	}
}

func TestUpdateViewsIsIdempotent(t *testing.T) {
	store := newMemStore()
	svc := NewService(Dependencies{Store: store, ChatGateway: &chatGatewayStub{chatID: 1}}, Config{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, 4, 9); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.UpdateViews(ctx, 4, 9, true, false); err != nil {
			t.Fatalf("update attempt %d: %v", i+1, err)
		}
	}

	after, err := svc.GetByPair(ctx, 4, 9)
	if err != nil {
		t.Fatalf("get after updates: %v", err)
	}
	if !after.View1 || after.View2 {
		t.Fatalf("unexpected flags after repeated update: %+v", after)
	}
}

func TestUpdateViewsUnknownPair(t *testing.T) {
	svc := NewService(Dependencies{Store: newMemStore()}, Config{})

	updated, err := svc.UpdateViews(context.Background(), 1, 2, true, false)
	if err != nil {
		t.Fatalf("update unknown pair: %v", err)
	}
	if updated {
		t.Fatal("expected update of unknown pair to report false")
	}
}

func TestDeleteNonexistentIsNoError(t *testing.T) {
	svc := NewService(Dependencies{Store: newMemStore()}, Config{})

	if err := svc.Delete(context.Background(), 12345); err != nil {
		t.Fatalf("delete of unknown id should not fail: %v", err)
	}
}

func TestTopMatchedUsersJoinsPartialProfiles(t *testing.T) {
	store := newMemStore()
	svc := NewService(Dependencies{
		Store:       store,
		ChatGateway: &chatGatewayStub{chatID: 1},
		ProfileGateway: &profileGatewayStub{profiles: map[int64]model.Profile{
			1: {UserID: 1, Name: "Ana"},
		}},
	}, Config{})
	ctx := context.Background()

	// User 1 ends with two matches, users 2 and 3 with one each.
	if _, err := svc.Create(ctx, 1, 2); err != nil {
		t.Fatalf("create (1, 2): %v", err)
	}
	if _, err := svc.Create(ctx, 1, 3); err != nil {
		t.Fatalf("create (1, 3): %v", err)
	}

	ranking, err := svc.TopMatchedUsers(ctx)
	if err != nil {
		t.Fatalf("top matched users: %v", err)
	}

	if len(ranking) != 3 {
		t.Fatalf("expected 3 ranked users, got %d", len(ranking))
	}
	if ranking[0].UserID != 1 || ranking[0].MatchQty != 2 {
		t.Fatalf("unexpected leader: %+v", ranking[0])
	}
	if ranking[0].Profile == nil || ranking[0].Profile.Name != "Ana" {
		t.Fatalf("leader profile missing: %+v", ranking[0])
	}
	// Tie between users 2 and 3 breaks on ascending user id.
	if ranking[1].UserID != 2 || ranking[2].UserID != 3 {
		t.Fatalf("unexpected tie-break order: %+v", ranking[1:])
	}
	if ranking[1].Profile != nil || ranking[2].Profile != nil {
		t.Fatal("unresolved users must carry nil profiles, not fabricated ones")
	}
}

func TestTopMatchedUsersFailsWhenProfileGatewayDown(t *testing.T) {
	store := newMemStore()
	svc := NewService(Dependencies{
		Store:          store,
		ChatGateway:    &chatGatewayStub{chatID: 1},
		ProfileGateway: &profileGatewayStub{err: errors.New("users service down")},
	}, Config{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, 2); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.TopMatchedUsers(ctx); !errors.Is(err, ErrProfileGateway) {
		t.Fatalf("expected ErrProfileGateway, got %v", err)
	}
}

func TestTopMatchedUsersServedFromCache(t *testing.T) {
	store := newMemStore()
	cache := &rankCacheStub{}
	svc := NewService(Dependencies{
		Store:          store,
		ChatGateway:    &chatGatewayStub{chatID: 1},
		ProfileGateway: &profileGatewayStub{profiles: map[int64]model.Profile{}},
		RankCache:      cache,
	}, Config{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, 2); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.TopMatchedUsers(ctx); err != nil {
		t.Fatalf("first ranking call: %v", err)
	}
	if _, err := svc.TopMatchedUsers(ctx); err != nil {
		t.Fatalf("second ranking call: %v", err)
	}

	if store.topCalls != 1 {
		t.Fatalf("expected 1 aggregate query, got %d", store.topCalls)
	}
}

// memStore is an in-memory MatchStore mirroring the canonical-pair
// behavior of the postgres repo.
type memStore struct {
	nextID   int64
	matches  map[int64]model.Match
	topCalls int
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, matches: map[int64]model.Match{}}
}

func (s *memStore) Create(_ context.Context, userA, userB int64, createdAt time.Time) (*model.Match, error) {
	user1, user2 := pair.Canonical(userA, userB)
	for _, m := range s.matches {
		if m.User1ID == user1 && m.User2ID == user2 {
			return nil, pgrepo.ErrDuplicatePair
		}
	}

	m := model.Match{
		ID:        s.nextID,
		User1ID:   user1,
		User2ID:   user2,
		CreatedAt: createdAt,
	}
	s.matches[m.ID] = m
	s.nextID++
	return &m, nil
}

func (s *memStore) GetByID(_ context.Context, id int64) (*model.Match, error) {
	m, ok := s.matches[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *memStore) GetByUserID(_ context.Context, userID int64) ([]model.Match, error) {
	items := make([]model.Match, 0)
	for id := int64(1); id < s.nextID; id++ {
		m, ok := s.matches[id]
		if !ok {
			continue
		}
		if m.User1ID == userID || m.User2ID == userID {
			items = append(items, m)
		}
	}
	return items, nil
}

func (s *memStore) GetByPair(_ context.Context, userA, userB int64) (*model.Match, error) {
	user1, user2 := pair.Canonical(userA, userB)
	for _, m := range s.matches {
		if m.User1ID == user1 && m.User2ID == user2 {
			match := m
			return &match, nil
		}
	}
	return nil, nil
}

func (s *memStore) GetAll(_ context.Context) ([]model.Match, error) {
	items := make([]model.Match, 0, len(s.matches))
	for id := int64(1); id < s.nextID; id++ {
		if m, ok := s.matches[id]; ok {
			items = append(items, m)
		}
	}
	return items, nil
}

func (s *memStore) UpdateViews(_ context.Context, userA, userB int64, view1, view2 bool) (bool, error) {
	user1, user2 := pair.Canonical(userA, userB)
	for id, m := range s.matches {
		if m.User1ID == user1 && m.User2ID == user2 {
			m.View1 = view1
			m.View2 = view2
			s.matches[id] = m
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Delete(_ context.Context, id int64) error {
	delete(s.matches, id)
	return nil
}

func (s *memStore) TopUsersByMatchCount(_ context.Context, limit int) ([]model.RankEntry, error) {
	s.topCalls++

	counts := map[int64]int64{}
	for _, m := range s.matches {
		counts[m.User1ID]++
		counts[m.User2ID]++
	}

	entries := make([]model.RankEntry, 0, len(counts))
	for userID, qty := range counts {
		entries = append(entries, model.RankEntry{UserID: userID, MatchQty: qty})
	}
	// count desc, user id asc, matching the SQL aggregate order.
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			less := entries[j].MatchQty > entries[i].MatchQty ||
				(entries[j].MatchQty == entries[i].MatchQty && entries[j].UserID < entries[i].UserID)
			if less {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

type chatGatewayStub struct {
	chatID int64
	err    error
	calls  int
}

func (s *chatGatewayStub) CreateChat(context.Context, int64, int64) (int64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.chatID, nil
}

type profileGatewayStub struct {
	profiles map[int64]model.Profile
	err      error
}

func (s *profileGatewayStub) GetProfiles(_ context.Context, userIDs []int64) (map[int64]model.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	resolved := make(map[int64]model.Profile, len(userIDs))
	for _, id := range userIDs {
		if profile, ok := s.profiles[id]; ok {
			resolved[id] = profile
		}
	}
	return resolved, nil
}

type rankCacheStub struct {
	payload []byte
}

func (s *rankCacheStub) Get(context.Context) ([]byte, error) {
	return s.payload, nil
}

func (s *rankCacheStub) Set(_ context.Context, payload []byte, _ time.Duration) error {
	s.payload = payload
	return nil
}

type chatQueueStub struct {
	entries []redrepo.PendingChat
}

func (s *chatQueueStub) Enqueue(_ context.Context, pending redrepo.PendingChat) error {
	s.entries = append(s.entries, pending)
	return nil
}
