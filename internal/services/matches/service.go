package matches

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matchapp-io/match-service/internal/domain/model"
	"github.com/matchapp-io/match-service/internal/domain/pair"
	pgrepo "github.com/matchapp-io/match-service/internal/repo/postgres"
	redrepo "github.com/matchapp-io/match-service/internal/repo/redis"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("match not found")
	ErrAlreadyMatched = errors.New("pair already matched")
	ErrProfileGateway = errors.New("profile gateway unavailable")
)

// NoChatID marks a match whose chat provisioning failed at creation
// time. The match itself is durable; the chat link is reconciled later.
const NoChatID int64 = -1

type MatchStore interface {
	Create(ctx context.Context, userA, userB int64, createdAt time.Time) (*model.Match, error)
	GetByID(ctx context.Context, id int64) (*model.Match, error)
	GetByUserID(ctx context.Context, userID int64) ([]model.Match, error)
	GetByPair(ctx context.Context, userA, userB int64) (*model.Match, error)
	GetAll(ctx context.Context) ([]model.Match, error)
	UpdateViews(ctx context.Context, userA, userB int64, view1, view2 bool) (bool, error)
	Delete(ctx context.Context, id int64) error
	TopUsersByMatchCount(ctx context.Context, limit int) ([]model.RankEntry, error)
}

type ChatGateway interface {
	CreateChat(ctx context.Context, user1ID, user2ID int64) (int64, error)
}

type ProfileGateway interface {
	GetProfiles(ctx context.Context, userIDs []int64) (map[int64]model.Profile, error)
}

type RankCache interface {
	Get(ctx context.Context) ([]byte, error)
	Set(ctx context.Context, payload []byte, ttl time.Duration) error
}

type ChatQueue interface {
	Enqueue(ctx context.Context, pending redrepo.PendingChat) error
}

type Service struct {
	store          MatchStore
	chatGateway    ChatGateway
	profileGateway ProfileGateway
	rankCache      RankCache
	chatQueue      ChatQueue
	rankLimit      int
	rankCacheTTL   time.Duration
	now            func() time.Time
	logger         *zap.Logger
}

type Dependencies struct {
	Store          MatchStore
	ChatGateway    ChatGateway
	ProfileGateway ProfileGateway
	RankCache      RankCache
	ChatQueue      ChatQueue
	Logger         *zap.Logger
}

type Config struct {
	RankLimit    int
	RankCacheTTL time.Duration
}

// MatchView is the response shape of a match. Slot order is a
// presentation concern: lookups by user put the requested user in slot
// 1 with the flags following their owners.
type MatchView struct {
	ID        int64     `json:"id"`
	User1ID   int64     `json:"user1_id"`
	User2ID   int64     `json:"user2_id"`
	View1     bool      `json:"view1"`
	View2     bool      `json:"view2"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateResult struct {
	MatchID int64
	ChatID  int64
}

// RankedUser joins a rank entry with its profile. A nil Profile marks an
// id the users service could not resolve; rank and count stay
// authoritative without it.
type RankedUser struct {
	UserID   int64          `json:"user_id"`
	MatchQty int64          `json:"match_qty"`
	Profile  *model.Profile `json:"profile"`
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.RankLimit <= 0 {
		cfg.RankLimit = 10
	}
	if cfg.RankCacheTTL <= 0 {
		cfg.RankCacheTTL = 30 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:          deps.Store,
		chatGateway:    deps.ChatGateway,
		profileGateway: deps.ProfileGateway,
		rankCache:      deps.RankCache,
		chatQueue:      deps.ChatQueue,
		rankLimit:      cfg.RankLimit,
		rankCacheTTL:   cfg.RankCacheTTL,
		now:            time.Now,
		logger:         logger,
	}
}

// Create persists the match and then provisions its chat. The store
// write is the atomicity boundary: a failed write aborts the whole
// operation, a failed chat call does not fail a written match. On chat
// failure the result carries NoChatID and the pair is queued for the
// reconcile job.
func (s *Service) Create(ctx context.Context, user1ID, user2ID int64) (CreateResult, error) {
	if !pair.Valid(user1ID, user2ID) {
		return CreateResult{}, ErrValidation
	}
	if s.store == nil {
		return CreateResult{}, fmt.Errorf("match store is nil")
	}

	created, err := s.store.Create(ctx, user1ID, user2ID, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgrepo.ErrDuplicatePair) {
			return CreateResult{}, ErrAlreadyMatched
		}
		return CreateResult{}, fmt.Errorf("persist match: %w", err)
	}

	if s.chatGateway == nil {
		return CreateResult{MatchID: created.ID, ChatID: NoChatID}, nil
	}

	chatID, err := s.chatGateway.CreateChat(ctx, created.User1ID, created.User2ID)
	if err != nil {
		s.logger.Warn("chat provisioning failed, match kept without chat",
			zap.Int64("match_id", created.ID),
			zap.Error(err),
		)
		s.enqueuePendingChat(ctx, created)
		return CreateResult{MatchID: created.ID, ChatID: NoChatID}, nil
	}

	return CreateResult{MatchID: created.ID, ChatID: chatID}, nil
}

func (s *Service) enqueuePendingChat(ctx context.Context, created *model.Match) {
	if s.chatQueue == nil {
		return
	}

	err := s.chatQueue.Enqueue(ctx, redrepo.PendingChat{
		MatchID: created.ID,
		User1ID: created.User1ID,
		User2ID: created.User2ID,
	})
	if err != nil {
		s.logger.Warn("failed to queue pending chat", zap.Int64("match_id", created.ID), zap.Error(err))
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (MatchView, error) {
	if id <= 0 {
		return MatchView{}, ErrValidation
	}
	if s.store == nil {
		return MatchView{}, fmt.Errorf("match store is nil")
	}

	match, err := s.store.GetByID(ctx, id)
	if err != nil {
		return MatchView{}, fmt.Errorf("get match by id: %w", err)
	}
	if match == nil {
		return MatchView{}, ErrNotFound
	}

	return viewOf(*match), nil
}

// GetByUser lists the user's matches with the requested user always in
// slot 1, so consumers read the counterpart from slot 2. View flags
// travel with their owners when the slots swap.
func (s *Service) GetByUser(ctx context.Context, userID int64) ([]MatchView, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	matches, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list matches by user: %w", err)
	}

	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, viewFor(userID, m))
	}
	return views, nil
}

// GetByPair resolves the match for (a, b) or (b, a) identically.
func (s *Service) GetByPair(ctx context.Context, userA, userB int64) (MatchView, error) {
	if !pair.Valid(userA, userB) {
		return MatchView{}, ErrValidation
	}
	if s.store == nil {
		return MatchView{}, fmt.Errorf("match store is nil")
	}

	match, err := s.store.GetByPair(ctx, userA, userB)
	if err != nil {
		return MatchView{}, fmt.Errorf("get match by pair: %w", err)
	}
	if match == nil {
		return MatchView{}, ErrNotFound
	}

	return viewOf(*match), nil
}

// UpdateViews overwrites the pair's view flags. view1 belongs to userA,
// view2 to userB as passed by the caller; the canonical mapping is done
// here, and created_at is never touched. Returns false when the pair
// has no match.
func (s *Service) UpdateViews(ctx context.Context, userA, userB int64, view1, view2 bool) (bool, error) {
	if !pair.Valid(userA, userB) {
		return false, ErrValidation
	}
	if s.store == nil {
		return false, fmt.Errorf("match store is nil")
	}

	user1, user2 := pair.Canonical(userA, userB)
	if user1 != userA {
		view1, view2 = view2, view1
	}

	updated, err := s.store.UpdateViews(ctx, user1, user2, view1, view2)
	if err != nil {
		return false, fmt.Errorf("update match views: %w", err)
	}

	return updated, nil
}

// Delete removes a match by id. A missing id is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("match store is nil")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return nil
}

func (s *Service) GetAll(ctx context.Context) ([]MatchView, error) {
	if s.store == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	matches, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all matches: %w", err)
	}

	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, viewOf(m))
	}
	return views, nil
}

// TopMatchedUsers returns the most-matched users joined with their
// profiles, served from the rank cache when fresh. Unlike chat
// provisioning, a dead profile gateway fails the whole operation: a
// leaderboard without any profile data is not worth returning.
func (s *Service) TopMatchedUsers(ctx context.Context) ([]RankedUser, error) {
	if s.store == nil {
		return nil, fmt.Errorf("match store is nil")
	}
	if s.profileGateway == nil {
		return nil, fmt.Errorf("profile gateway is nil")
	}

	if cached := s.cachedRanking(ctx); cached != nil {
		return cached, nil
	}

	entries, err := s.store.TopUsersByMatchCount(ctx, s.rankLimit)
	if err != nil {
		return nil, fmt.Errorf("aggregate top matched users: %w", err)
	}
	if len(entries) == 0 {
		return []RankedUser{}, nil
	}

	userIDs := make([]int64, 0, len(entries))
	for _, entry := range entries {
		userIDs = append(userIDs, entry.UserID)
	}

	profiles, err := s.profileGateway.GetProfiles(ctx, userIDs)
	if err != nil {
		s.logger.Error("profile lookup failed for ranking", zap.Error(err))
		return nil, ErrProfileGateway
	}

	ranking := composeRanking(entries, profiles)
	s.cacheRanking(ctx, ranking)
	return ranking, nil
}

// composeRanking joins the aggregate with the profile map. Every rank
// entry yields a row; an unresolved id keeps a nil profile rather than
// being dropped.
func composeRanking(entries []model.RankEntry, profiles map[int64]model.Profile) []RankedUser {
	ranking := make([]RankedUser, 0, len(entries))
	for _, entry := range entries {
		ranked := RankedUser{
			UserID:   entry.UserID,
			MatchQty: entry.MatchQty,
		}
		if profile, ok := profiles[entry.UserID]; ok {
			p := profile
			ranked.Profile = &p
		}
		ranking = append(ranking, ranked)
	}
	return ranking
}

func (s *Service) cachedRanking(ctx context.Context) []RankedUser {
	if s.rankCache == nil {
		return nil
	}

	payload, err := s.rankCache.Get(ctx)
	if err != nil {
		s.logger.Debug("rank cache read failed", zap.Error(err))
		return nil
	}
	if payload == nil {
		return nil
	}

	var ranking []RankedUser
	if err := json.Unmarshal(payload, &ranking); err != nil {
		s.logger.Debug("rank cache payload corrupt", zap.Error(err))
		return nil
	}
	return ranking
}

func (s *Service) cacheRanking(ctx context.Context, ranking []RankedUser) {
	if s.rankCache == nil || len(ranking) == 0 {
		return
	}

	payload, err := json.Marshal(ranking)
	if err != nil {
		s.logger.Debug("marshal ranking for cache failed", zap.Error(err))
		return
	}
	if err := s.rankCache.Set(ctx, payload, s.rankCacheTTL); err != nil {
		s.logger.Debug("rank cache write failed", zap.Error(err))
	}
}

func viewOf(m model.Match) MatchView {
	return MatchView{
		ID:        m.ID,
		User1ID:   m.User1ID,
		User2ID:   m.User2ID,
		View1:     m.View1,
		View2:     m.View2,
		CreatedAt: m.CreatedAt,
	}
}

// viewFor puts userID in slot 1. When storage order differs, both users
// and both flags swap together.
func viewFor(userID int64, m model.Match) MatchView {
	view := viewOf(m)
	if m.User1ID == userID {
		return view
	}

	view.User1ID, view.User2ID = m.User2ID, m.User1ID
	view.View1, view.View2 = m.View2, m.View1
	return view
}
