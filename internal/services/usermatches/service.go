package usermatches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matchapp-io/match-service/internal/domain/model"
	"github.com/matchapp-io/match-service/internal/domain/pair"
)

var ErrValidation = errors.New("validation error")

// Status is the three-valued outcome of the listing composition. A hard
// failure is an error, full success is StatusOK, and StatusDegraded
// means the listing is usable but every profile field is absent because
// the profile gateway was unreachable.
type Status int

const (
	StatusOK Status = iota
	StatusDegraded
)

type AckStore interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.UserMatch, error)
	MarkSeen(ctx context.Context, userA, userB int64) (*model.UserMatch, error)
}

type MatchStore interface {
	GetByUserID(ctx context.Context, userID int64) ([]model.Match, error)
}

type ProfileGateway interface {
	GetProfiles(ctx context.Context, userIDs []int64) (map[int64]model.Profile, error)
}

type Service struct {
	ackStore       AckStore
	matchStore     MatchStore
	profileGateway ProfileGateway
	logger         *zap.Logger
}

type Dependencies struct {
	AckStore       AckStore
	MatchStore     MatchStore
	ProfileGateway ProfileGateway
	Logger         *zap.Logger
}

// Item is one acknowledgement record joined with its match's view flags
// and the counterpart's profile. The requested user always occupies
// slot 1.
type Item struct {
	UserMatchID int64          `json:"user_match_id"`
	MatchID     int64          `json:"match_id"`
	User1ID     int64          `json:"user1_id"`
	User2ID     int64          `json:"user2_id"`
	View1       bool           `json:"view1"`
	View2       bool           `json:"view2"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Profile     *model.Profile `json:"profile"`
}

type Listing struct {
	Status Status
	Me     *model.Profile
	Items  []Item
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		ackStore:       deps.AckStore,
		matchStore:     deps.MatchStore,
		profileGateway: deps.ProfileGateway,
		logger:         logger,
	}
}

// ListForUser assembles the user's acknowledgement view: ledger records,
// the matching view flags, and profiles fetched in one batched gateway
// call. A dead profile gateway degrades the listing instead of failing
// it; the caller sees StatusDegraded and nil profiles.
func (s *Service) ListForUser(ctx context.Context, userID int64) (Listing, error) {
	if userID <= 0 {
		return Listing{}, ErrValidation
	}
	if s.ackStore == nil || s.matchStore == nil {
		return Listing{}, fmt.Errorf("user match dependencies are not configured")
	}

	records, err := s.ackStore.ListByUserID(ctx, userID)
	if err != nil {
		return Listing{}, fmt.Errorf("list acknowledgements: %w", err)
	}
	if len(records) == 0 {
		return Listing{Status: StatusOK, Items: []Item{}}, nil
	}

	matches, err := s.matchStore.GetByUserID(ctx, userID)
	if err != nil {
		return Listing{}, fmt.Errorf("list matches for acknowledgements: %w", err)
	}

	profiles := map[int64]model.Profile{}
	status := StatusOK
	if s.profileGateway != nil {
		resolved, err := s.profileGateway.GetProfiles(ctx, profileIDs(userID, records))
		if err != nil {
			s.logger.Warn("profile lookup failed, serving degraded listing",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			status = StatusDegraded
		} else {
			profiles = resolved
		}
	} else {
		status = StatusDegraded
	}

	listing := Listing{
		Status: status,
		Items:  composeItems(userID, records, matches, profiles),
	}
	if me, ok := profiles[userID]; ok {
		p := me
		listing.Me = &p
	}

	return listing, nil
}

// MarkSeen records that the pair has seen each other. Symmetric and
// idempotent apart from the updated_at refresh.
func (s *Service) MarkSeen(ctx context.Context, userA, userB int64) (*model.UserMatch, error) {
	if !pair.Valid(userA, userB) {
		return nil, ErrValidation
	}
	if s.ackStore == nil {
		return nil, fmt.Errorf("acknowledgement store is nil")
	}

	record, err := s.ackStore.MarkSeen(ctx, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("mark pair seen: %w", err)
	}

	return record, nil
}

// profileIDs collects the distinct id set for the single batched
// profile call: the requesting user plus every counterpart.
func profileIDs(userID int64, records []model.UserMatch) []int64 {
	seen := map[int64]bool{userID: true}
	ids := []int64{userID}
	for _, record := range records {
		counterpart := pair.Counterpart(userID, record.User1ID, record.User2ID)
		if !seen[counterpart] {
			seen[counterpart] = true
			ids = append(ids, counterpart)
		}
	}
	return ids
}

// composeItems is the pure join of (ledger records, matches, profile
// map) into the composite response. Matches are keyed by canonical pair
// so each record finds its view flags without further store access.
func composeItems(userID int64, records []model.UserMatch, matches []model.Match, profiles map[int64]model.Profile) []Item {
	type pairKey struct{ a, b int64 }

	matchByPair := make(map[pairKey]model.Match, len(matches))
	for _, m := range matches {
		a, b := pair.Canonical(m.User1ID, m.User2ID)
		matchByPair[pairKey{a, b}] = m
	}

	items := make([]Item, 0, len(records))
	for _, record := range records {
		counterpart := pair.Counterpart(userID, record.User1ID, record.User2ID)

		item := Item{
			UserMatchID: record.ID,
			User1ID:     userID,
			User2ID:     counterpart,
			CreatedAt:   record.CreatedAt,
			UpdatedAt:   record.UpdatedAt,
		}

		a, b := pair.Canonical(record.User1ID, record.User2ID)
		if m, ok := matchByPair[pairKey{a, b}]; ok {
			item.MatchID = m.ID
			item.View1, item.View2 = m.View1, m.View2
			if m.User1ID != userID {
				item.View1, item.View2 = m.View2, m.View1
			}
		}

		if profile, ok := profiles[counterpart]; ok {
			p := profile
			item.Profile = &p
		}

		items = append(items, item)
	}

	return items
}
