package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matchapp-io/match-service/internal/domain/model"
	usermatchessvc "github.com/matchapp-io/match-service/internal/services/usermatches"
	"github.com/matchapp-io/match-service/internal/transport/http/dto"
)

func TestMeRequiresIdentity(t *testing.T) {
	h := NewUserMatchesHandler(usermatchessvc.NewService(usermatchessvc.Dependencies{}))

	rr := httptest.NewRecorder()
	h.Me(rr, httptest.NewRequest(http.MethodGet, "/v1/matches/me", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestMeReportsDegradedListing(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	store := newHandlerStore()
	store.add(model.Match{ID: 3, User1ID: 1, User2ID: 2, CreatedAt: now})

	svc := usermatchessvc.NewService(usermatchessvc.Dependencies{
		AckStore: ackStub{records: []model.UserMatch{
			{ID: 10, User1ID: 1, User2ID: 2, CreatedAt: now, UpdatedAt: now},
		}},
		MatchStore:     store,
		ProfileGateway: profileStub{err: errors.New("users service down")},
	})
	h := NewUserMatchesHandler(svc)

	rr := httptest.NewRecorder()
	h.Me(rr, authedRequest(http.MethodGet, "/v1/matches/me", nil, 1))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}
	var payload dto.MyMatchesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Degraded {
		t.Fatalf("listing must be marked degraded")
	}
	if payload.Count != 1 || len(payload.Items) != 1 {
		t.Fatalf("unexpected item count: %d", payload.Count)
	}
	if payload.Items[0].Profile != nil || payload.Me != nil {
		t.Fatalf("degraded listing must carry no profiles")
	}
	if payload.Items[0].MatchID != 3 {
		t.Fatalf("unexpected match id: got %d want %d", payload.Items[0].MatchID, 3)
	}
}

func TestMarkSeenValidatesTarget(t *testing.T) {
	svc := usermatchessvc.NewService(usermatchessvc.Dependencies{AckStore: ackStub{}})
	h := NewUserMatchesHandler(svc)

	body := []byte(`{"target_id": 1}`)
	rr := httptest.NewRecorder()
	h.MarkSeen(rr, authedRequest(http.MethodPost, "/v1/matches/seen", body, 1))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

type ackStub struct {
	records []model.UserMatch
}

func (s ackStub) ListByUserID(context.Context, int64) ([]model.UserMatch, error) {
	return s.records, nil
}

func (s ackStub) MarkSeen(_ context.Context, userA, userB int64) (*model.UserMatch, error) {
	now := time.Now()
	return &model.UserMatch{ID: 1, User1ID: userA, User2ID: userB, CreatedAt: now, UpdatedAt: now}, nil
}
