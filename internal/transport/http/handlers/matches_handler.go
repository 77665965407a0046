package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matchapp-io/match-service/internal/domain/model"
	"github.com/matchapp-io/match-service/internal/domain/pair"
	authsvc "github.com/matchapp-io/match-service/internal/services/auth"
	matchessvc "github.com/matchapp-io/match-service/internal/services/matches"
	"github.com/matchapp-io/match-service/internal/transport/http/dto"
	httperrors "github.com/matchapp-io/match-service/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	var req dto.CreateMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if !pair.Involves(identity.UserID, req.User1ID, req.User2ID) {
		writeForbidden(w, "FORBIDDEN", "caller is not part of the pair")
		return
	}

	result, err := h.service.Create(r.Context(), req.User1ID, req.User2ID)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid match pair")
		case errors.Is(err, matchessvc.ErrAlreadyMatched):
			writeConflict(w, "ALREADY_MATCHED", "match already exists for this pair")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create match")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.CreateMatchResponse{
		MatchID: result.MatchID,
		ChatID:  result.ChatID,
	})
}

func (h *MatchesHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	matchID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || matchID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	view, err := h.service.GetByID(r.Context(), matchID)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		case errors.Is(err, matchessvc.ErrNotFound):
			writeNotFound(w, "MATCH_NOT_FOUND", "match not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load match")
		}
		return
	}
	if !pair.Involves(identity.UserID, view.User1ID, view.User2ID) {
		writeForbidden(w, "FORBIDDEN", "caller is not part of the match")
		return
	}

	httperrors.Write(w, http.StatusOK, matchResponse(view))
}

func (h *MatchesHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	views, err := h.service.GetAll(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		return
	}

	items := make([]dto.MatchResponse, 0, len(views))
	for _, view := range views {
		items = append(items, matchResponse(view))
	}

	httperrors.Write(w, http.StatusOK, dto.MatchListResponse{Count: len(items), Items: items})
}

// Update marks the match as seen by the caller. The counterpart flag is
// carried over unchanged so acknowledgements stay monotonic.
func (h *MatchesHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	var req dto.UpdateMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if !pair.Involves(identity.UserID, req.User1ID, req.User2ID) {
		writeForbidden(w, "FORBIDDEN", "caller is not part of the pair")
		return
	}

	current, err := h.service.GetByPair(r.Context(), req.User1ID, req.User2ID)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid match pair")
		case errors.Is(err, matchessvc.ErrNotFound):
			writeNotFound(w, "MATCH_NOT_FOUND", "match not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load match")
		}
		return
	}

	view1 := current.View1 || identity.UserID == current.User1ID
	view2 := current.View2 || identity.UserID == current.User2ID

	updated, err := h.service.UpdateViews(r.Context(), current.User1ID, current.User2ID, view1, view2)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid match pair")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to update match")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UpdateMatchResponse{OK: true, Updated: updated})
}

func (h *MatchesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	matchID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || matchID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	if err := h.service.Delete(r.Context(), matchID); err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to delete match")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DeleteMatchResponse{OK: true})
}

func (h *MatchesHandler) Rank(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	ranked, err := h.service.TopMatchedUsers(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrProfileGateway):
			writeBadGateway(w, "PROFILE_GATEWAY_ERROR", "failed to resolve ranked profiles")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load ranking")
		}
		return
	}

	items := make([]dto.RankItemResponse, 0, len(ranked))
	for _, entry := range ranked {
		items = append(items, dto.RankItemResponse{
			UserID:   entry.UserID,
			MatchQty: entry.MatchQty,
			Profile:  profileResponse(entry.Profile),
		})
	}

	httperrors.Write(w, http.StatusOK, dto.RankResponse{Items: items})
}

func matchResponse(view matchessvc.MatchView) dto.MatchResponse {
	return dto.MatchResponse{
		ID:        view.ID,
		User1ID:   view.User1ID,
		User2ID:   view.User2ID,
		View1:     view.View1,
		View2:     view.View2,
		CreatedAt: view.CreatedAt,
	}
}

func profileResponse(profile *model.Profile) *dto.ProfileResponse {
	if profile == nil {
		return nil
	}
	return &dto.ProfileResponse{
		UserID:      profile.UserID,
		Name:        profile.Name,
		LastName:    profile.LastName,
		Email:       profile.Email,
		ImageURL:    profile.ImageURL,
		Description: profile.Description,
	}
}
