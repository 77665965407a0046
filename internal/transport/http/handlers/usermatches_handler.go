package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/matchapp-io/match-service/internal/services/auth"
	usermatchessvc "github.com/matchapp-io/match-service/internal/services/usermatches"
	"github.com/matchapp-io/match-service/internal/transport/http/dto"
	httperrors "github.com/matchapp-io/match-service/internal/transport/http/errors"
)

type UserMatchesHandler struct {
	service *usermatchessvc.Service
}

func NewUserMatchesHandler(service *usermatchessvc.Service) *UserMatchesHandler {
	return &UserMatchesHandler{service: service}
}

func (h *UserMatchesHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USER_MATCHES_SERVICE_UNAVAILABLE", "user matches service is unavailable")
		return
	}

	listing, err := h.service.ListForUser(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, usermatchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		}
		return
	}

	items := make([]dto.UserMatchItemResponse, 0, len(listing.Items))
	for _, item := range listing.Items {
		items = append(items, dto.UserMatchItemResponse{
			UserMatchID: item.UserMatchID,
			MatchID:     item.MatchID,
			User1ID:     item.User1ID,
			User2ID:     item.User2ID,
			View1:       item.View1,
			View2:       item.View2,
			CreatedAt:   item.CreatedAt,
			UpdatedAt:   item.UpdatedAt,
			Profile:     profileResponse(item.Profile),
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MyMatchesResponse{
		Count:    len(items),
		Degraded: listing.Status == usermatchessvc.StatusDegraded,
		Me:       profileResponse(listing.Me),
		Items:    items,
	})
}

func (h *UserMatchesHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USER_MATCHES_SERVICE_UNAVAILABLE", "user matches service is unavailable")
		return
	}

	var req dto.MarkSeenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if _, err := h.service.MarkSeen(r.Context(), identity.UserID, req.TargetID); err != nil {
		switch {
		case errors.Is(err, usermatchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid target user")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to mark match as seen")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MarkSeenResponse{OK: true})
}
