package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ActiveReservationCounter is the minimal interface for the per-user count.
type ActiveReservationCounter interface {
	CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// HandleUserActiveCount serves GET /users/{id}/reservations/active/count.
//
// The count is informational; any per-user limit is enforced by the caller.
func HandleUserActiveCount(svc ActiveReservationCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseUserActiveCountPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		id, err := uuid.Parse(userID)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid user id")
			return
		}

		count, err := svc.CountActiveByUser(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, activeCountResponse{
			UserID:             userID,
			ActiveReservations: count,
		})
	}
}

func parseUserActiveCountPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 5 {
		return "", false
	}
	if parts[0] != "users" || parts[2] != "reservations" || parts[3] != "active" || parts[4] != "count" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type activeCountResponse struct {
	UserID             string `json:"user_id"`
	ActiveReservations int    `json:"active_reservations"`
}
