package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// BookReservationProber is the minimal interface for the reserved probe.
type BookReservationProber interface {
	HasActiveReservationForBook(ctx context.Context, bookExternalID int64) (bool, error)
}

// HandleBookReserved serves GET /books/{externalId}/reserved, reporting
// whether any active reservation currently holds a copy of the book.
func HandleBookReserved(svc BookReservationProber) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawID, ok := parseBookReservedPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		externalID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || externalID <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidExternalID, "invalid book external id")
			return
		}

		reserved, err := svc.HasActiveReservationForBook(r.Context(), externalID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, bookReservedResponse{
			BookExternalID: externalID,
			Reserved:       reserved,
		})
	}
}

func parseBookReservedPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "books" || parts[2] != "reserved" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type bookReservedResponse struct {
	BookExternalID int64 `json:"book_external_id"`
	Reserved       bool  `json:"reserved"`
}
