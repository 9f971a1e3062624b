package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidDate         = "invalid_date"
	codeInvalidRentalDays   = "invalid_rental_days"
	codeInvalidID           = "invalid_id"
	codeUserNotFound        = "user_not_found"
	codeBookNotFound        = "book_not_found"
	codeReservationNotFound = "reservation_not_found"
	codeNoCopiesAvailable   = "no_copies_available"
	codeAlreadyReturned     = "already_returned"
	codeReturnBeforeStart   = "return_before_start"
	codeInvalidExternalID   = "invalid_external_id"
	codeBookTitleRequired   = "book_title_required"
	codeInvalidPrice        = "invalid_price"
	codeInvalidStock        = "invalid_stock"
	codeBookExists          = "book_already_registered"
	codeUserNameRequired    = "user_name_required"
	codeUserEmailRequired   = "user_email_required"
	codeUserExists          = "user_already_registered"
	codeForbidden           = "forbidden"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
