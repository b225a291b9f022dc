package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/snap2code/creditledger/internal/adapter/http/dto"
	"github.com/snap2code/creditledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrPackageNotFound),
		errors.Is(err, domain.ErrPromoCodeNotFound),
		errors.Is(err, domain.ErrConversionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrInsufficientBalanceForRefund):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOrderAlreadyCompleted),
		errors.Is(err, domain.ErrOrderNotPending),
		errors.Is(err, domain.ErrOrderNotCompleted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPromoCodeInactive),
		errors.Is(err, domain.ErrPromoCodeExpired),
		errors.Is(err, domain.ErrPromoCodeExhausted),
		errors.Is(err, domain.ErrPromoCodeAlreadyUsed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrReasonRequired),
		errors.Is(err, domain.ErrEmailRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
