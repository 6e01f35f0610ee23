package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/glucotrack/api/internal/domain"
)

// httpError maps domain sentinel errors to HTTP status codes. Anything
// unrecognised becomes a 500 with a generic message so infrastructure
// details never leak to the client.
func httpError(w http.ResponseWriter, err error) {
	var rle *domain.RateLimitError
	if errors.As(err, &rle) {
		w.Header().Set("Retry-After", strconv.Itoa(rle.RetryAfter))
		writeError(w, http.StatusTooManyRequests, "too many requests, please wait")
		return
	}

	switch {
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many requests, please wait")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
