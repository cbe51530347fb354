package errors

import (
	"encoding/json"
	"net/http"
)

type HTTPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// HandleHTTPError maps domain errors to http responses. Anything outside the
// taxonomy is reported as an opaque internal error; diagnostic text stays in
// the logs only.
func HandleHTTPError(w http.ResponseWriter, err error) {
	var httpErr *HTTPError
	switch e := err.(type) {
	case *ValidationError:
		httpErr = &HTTPError{
			Code:    http.StatusBadRequest,
			Message: e.Error(),
		}
	case *NotFoundError:
		httpErr = &HTTPError{
			Code:    http.StatusNotFound,
			Message: e.Error(),
		}
	case *ConflictError:
		httpErr = &HTTPError{
			Code:    http.StatusConflict,
			Message: e.Error(),
		}
	case *UpstreamError:
		httpErr = &HTTPError{
			Code:    http.StatusBadGateway,
			Message: "Payment gateway unavailable",
		}
	default:
		httpErr = &HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Code)
	json.NewEncoder(w).Encode(httpErr)
}
