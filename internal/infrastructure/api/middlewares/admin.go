package middlewares

import (
	"net/http"

	"github.com/mulengadev/lendstack/internal/errors"
	"github.com/mulengadev/lendstack/pkg/log"
)

// AdminValidationMiddleware validates the acting admin header on loan
// decision endpoints.
func AdminValidationMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.GetLogger()
			adminID := r.Header.Get("Admin-ID")

			if adminID == "" {
				logger.Error().Msg(errors.ErrAdminIDRequired)
				errors.HandleHTTPError(w, errors.NewValidationError(errors.ErrAdminIDRequired))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
