package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mulengadev/lendstack/internal/errors"
	"github.com/mulengadev/lendstack/internal/usecases/dtos"
	"github.com/mulengadev/lendstack/internal/usecases/interactor"
	"github.com/mulengadev/lendstack/pkg/log"
	"github.com/rs/zerolog"
)

// CallbackHandler receives the asynchronous gateway callbacks. Deposit and
// payout callbacks share one payload shape and one reconciliation path; the
// gateway retries on non-2xx, so any accepted callback must answer 200.
type CallbackHandler struct {
	interactor *interactor.ReconcilerInteractor
	logger     *zerolog.Logger
}

func NewCallbackHandler(interactor *interactor.ReconcilerInteractor) *CallbackHandler {
	logger := log.GetLogger()
	return &CallbackHandler{interactor: interactor, logger: &logger}
}

func (h *CallbackHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var dto dtos.CallbackDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewValidationError(errors.ErrInvalidRequestBody))
		return
	}

	tx, err := h.interactor.Reconcile(r.Context(), &dto)
	if err != nil {
		h.logger.Error().Err(err).
			Str("deposit_id", dto.DepositID).
			Str("payout_id", dto.PayoutID).
			Msg(errors.ErrFailedReconcileCallback)
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(tx)
}
