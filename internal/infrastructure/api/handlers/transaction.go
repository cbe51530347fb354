package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mulengadev/lendstack/internal/errors"
	http2 "github.com/mulengadev/lendstack/internal/infrastructure/api/http"
	"github.com/mulengadev/lendstack/internal/usecases/dtos"
	"github.com/mulengadev/lendstack/internal/usecases/interactor"
	"github.com/mulengadev/lendstack/pkg/log"
	"github.com/rs/zerolog"
)

type TransactionHandler struct {
	interactor *interactor.TransactionInteractor
	logger     *zerolog.Logger
}

func NewTransactionHandler(interactor *interactor.TransactionInteractor) *TransactionHandler {
	logger := log.GetLogger()
	return &TransactionHandler{interactor: interactor, logger: &logger}
}

func (h *TransactionHandler) InitiateDeposit(w http.ResponseWriter, r *http.Request) {
	var dto dtos.DepositDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewValidationError(errors.ErrInvalidRequestBody))
		return
	}

	tx, err := h.interactor.InitiateDeposit(r.Context(), &dto)
	if err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedInitiateDeposit)
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tx)
}

func (h *TransactionHandler) InitiateInvestment(w http.ResponseWriter, r *http.Request) {
	var dto dtos.InvestmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewValidationError(errors.ErrInvalidRequestBody))
		return
	}

	tx, err := h.interactor.InitiateInvestment(r.Context(), &dto)
	if err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedInitiateDeposit)
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tx)
}

func (h *TransactionHandler) InitiatePayout(w http.ResponseWriter, r *http.Request) {
	var dto dtos.PayoutDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewValidationError(errors.ErrInvalidRequestBody))
		return
	}

	tx, err := h.interactor.InitiatePayout(r.Context(), &dto)
	if err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedInitiatePayout)
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tx)
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	depositID := chi.URLParam(r, http2.DepositIDParam)

	tx, err := h.interactor.GetByID(r.Context(), depositID)
	if err != nil {
		h.logger.Error().Err(err).Str("deposit_id", depositID).Msg("failed to get transaction")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(tx)
}

func (h *TransactionHandler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, http2.UserIDParam)

	investments, err := h.interactor.ListInvestmentsByOwner(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list investments")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(investments)
}
