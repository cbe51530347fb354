package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/mulengadev/lendstack/internal/errors"
	http2 "github.com/mulengadev/lendstack/internal/infrastructure/api/http"
	"github.com/mulengadev/lendstack/internal/usecases/dtos"
	"github.com/mulengadev/lendstack/internal/usecases/interactor"
	"github.com/mulengadev/lendstack/pkg/log"
	"github.com/rs/zerolog"
)

type LoanHandler struct {
	interactor *interactor.LoanInteractor
	logger     *zerolog.Logger
}

func NewLoanHandler(interactor *interactor.LoanInteractor) *LoanHandler {
	logger := log.GetLogger()
	return &LoanHandler{interactor: interactor, logger: &logger}
}

func (h *LoanHandler) RequestLoan(w http.ResponseWriter, r *http.Request) {
	var dto dtos.LoanRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewValidationError(errors.ErrInvalidRequestBody))
		return
	}

	loan, err := h.interactor.Request(r.Context(), &dto)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to request loan")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(loan)
}

func (h *LoanHandler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, http2.LoanIDParam)
	adminID := r.Header.Get("Admin-ID")

	loan, err := h.interactor.Approve(r.Context(), loanID, adminID)
	if err != nil {
		h.logger.Error().Err(err).Str("loan_id", loanID).Msg("failed to approve loan")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(loan)
}

func (h *LoanHandler) RejectLoan(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, http2.LoanIDParam)
	adminID := r.Header.Get("Admin-ID")

	loan, err := h.interactor.Reject(r.Context(), loanID, adminID)
	if err != nil {
		h.logger.Error().Err(err).Str("loan_id", loanID).Msg("failed to reject loan")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(loan)
}

func (h *LoanHandler) DisburseLoan(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, http2.LoanIDParam)

	result, err := h.interactor.Disburse(r.Context(), loanID)
	if err != nil {
		h.logger.Error().Err(err).Str("loan_id", loanID).Msg("failed to disburse loan")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(struct {
		Loan       *models.Loan `json:"loan"`
		BorrowerID string       `json:"borrower_id"`
		Amount     string       `json:"amount"`
		NewBalance string       `json:"new_balance"`
	}{
		Loan:       result.Loan,
		BorrowerID: result.BorrowerID,
		Amount:     result.Amount.StringFixed(2),
		NewBalance: result.NewBalance.StringFixed(2),
	})
}

func (h *LoanHandler) RepayLoan(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, http2.LoanIDParam)

	loan, err := h.interactor.Repay(r.Context(), loanID)
	if err != nil {
		h.logger.Error().Err(err).Str("loan_id", loanID).Msg("failed to repay loan")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(loan)
}

func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, http2.LoanIDParam)

	loan, err := h.interactor.Get(r.Context(), loanID)
	if err != nil {
		h.logger.Error().Err(err).Str("loan_id", loanID).Msg("failed to get loan")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(loan)
}

// ListLoans answers the admin listing, filtered by ?status=; defaults to the
// approval queue.
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		raw = string(models.LoanPending)
	}
	status, err := models.ParseLoanStatus(raw)
	if err != nil {
		errors.HandleHTTPError(w, errors.NewValidationError(err.Error()))
		return
	}

	loans, err := h.interactor.ListByStatus(r.Context(), status)
	if err != nil {
		h.logger.Error().Err(err).Str("status", raw).Msg("failed to list loans")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(loans)
}

func (h *LoanHandler) ListUserLoans(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, http2.UserIDParam)

	loans, err := h.interactor.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list user loans")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(loans)
}

func (h *LoanHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, http2.UserIDParam)
	if userID == "" {
		errors.HandleHTTPError(w, errors.NewValidationError(errors.ErrUserIDRequired))
		return
	}

	wallet, err := h.interactor.Wallet(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to get wallet")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(wallet)
}
