package interactor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mulengadev/lendstack/internal/config"
	"github.com/mulengadev/lendstack/internal/domain/gateway"
	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/mulengadev/lendstack/internal/domain/repositories"
	apperrors "github.com/mulengadev/lendstack/internal/errors"
	"github.com/mulengadev/lendstack/internal/usecases/dtos"
	"github.com/mulengadev/lendstack/pkg/log"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultCurrency = "ZMW"
const defaultCorrespondent = "MTN_MOMO_ZMB"

// TransactionInteractor initiates deposits and investments against the
// gateway and answers transaction lookups.
type TransactionInteractor struct {
	transactions repositories.TransactionRepository
	gateway      gateway.Client
	cfg          config.Gateway
	logger       *zerolog.Logger
}

func NewTransactionInteractor(transactions repositories.TransactionRepository, gw gateway.Client, cfg config.Gateway) *TransactionInteractor {
	l := log.GetLogger()
	return &TransactionInteractor{
		transactions: transactions,
		gateway:      gw,
		cfg:          cfg,
		logger:       &l,
	}
}

// InitiateDeposit starts a mobile-money collection. The record is written
// PENDING (or whatever the gateway answered synchronously); the callback
// settles it later.
func (i *TransactionInteractor) InitiateDeposit(ctx context.Context, dto *dtos.DepositDTO) (*models.Transaction, error) {
	phone := dto.PayerPhone()
	if phone == "" || dto.Amount.String() == "" {
		return nil, apperrors.NewValidationError("missing phone or amount")
	}
	amount, err := decimal.NewFromString(dto.Amount.String())
	if err != nil || !amount.IsPositive() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("bad amount %q", dto.Amount))
	}

	depositID := uuid.New().String()
	metadata := models.NewFieldListMetadata(
		models.MetadataField{Name: "orderId", Value: "ORD-" + depositID},
		models.MetadataField{Name: "customerId", Value: phone, PII: true},
	)

	return i.initiate(ctx, depositID, models.KindPayment, "", phone, amount, dto.Currency, dto.Correspondent, metadata)
}

// InitiateInvestment starts a deposit earmarked for lending.
func (i *TransactionInteractor) InitiateInvestment(ctx context.Context, dto *dtos.InvestmentDTO) (*models.Transaction, error) {
	phone := dto.PayerPhone()
	if phone == "" || dto.Amount.String() == "" {
		return nil, apperrors.NewValidationError("missing phone or amount")
	}
	amount, err := decimal.NewFromString(dto.Amount.String())
	if err != nil || !amount.IsPositive() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("bad amount %q", dto.Amount))
	}

	depositID := uuid.New().String()
	metadata := models.NewFieldListMetadata(
		models.MetadataField{Name: "purpose", Value: "investment"},
		models.MetadataField{Name: "userId", Value: dto.Owner(), PII: true},
	)

	return i.initiate(ctx, depositID, models.KindInvestment, dto.Owner(), phone, amount, dto.Currency, dto.Correspondent, metadata)
}

// InitiatePayout pushes money out to a recipient, typically returning an
// investment to its investor once the backing loan is repaid. The row is
// written with whatever status the gateway answered; the payout callback
// settles it, and a loan referenced in the metadata along with it.
func (i *TransactionInteractor) InitiatePayout(ctx context.Context, dto *dtos.PayoutDTO) (*models.Transaction, error) {
	phone := dto.RecipientPhone()
	if phone == "" || dto.Amount.String() == "" {
		return nil, apperrors.NewValidationError("missing phone or amount")
	}
	amount, err := decimal.NewFromString(dto.Amount.String())
	if err != nil || !amount.IsPositive() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("bad amount %q", dto.Amount))
	}

	currency := dto.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	correspondent := dto.Correspondent
	if correspondent == "" {
		correspondent = defaultCorrespondent
	}

	payoutID := uuid.New().String()
	fields := []models.MetadataField{}
	if dto.LoanID != "" {
		fields = append(fields, models.MetadataField{Name: "loanId", Value: dto.LoanID})
	}
	if dto.Owner() != "" {
		fields = append(fields, models.MetadataField{Name: "userId", Value: dto.Owner(), PII: true})
	}
	metadata := models.NewFieldListMetadata(fields...)

	result, err := i.gateway.InitiatePayout(ctx, gateway.PayoutRequest{
		PayoutID:       payoutID,
		Amount:         amount,
		Currency:       currency,
		RecipientPhone: phone,
		Correspondent:  correspondent,
		Description:    i.cfg.Description,
		Metadata:       metadata,
	})
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		ExternalID:        payoutID,
		Kind:              models.KindPayout,
		Status:            result.Status,
		Amount:            amount.Round(2),
		Currency:          currency,
		OwnerID:           dto.Owner(),
		CounterpartyPhone: phone,
		Provider:          correspondent,
		LinkedLoanID:      dto.LoanID,
		RawMetadata:       metadata.Raw(),
	}
	if err = i.transactions.Insert(ctx, tx); err != nil {
		return nil, err
	}

	i.logger.Info().
		Str("payout_id", payoutID).
		Str("loan_id", dto.LoanID).
		Str("status", string(result.Status)).
		Msg("initiated gateway payout")

	return tx, nil
}

func (i *TransactionInteractor) initiate(ctx context.Context, depositID string, kind models.TransactionKind, ownerID, phone string, amount decimal.Decimal, currency, correspondent string, metadata models.Metadata) (*models.Transaction, error) {
	if currency == "" {
		currency = defaultCurrency
	}
	if correspondent == "" {
		correspondent = defaultCorrespondent
	}

	result, err := i.gateway.InitiateDeposit(ctx, gateway.DepositRequest{
		DepositID:     depositID,
		Amount:        amount,
		Currency:      currency,
		PayerPhone:    phone,
		Correspondent: correspondent,
		Description:   i.cfg.Description,
		Metadata:      metadata,
	})
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		ExternalID:        depositID,
		Kind:              kind,
		Status:            result.Status,
		Amount:            amount.Round(2),
		Currency:          currency,
		OwnerID:           ownerID,
		CounterpartyPhone: phone,
		Provider:          correspondent,
		RawMetadata:       metadata.Raw(),
	}
	if err = i.transactions.Insert(ctx, tx); err != nil {
		return nil, err
	}

	i.logger.Info().
		Str("deposit_id", depositID).
		Str("kind", string(kind)).
		Str("status", string(result.Status)).
		Msg("initiated gateway collection")

	return tx, nil
}

// GetByID returns the transaction for deposit-status and lookup endpoints.
func (i *TransactionInteractor) GetByID(ctx context.Context, externalID string) (*models.Transaction, error) {
	tx, err := i.transactions.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, apperrors.NewNotFoundError("transaction", externalID)
	}
	return tx, nil
}

func (i *TransactionInteractor) ListInvestmentsByOwner(ctx context.Context, ownerID string) ([]models.Transaction, error) {
	return i.transactions.ListInvestmentsByOwner(ctx, ownerID)
}
