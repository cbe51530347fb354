package interactor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mulengadev/lendstack/internal/domain/models"
	apperrors "github.com/mulengadev/lendstack/internal/errors"
	"github.com/mulengadev/lendstack/internal/usecases/dtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reconcilerFixture struct {
	transactions  *memTransactionRepo
	loans         *memLoanRepo
	notifications *memNotificationRepo
	interactor    *ReconcilerInteractor
}

func newReconcilerFixture() *reconcilerFixture {
	f := &reconcilerFixture{
		transactions:  newMemTransactionRepo(),
		loans:         newMemLoanRepo(),
		notifications: newMemNotificationRepo(),
	}
	f.interactor = NewReconcilerInteractor(f.transactions, f.loans, f.notifications)
	return f
}

func decodeCallback(t *testing.T, raw string) *dtos.CallbackDTO {
	t.Helper()
	var dto dtos.CallbackDTO
	require.NoError(t, json.Unmarshal([]byte(raw), &dto))
	return &dto
}

func TestReconcileRequiresAnID(t *testing.T) {
	f := newReconcilerFixture()

	_, err := f.interactor.Reconcile(context.Background(), &dtos.CallbackDTO{Status: "COMPLETED"})
	var verr *apperrors.ValidationError
	assert.True(t, apperrors.As(err, &verr))
}

func TestReconcileRejectsUnknownStatus(t *testing.T) {
	f := newReconcilerFixture()

	_, err := f.interactor.Reconcile(context.Background(), &dtos.CallbackDTO{
		DepositID: "dep-1",
		Status:    "EXPLODED",
	})
	var verr *apperrors.ValidationError
	require.True(t, apperrors.As(err, &verr))

	stored, err := f.transactions.GetByExternalID(context.Background(), "dep-1")
	require.NoError(t, err)
	assert.Nil(t, stored, "a rejected callback writes nothing")
}

func TestReconcileInsertsOnFirstCallback(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	dto := decodeCallback(t, `{
		"depositId": "dep-1",
		"status": "ACCEPTED",
		"amount": "250.50",
		"currency": "ZMW",
		"payer": {"accountDetails": {"phoneNumber": "260971112222", "provider": "MTN_MOMO_ZMB"}},
		"metadata": [
			{"fieldName": "orderId", "fieldValue": "ORD-42"},
			{"fieldName": "customerId", "fieldValue": "user-7", "isPII": true}
		]
	}`)

	tx, err := f.interactor.Reconcile(ctx, dto)
	require.NoError(t, err)

	assert.Equal(t, "dep-1", tx.ExternalID)
	assert.Equal(t, models.KindPayment, tx.Kind)
	assert.Equal(t, models.TxAccepted, tx.Status)
	assert.Equal(t, "250.5", tx.Amount.String())
	assert.Equal(t, "260971112222", tx.CounterpartyPhone)
	assert.Equal(t, "MTN_MOMO_ZMB", tx.Provider)
	assert.NotEmpty(t, tx.RawMetadata)
}

func TestReconcileCoalescesSparseUpdate(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	first := decodeCallback(t, `{
		"depositId": "dep-1",
		"status": "ACCEPTED",
		"amount": "250.50",
		"currency": "ZMW",
		"payer": {"accountDetails": {"phoneNumber": "260971112222", "provider": "MTN_MOMO_ZMB"}}
	}`)
	_, err := f.interactor.Reconcile(ctx, first)
	require.NoError(t, err)

	// follow-up carries only the terminal status; everything else must survive
	second := decodeCallback(t, `{
		"depositId": "dep-1",
		"status": "SUCCESS",
		"providerTransactionId": "prov-9"
	}`)
	tx, err := f.interactor.Reconcile(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, models.TxCompleted, tx.Status, "SUCCESS normalizes to COMPLETED")
	assert.Equal(t, "250.5", tx.Amount.String())
	assert.Equal(t, "260971112222", tx.CounterpartyPhone)
	assert.Equal(t, "ZMW", tx.Currency)
	assert.Equal(t, "prov-9", tx.ProviderReference)
}

func TestReconcileIsIdempotent(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	dto := decodeCallback(t, `{
		"depositId": "dep-1",
		"status": "COMPLETED",
		"amount": "100.00",
		"currency": "ZMW"
	}`)

	one, err := f.interactor.Reconcile(ctx, dto)
	require.NoError(t, err)
	two, err := f.interactor.Reconcile(ctx, dto)
	require.NoError(t, err)

	assert.Equal(t, one.ExternalID, two.ExternalID)
	assert.Equal(t, one.Status, two.Status)
	assert.Equal(t, one.Amount.String(), two.Amount.String())
	assert.Len(t, f.transactions.rows, 1)
}

func TestReconcileFailureFields(t *testing.T) {
	f := newReconcilerFixture()

	dto := decodeCallback(t, `{
		"depositId": "dep-1",
		"status": "FAILED",
		"failureReason": {"failureCode": "PAYER_LIMIT_REACHED", "failureMessage": "Limit reached"}
	}`)
	tx, err := f.interactor.Reconcile(context.Background(), dto)
	require.NoError(t, err)

	assert.Equal(t, models.TxFailed, tx.Status)
	assert.Equal(t, "PAYER_LIMIT_REACHED", tx.FailureCode)
	assert.Equal(t, "Limit reached", tx.FailureMessage)
}

func TestReconcileMetadataShapes(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	t.Run("field list marks investment", func(t *testing.T) {
		dto := decodeCallback(t, `{
			"depositId": "dep-list",
			"status": "COMPLETED",
			"amount": "1000.00",
			"metadata": [
				{"fieldName": "purpose", "fieldValue": "investment"},
				{"fieldName": "userId", "fieldValue": "investor-1", "isPII": true}
			]
		}`)
		tx, err := f.interactor.Reconcile(ctx, dto)
		require.NoError(t, err)
		assert.Equal(t, models.KindInvestment, tx.Kind)
		assert.Equal(t, "investor-1", tx.OwnerID)
	})

	t.Run("plain object marks investment", func(t *testing.T) {
		dto := decodeCallback(t, `{
			"depositId": "dep-map",
			"status": "COMPLETED",
			"amount": "1000.00",
			"metadata": {"purpose": "Investment", "userId": "investor-2"}
		}`)
		tx, err := f.interactor.Reconcile(ctx, dto)
		require.NoError(t, err)
		assert.Equal(t, models.KindInvestment, tx.Kind)
		assert.Equal(t, "investor-2", tx.OwnerID)
	})
}

func TestReconcilePayoutSettlesLoan(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	require.NoError(t, f.transactions.Insert(ctx, &models.Transaction{
		ExternalID: "inv-1",
		Kind:       models.KindInvestment,
		Status:     models.TxDisbursed,
		OwnerID:    "investor-1",
	}))
	require.NoError(t, f.loans.Insert(ctx, &models.Loan{
		ID:                 "loan-1",
		BorrowerID:         "borrower-1",
		LinkedInvestmentID: "inv-1",
		Status:             models.LoanDisbursed,
	}))

	dto := decodeCallback(t, `{
		"payoutId": "pay-1",
		"status": "COMPLETED",
		"amount": "575.00",
		"currency": "ZMW",
		"recipient": {"accountDetails": {"phoneNumber": "260971112222", "provider": "MTN_MOMO_ZMB"}},
		"metadata": {"loanId": "loan-1"}
	}`)

	tx, err := f.interactor.Reconcile(ctx, dto)
	require.NoError(t, err)
	assert.Equal(t, models.KindPayout, tx.Kind)
	assert.Equal(t, "260971112222", tx.CounterpartyPhone)

	loan, err := f.loans.GetByID(ctx, "loan-1")
	require.NoError(t, err)
	assert.Equal(t, models.LoanRepaid, loan.Status)

	investment, err := f.transactions.GetByExternalID(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, models.TxActive, investment.Status, "settled loan releases its investment")

	// delivery retries must not re-notify
	_, err = f.interactor.Reconcile(ctx, dto)
	require.NoError(t, err)

	got, err := f.notifications.ListByOwner(ctx, "borrower-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestReconcilePendingPayoutLeavesLoanAlone(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	require.NoError(t, f.loans.Insert(ctx, &models.Loan{
		ID:         "loan-1",
		BorrowerID: "borrower-1",
		Status:     models.LoanDisbursed,
	}))

	dto := decodeCallback(t, `{
		"payoutId": "pay-1",
		"status": "ACCEPTED",
		"metadata": {"loanId": "loan-1"}
	}`)
	_, err := f.interactor.Reconcile(ctx, dto)
	require.NoError(t, err)

	loan, err := f.loans.GetByID(ctx, "loan-1")
	require.NoError(t, err)
	assert.Equal(t, models.LoanDisbursed, loan.Status, "only terminal success settles the loan")
}

func TestReconcileUnknownLoanIsIgnored(t *testing.T) {
	f := newReconcilerFixture()

	dto := decodeCallback(t, `{
		"payoutId": "pay-1",
		"status": "COMPLETED",
		"metadata": {"loanId": "no-such-loan"}
	}`)
	tx, err := f.interactor.Reconcile(context.Background(), dto)
	require.NoError(t, err, "settlement is best effort; the payout itself still lands")
	assert.Equal(t, models.TxCompleted, tx.Status)
}

func TestReconcileBadAmount(t *testing.T) {
	f := newReconcilerFixture()

	_, err := f.interactor.Reconcile(context.Background(), &dtos.CallbackDTO{
		DepositID: "dep-1",
		Status:    "COMPLETED",
		Amount:    json.Number("not-money"),
	})
	var verr *apperrors.ValidationError
	assert.True(t, apperrors.As(err, &verr))
}
