package interactor

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mulengadev/lendstack/internal/config"
	"github.com/mulengadev/lendstack/internal/domain/models"
	apperrors "github.com/mulengadev/lendstack/internal/errors"
	"github.com/mulengadev/lendstack/internal/usecases/dtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransactionFixture() (*memTransactionRepo, *fakeGateway, *TransactionInteractor) {
	repo := newMemTransactionRepo()
	gw := newFakeGateway()
	gw.status = models.TxAccepted
	i := NewTransactionInteractor(repo, gw, config.Gateway{Description: "LendStackPay"})
	return repo, gw, i
}

func TestInitiateDepositRecordsTransaction(t *testing.T) {
	repo, gw, i := newTransactionFixture()
	ctx := context.Background()

	tx, err := i.InitiateDeposit(ctx, &dtos.DepositDTO{
		Phone:  "260971112222",
		Amount: json.Number("250.50"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.KindPayment, tx.Kind)
	assert.Equal(t, models.TxAccepted, tx.Status)
	assert.Equal(t, "250.5", tx.Amount.String())
	assert.Equal(t, defaultCurrency, tx.Currency)
	assert.Equal(t, defaultCorrespondent, tx.Provider)

	require.Len(t, gw.deposits, 1)
	assert.Equal(t, tx.ExternalID, gw.deposits[0].DepositID)
	assert.Equal(t, "LendStackPay", gw.deposits[0].Description)

	stored, err := repo.GetByExternalID(ctx, tx.ExternalID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestInitiateDepositValidation(t *testing.T) {
	_, gw, i := newTransactionFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		dto  dtos.DepositDTO
	}{
		{"missing phone", dtos.DepositDTO{Amount: "100"}},
		{"missing amount", dtos.DepositDTO{Phone: "260971112222"}},
		{"garbage amount", dtos.DepositDTO{Phone: "260971112222", Amount: "lots"}},
		{"negative amount", dtos.DepositDTO{Phone: "260971112222", Amount: "-5"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dto := tc.dto
			_, err := i.InitiateDeposit(ctx, &dto)
			var verr *apperrors.ValidationError
			assert.True(t, apperrors.As(err, &verr), "got %v", err)
		})
	}
	assert.Empty(t, gw.deposits, "invalid requests never reach the gateway")
}

func TestInitiateDepositGatewayFailure(t *testing.T) {
	repo, gw, i := newTransactionFixture()
	gw.err = apperrors.NewUpstreamError("post deposit", nil)

	_, err := i.InitiateDeposit(context.Background(), &dtos.DepositDTO{
		Phone:  "260971112222",
		Amount: "100",
	})
	var uerr *apperrors.UpstreamError
	require.True(t, apperrors.As(err, &uerr))
	assert.Empty(t, repo.rows, "no record is written for a failed initiation")
}

func TestInitiateInvestmentCarriesPurpose(t *testing.T) {
	_, gw, i := newTransactionFixture()

	tx, err := i.InitiateInvestment(context.Background(), &dtos.InvestmentDTO{
		Phone:  "260971112222",
		Amount: "1000",
		UserID: "investor-1",
	})
	require.NoError(t, err)

	assert.Equal(t, models.KindInvestment, tx.Kind)
	assert.Equal(t, "investor-1", tx.OwnerID)

	require.Len(t, gw.deposits, 1)
	view := gw.deposits[0].Metadata.View()
	assert.Equal(t, "investor-1", view.OwnerID)
	assert.True(t, view.IsInvestment())
}

func TestInitiatePayoutCarriesLoanLinkage(t *testing.T) {
	repo, gw, i := newTransactionFixture()
	ctx := context.Background()

	tx, err := i.InitiatePayout(ctx, &dtos.PayoutDTO{
		Phone:  "260971113333",
		Amount: json.Number("1000"),
		UserID: "investor-1",
		LoanID: "loan-1",
	})
	require.NoError(t, err)

	assert.Equal(t, models.KindPayout, tx.Kind)
	assert.Equal(t, models.TxAccepted, tx.Status)
	assert.Equal(t, "loan-1", tx.LinkedLoanID)
	assert.Equal(t, "investor-1", tx.OwnerID)

	require.Len(t, gw.payouts, 1)
	assert.Equal(t, tx.ExternalID, gw.payouts[0].PayoutID)
	assert.Equal(t, "260971113333", gw.payouts[0].RecipientPhone)
	view := gw.payouts[0].Metadata.View()
	assert.Equal(t, "loan-1", view.LoanID)

	stored, err := repo.GetByExternalID(ctx, tx.ExternalID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.KindPayout, stored.Kind)
}

func TestInitiatePayoutValidation(t *testing.T) {
	_, gw, i := newTransactionFixture()
	ctx := context.Background()

	for _, dto := range []dtos.PayoutDTO{
		{Amount: "100"},
		{Phone: "260971113333"},
		{Phone: "260971113333", Amount: "-5"},
	} {
		d := dto
		_, err := i.InitiatePayout(ctx, &d)
		var verr *apperrors.ValidationError
		assert.True(t, apperrors.As(err, &verr), "got %v", err)
	}
	assert.Empty(t, gw.payouts)
}

func TestGetByIDNotFound(t *testing.T) {
	_, _, i := newTransactionFixture()

	_, err := i.GetByID(context.Background(), "missing")
	var nferr *apperrors.NotFoundError
	assert.True(t, apperrors.As(err, &nferr))
}

func TestSweepSettlesStalePending(t *testing.T) {
	transactions := newMemTransactionRepo()
	loans := newMemLoanRepo()
	notifications := newMemNotificationRepo()
	gw := newFakeGateway()
	gw.status = models.TxCompleted
	reconciler := NewReconcilerInteractor(transactions, loans, notifications)
	sweep := NewSweepInteractor(transactions, gw, reconciler, 5)
	ctx := context.Background()

	require.NoError(t, transactions.Insert(ctx, &models.Transaction{
		ExternalID: "dep-stale",
		Kind:       models.KindPayment,
		Status:     models.TxPending,
	}))
	require.NoError(t, transactions.Insert(ctx, &models.Transaction{
		ExternalID: "dep-fresh",
		Kind:       models.KindPayment,
		Status:     models.TxPending,
	}))
	transactions.rows["dep-stale"].CreatedAt = time.Now().UTC().Add(-10 * time.Minute)

	require.NoError(t, sweep.Execute(ctx))

	assert.Equal(t, []string{"dep-stale"}, gw.polls, "only stale rows are polled")

	settled, err := transactions.GetByExternalID(ctx, "dep-stale")
	require.NoError(t, err)
	assert.Equal(t, models.TxCompleted, settled.Status)

	fresh, err := transactions.GetByExternalID(ctx, "dep-fresh")
	require.NoError(t, err)
	assert.Equal(t, models.TxPending, fresh.Status)
}

func TestSweepIgnoresNonTerminalAnswer(t *testing.T) {
	transactions := newMemTransactionRepo()
	gw := newFakeGateway()
	gw.status = models.TxAccepted
	reconciler := NewReconcilerInteractor(transactions, newMemLoanRepo(), newMemNotificationRepo())
	sweep := NewSweepInteractor(transactions, gw, reconciler, 5)
	ctx := context.Background()

	require.NoError(t, transactions.Insert(ctx, &models.Transaction{
		ExternalID: "dep-stale",
		Kind:       models.KindPayment,
		Status:     models.TxPending,
	}))
	transactions.rows["dep-stale"].CreatedAt = time.Now().UTC().Add(-10 * time.Minute)

	require.NoError(t, sweep.Execute(ctx))

	tx, err := transactions.GetByExternalID(ctx, "dep-stale")
	require.NoError(t, err)
	assert.Equal(t, models.TxPending, tx.Status, "ACCEPTED is not terminal, keep waiting for the callback")
}
