package legacy

import (
	"context"

	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/mulengadev/lendstack/internal/domain/repositories"
	"github.com/mulengadev/lendstack/pkg/log"
	"github.com/rs/zerolog"
)

// Backfiller migrates estack_transactions rows into the structured transaction
// and loan tables. It is idempotent: rows whose recovered id already exists
// are skipped, so the migration can be re-run after a partial failure.
type Backfiller struct {
	legacy       repositories.LegacyRepository
	transactions repositories.TransactionRepository
	loans        repositories.LoanRepository
	logger       *zerolog.Logger
}

func NewBackfiller(legacy repositories.LegacyRepository, transactions repositories.TransactionRepository, loans repositories.LoanRepository) *Backfiller {
	l := log.GetLogger()
	return &Backfiller{
		legacy:       legacy,
		transactions: transactions,
		loans:        loans,
		logger:       &l,
	}
}

type BackfillReport struct {
	Transactions int
	Loans        int
	Skipped      int
	Unparseable  int
}

func (b *Backfiller) Run(ctx context.Context) (*BackfillReport, error) {
	rows, err := b.legacy.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &BackfillReport{}
	for _, row := range rows {
		rec, err := Parse(row.NameOfTransaction)
		if err != nil {
			b.logger.Warn().Err(err).Str("row", row.NameOfTransaction).Msg("skipping unparseable legacy row")
			report.Unparseable++
			continue
		}

		switch rec.Kind {
		case KindDeposit:
			if err = b.migrateDeposit(ctx, rec, row.Status, report); err != nil {
				return report, err
			}
		case KindLoan:
			if err = b.migrateLoan(ctx, rec, row.Status, report); err != nil {
				return report, err
			}
		}
	}

	return report, nil
}

func (b *Backfiller) migrateDeposit(ctx context.Context, rec *Record, legacyStatus string, report *BackfillReport) error {
	existing, err := b.transactions.GetByExternalID(ctx, rec.DepositID)
	if err != nil {
		return err
	}
	if existing != nil {
		report.Skipped++
		return nil
	}

	status, err := MapTransactionStatus(legacyStatus)
	if err != nil {
		b.logger.Warn().Err(err).Str("deposit", rec.DepositID).Msg("skipping legacy deposit with unknown status")
		report.Unparseable++
		return nil
	}

	err = b.transactions.Insert(ctx, &models.Transaction{
		ExternalID: rec.DepositID,
		Kind:       models.KindInvestment,
		Status:     status,
		Amount:     rec.Amount,
		Currency:   rec.Currency,
		OwnerID:    rec.OwnerID,
	})
	if err != nil {
		return err
	}
	report.Transactions++
	return nil
}

func (b *Backfiller) migrateLoan(ctx context.Context, rec *Record, legacyStatus string, report *BackfillReport) error {
	existing, err := b.loans.GetByID(ctx, rec.LoanID)
	if err != nil {
		return err
	}
	if existing != nil {
		report.Skipped++
		return nil
	}

	status, err := MapLoanStatus(legacyStatus)
	if err != nil {
		b.logger.Warn().Err(err).Str("loan", rec.LoanID).Msg("skipping legacy loan with unknown status")
		report.Unparseable++
		return nil
	}

	err = b.loans.Insert(ctx, &models.Loan{
		ID:                 rec.LoanID,
		BorrowerID:         rec.BorrowerPhone,
		BorrowerPhone:      rec.BorrowerPhone,
		LinkedInvestmentID: rec.InvestmentID,
		Amount:             rec.Amount,
		Status:             status,
	})
	if err != nil {
		return err
	}

	if rec.InvestmentID != "" {
		if err = b.transactions.SetLinkedLoan(ctx, rec.InvestmentID, rec.LoanID); err != nil {
			return err
		}
	}
	report.Loans++
	return nil
}
