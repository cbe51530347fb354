package interactor

import (
	"context"
	"sync"
	"time"

	"github.com/mulengadev/lendstack/internal/domain/gateway"
	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/mulengadev/lendstack/internal/domain/repositories"
	"github.com/shopspring/decimal"
)

// In-memory repository fakes so interactor logic is testable without a
// running database. Coalescing and compare-and-set semantics mirror the SQL
// implementations.

type memTransactionRepo struct {
	mu   sync.Mutex
	rows map[string]*models.Transaction
}

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{rows: map[string]*models.Transaction{}}
}

func (m *memTransactionRepo) GetByExternalID(_ context.Context, externalID string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx, ok := m.rows[externalID]; ok {
		cp := *tx
		return &cp, nil
	}
	return nil, nil
}

func (m *memTransactionRepo) Insert(_ context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tx
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	m.rows[tx.ExternalID] = &cp
	return nil
}

func (m *memTransactionRepo) UpsertCoalescing(_ context.Context, depositID, payoutID string, in *models.Transaction) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.rows[depositID]
	if existing == nil {
		existing = m.rows[payoutID]
	}
	now := time.Now().UTC()

	if existing == nil {
		cp := *in
		if cp.Status == "" {
			cp.Status = models.TxPending
		}
		cp.CreatedAt = now
		cp.UpdatedAt = now
		m.rows[cp.ExternalID] = &cp
		out := cp
		return &out, nil
	}

	if in.Status != "" {
		existing.Status = in.Status
	}
	if !in.Amount.IsZero() {
		existing.Amount = in.Amount
	}
	setIfPresent(&existing.Currency, in.Currency)
	setIfPresent(&existing.OwnerID, in.OwnerID)
	setIfPresent(&existing.CounterpartyPhone, in.CounterpartyPhone)
	setIfPresent(&existing.Provider, in.Provider)
	setIfPresent(&existing.ProviderReference, in.ProviderReference)
	setIfPresent(&existing.FailureCode, in.FailureCode)
	setIfPresent(&existing.FailureMessage, in.FailureMessage)
	if len(in.RawMetadata) > 0 {
		existing.RawMetadata = in.RawMetadata
	}
	existing.UpdatedAt = now

	out := *existing
	return &out, nil
}

func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (m *memTransactionRepo) UpdateStatus(_ context.Context, externalID string, from, to models.TransactionStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.rows[externalID]
	if !ok || tx.Status != from {
		return false, nil
	}
	tx.Status = to
	tx.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *memTransactionRepo) SetLinkedLoan(_ context.Context, externalID, loanID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx, ok := m.rows[externalID]; ok {
		tx.LinkedLoanID = loanID
	}
	return nil
}

func (m *memTransactionRepo) ListInvestmentsByOwner(_ context.Context, ownerID string) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]models.Transaction, 0)
	for _, tx := range m.rows {
		if tx.Kind == models.KindInvestment && tx.OwnerID == ownerID {
			result = append(result, *tx)
		}
	}
	return result, nil
}

func (m *memTransactionRepo) ListPendingOlderThan(_ context.Context, minutes int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().UTC().Add(-time.Duration(minutes) * time.Minute)
	result := make([]models.Transaction, 0)
	for _, tx := range m.rows {
		if tx.Status == models.TxPending && tx.CreatedAt.Before(cutoff) &&
			(tx.Kind == models.KindPayment || tx.Kind == models.KindInvestment) {
			result = append(result, *tx)
		}
	}
	return result, nil
}

type memLoanRepo struct {
	mu   sync.Mutex
	rows map[string]*models.Loan

	// collaborators for the transactional disburse; set by the fixtures
	wallets      *memWalletRepo
	transactions *memTransactionRepo
}

func newMemLoanRepo() *memLoanRepo {
	return &memLoanRepo{rows: map[string]*models.Loan{}}
}

func (m *memLoanRepo) GetByID(_ context.Context, loanID string) (*models.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if loan, ok := m.rows[loanID]; ok {
		cp := *loan
		return &cp, nil
	}
	return nil, nil
}

func (m *memLoanRepo) Insert(_ context.Context, loan *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *loan
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	m.rows[loan.ID] = &cp
	return nil
}

func (m *memLoanRepo) UpdateStatus(_ context.Context, loanID string, expected, next models.LoanStatus, u repositories.LoanStatusUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.rows[loanID]
	if !ok || loan.Status != expected {
		return false, nil
	}
	loan.Status = next
	if u.ApprovedBy != "" {
		loan.ApprovedBy = u.ApprovedBy
	}
	if u.ApprovedAt != nil {
		loan.ApprovedAt = u.ApprovedAt
	}
	if u.DisbursedAt != nil {
		loan.DisbursedAt = u.DisbursedAt
	}
	loan.UpdatedAt = time.Now().UTC()
	return true, nil
}

// Disburse mirrors the all-or-nothing database transaction: the credit runs
// first and any failure leaves the loan untouched.
func (m *memLoanRepo) Disburse(ctx context.Context, d repositories.Disbursement) (bool, decimal.Decimal, error) {
	m.mu.Lock()
	loan, ok := m.rows[d.LoanID]
	if !ok || loan.Status != models.LoanApproved {
		m.mu.Unlock()
		return false, decimal.Decimal{}, nil
	}
	m.mu.Unlock()

	balance, err := m.wallets.Credit(ctx, d.BorrowerID, d.Currency, d.Amount)
	if err != nil {
		return false, decimal.Decimal{}, err
	}

	m.mu.Lock()
	at := d.At
	loan.Status = models.LoanDisbursed
	loan.DisbursedAt = &at
	loan.UpdatedAt = time.Now().UTC()
	m.mu.Unlock()

	err = m.transactions.Insert(ctx, &models.Transaction{
		ExternalID:   d.AuditID,
		Kind:         models.KindLoanDisbursement,
		Status:       models.TxCompleted,
		Amount:       d.Amount,
		Currency:     d.Currency,
		OwnerID:      d.BorrowerID,
		LinkedLoanID: d.LoanID,
	})
	if err != nil {
		return false, decimal.Decimal{}, err
	}
	return true, balance, nil
}

func (m *memLoanRepo) ListByStatus(_ context.Context, status models.LoanStatus) ([]models.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]models.Loan, 0)
	for _, loan := range m.rows {
		if loan.Status == status {
			result = append(result, *loan)
		}
	}
	return result, nil
}

func (m *memLoanRepo) ListByUser(_ context.Context, userID string) ([]models.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]models.Loan, 0)
	for _, loan := range m.rows {
		if loan.BorrowerID == userID {
			result = append(result, *loan)
		}
	}
	return result, nil
}

type memWalletRepo struct {
	mu      sync.Mutex
	wallets map[string]*models.Wallet

	// failNext makes the next Credit call fail once, leaving balances alone
	failNext error
}

func newMemWalletRepo() *memWalletRepo {
	return &memWalletRepo{wallets: map[string]*models.Wallet{}}
}

func (m *memWalletRepo) GetByUserID(_ context.Context, userID string) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.wallets[userID]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, nil
}

func (m *memWalletRepo) Credit(_ context.Context, userID, currency string, amount decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return decimal.Decimal{}, err
	}
	w, ok := m.wallets[userID]
	if !ok {
		w = &models.Wallet{UserID: userID, Balance: decimal.Zero, Currency: currency, CreatedAt: time.Now().UTC()}
		m.wallets[userID] = w
	}
	w.Balance = w.Balance.Add(amount)
	w.UpdatedAt = time.Now().UTC()
	return w.Balance, nil
}

type memNotificationRepo struct {
	mu    sync.Mutex
	seen  map[string]bool
	queue []models.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{seen: map[string]bool{}}
}

func (m *memNotificationRepo) Enqueue(_ context.Context, ownerID, message, dedupKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[dedupKey] {
		return false, nil
	}
	m.seen[dedupKey] = true
	m.queue = append(m.queue, models.Notification{
		ID:        int64(len(m.queue) + 1),
		OwnerID:   ownerID,
		Message:   message,
		DedupKey:  dedupKey,
		CreatedAt: time.Now().UTC(),
	})
	return true, nil
}

func (m *memNotificationRepo) ListByOwner(_ context.Context, ownerID string) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]models.Notification, 0)
	for _, n := range m.queue {
		if n.OwnerID == ownerID {
			result = append(result, n)
		}
	}
	return result, nil
}

// fakeGateway answers with canned results and records every request.
type fakeGateway struct {
	mu       sync.Mutex
	deposits []gateway.DepositRequest
	payouts  []gateway.PayoutRequest
	polls    []string
	status   models.TransactionStatus
	err      error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{status: models.TxPending}
}

func (g *fakeGateway) InitiateDeposit(_ context.Context, req gateway.DepositRequest) (*gateway.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.deposits = append(g.deposits, req)
	return &gateway.Result{ExternalID: req.DepositID, Status: g.status}, nil
}

func (g *fakeGateway) InitiatePayout(_ context.Context, req gateway.PayoutRequest) (*gateway.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.payouts = append(g.payouts, req)
	return &gateway.Result{ExternalID: req.PayoutID, Status: g.status}, nil
}

func (g *fakeGateway) DepositStatus(_ context.Context, depositID string) (*gateway.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.polls = append(g.polls, depositID)
	return &gateway.Result{ExternalID: depositID, Status: g.status}, nil
}
