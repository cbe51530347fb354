package legacy

import (
	"fmt"
	"strings"

	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/shopspring/decimal"
)

// The retired estack_transactions table encoded identity and state in a
// pipe-delimited display string. Two shapes were written over its lifetime:
//
//	deposit:  "ZMW1000 | user_1 | <deposit-uuid>"
//	loan:     "LOAN | ZMW500 | <borrower-phone> | <investment-uuid> | <loan-uuid>"
//
// plus occasional "INVESTMENT | K1000 | user_12 | <uuid>" rows and a
// " | Borrower:<phone>" suffix appended by a later handler revision. This
// package recovers structured records from those strings for the one-time
// backfill; nothing in the live paths writes this shape.

type RecordKind int

const (
	KindDeposit RecordKind = iota
	KindLoan
)

type Record struct {
	Kind          RecordKind
	Amount        decimal.Decimal
	Currency      string
	OwnerID       string
	DepositID     string
	BorrowerPhone string
	InvestmentID  string
	LoanID        string
	Status        string
}

// Parse recovers a Record from one legacy display string.
func Parse(name string) (*Record, error) {
	parts := splitPipes(name)
	if len(parts) < 3 {
		return nil, fmt.Errorf("unparseable legacy row %q", name)
	}

	head := strings.ToUpper(parts[0])
	if head == "LOAN" {
		return parseLoan(name, parts[1:])
	}
	if head == "INVESTMENT" {
		return parseDeposit(name, parts[1:])
	}
	return parseDeposit(name, parts)
}

func parseLoan(name string, parts []string) (*Record, error) {
	// amount | phone | investment | loan [| Borrower:phone]
	if len(parts) < 4 {
		return nil, fmt.Errorf("loan row %q missing fields", name)
	}

	amount, currency, err := parseMoney(parts[0])
	if err != nil {
		return nil, fmt.Errorf("loan row %q: %w", name, err)
	}

	rec := &Record{
		Kind:          KindLoan,
		Amount:        amount,
		Currency:      currency,
		BorrowerPhone: parts[1],
		InvestmentID:  parts[2],
		LoanID:        parts[3],
	}
	for _, p := range parts[4:] {
		if strings.HasPrefix(p, "Borrower:") {
			rec.BorrowerPhone = strings.TrimPrefix(p, "Borrower:")
		}
	}
	return rec, nil
}

func parseDeposit(name string, parts []string) (*Record, error) {
	if len(parts) < 3 {
		return nil, fmt.Errorf("deposit row %q missing fields", name)
	}

	amount, currency, err := parseMoney(parts[0])
	if err != nil {
		return nil, fmt.Errorf("deposit row %q: %w", name, err)
	}

	rec := &Record{
		Kind:      KindDeposit,
		Amount:    amount,
		Currency:  currency,
		OwnerID:   parts[1],
		DepositID: parts[2],
	}
	for _, p := range parts[3:] {
		if strings.HasPrefix(p, "Borrower:") {
			rec.BorrowerPhone = strings.TrimPrefix(p, "Borrower:")
		}
	}
	return rec, nil
}

func splitPipes(s string) []string {
	raw := strings.Split(s, "|")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// parseMoney handles "ZMW1000", "K1000" and bare "1000" amount spellings.
func parseMoney(s string) (decimal.Decimal, string, error) {
	currency := "ZMW"
	switch {
	case strings.HasPrefix(s, "ZMW"):
		s = strings.TrimPrefix(s, "ZMW")
	case strings.HasPrefix(s, "K"):
		s = strings.TrimPrefix(s, "K")
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, "", fmt.Errorf("bad amount %q", s)
	}
	return amount, currency, nil
}

// MapTransactionStatus converts the legacy vocabulary into the structured
// transaction status set. AVAILABLE and REQUESTED both mean the investment is
// still lendable: approval is what takes it out of circulation in the new
// model.
func MapTransactionStatus(s string) (models.TransactionStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AVAILABLE", "REQUESTED", "ACTIVE", "ACCEPTED":
		return models.TxActive, nil
	case "IN_USE", "LOANED_OUT":
		return models.TxLoanedOut, nil
	case "COMPLETED", "SUCCESS":
		return models.TxCompleted, nil
	case "PENDING":
		return models.TxPending, nil
	case "FAILED":
		return models.TxFailed, nil
	}
	return "", fmt.Errorf("unknown legacy transaction status %q", s)
}

// MapLoanStatus converts legacy loan vocabulary. ACTIVE loans had been created
// but never went through the approval flow, so they re-enter as PENDING.
func MapLoanStatus(s string) (models.LoanStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ACTIVE", "PENDING", "REQUESTED":
		return models.LoanPending, nil
	case "APPROVED":
		return models.LoanApproved, nil
	case "DISBURSED":
		return models.LoanDisbursed, nil
	case "REPAID", "PAID":
		return models.LoanRepaid, nil
	case "REJECTED", "DISAPPROVED":
		return models.LoanRejected, nil
	}
	return "", fmt.Errorf("unknown legacy loan status %q", s)
}
