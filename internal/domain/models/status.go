package models

import (
	"fmt"
	"strings"
)

type TransactionKind string

const (
	KindPayment          TransactionKind = "payment"
	KindInvestment       TransactionKind = "investment"
	KindPayout           TransactionKind = "payout"
	KindLoanDisbursement TransactionKind = "loan_disbursement"
)

func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPayment:
		return KindPayment, nil
	case KindInvestment:
		return KindInvestment, nil
	case KindPayout:
		return KindPayout, nil
	case KindLoanDisbursement:
		return KindLoanDisbursement, nil
	}
	return "", fmt.Errorf("unknown transaction kind %q", s)
}

type TransactionStatus string

const (
	TxPending   TransactionStatus = "PENDING"
	TxAccepted  TransactionStatus = "ACCEPTED"
	TxCompleted TransactionStatus = "COMPLETED"
	TxFailed    TransactionStatus = "FAILED"
	TxActive    TransactionStatus = "ACTIVE"
	TxLoanedOut TransactionStatus = "LOANED_OUT"
	TxDisbursed TransactionStatus = "DISBURSED"
	TxRepaid    TransactionStatus = "REPAID"
)

// ParseTransactionStatus normalizes gateway vocabulary into the closed status
// set. SUCCESS and PAYMENT_COMPLETED are synonyms for COMPLETED across the
// gateway's deposit and payout callbacks.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING", "SUBMITTED":
		return TxPending, nil
	case "ACCEPTED", "ENQUEUED":
		return TxAccepted, nil
	case "COMPLETED", "SUCCESS", "PAYMENT_COMPLETED":
		return TxCompleted, nil
	case "FAILED", "REJECTED":
		return TxFailed, nil
	case "ACTIVE":
		return TxActive, nil
	case "LOANED_OUT", "IN_USE":
		return TxLoanedOut, nil
	case "DISBURSED":
		return TxDisbursed, nil
	case "REPAID":
		return TxRepaid, nil
	}
	return "", fmt.Errorf("unknown transaction status %q", s)
}

// IsTerminalSuccess reports whether a gateway status means the money moved.
func (s TransactionStatus) IsTerminalSuccess() bool {
	return s == TxCompleted
}

var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TxPending:   {TxAccepted, TxCompleted, TxFailed, TxActive},
	TxAccepted:  {TxCompleted, TxFailed},
	TxCompleted: {TxActive, TxLoanedOut},
	TxActive:    {TxLoanedOut, TxDisbursed},
	TxLoanedOut: {TxActive, TxDisbursed},
	TxDisbursed: {TxActive},
	TxFailed:    {},
	TxRepaid:    {},
}

// CanTransition reports whether moving to the target status is legal. A
// self-transition is always allowed so that re-applied callbacks stay no-ops.
func (s TransactionStatus) CanTransition(to TransactionStatus) bool {
	if s == to {
		return true
	}
	for _, next := range transactionTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Lendable reports whether an investment in this status may back a new loan.
func (s TransactionStatus) Lendable() bool {
	return s == TxCompleted || s == TxActive
}

type LoanStatus string

const (
	LoanPending   LoanStatus = "PENDING"
	LoanApproved  LoanStatus = "APPROVED"
	LoanRejected  LoanStatus = "REJECTED"
	LoanDisbursed LoanStatus = "DISBURSED"
	LoanRepaid    LoanStatus = "REPAID"
)

func ParseLoanStatus(s string) (LoanStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING":
		return LoanPending, nil
	case "APPROVED":
		return LoanApproved, nil
	case "REJECTED", "DISAPPROVED":
		return LoanRejected, nil
	case "DISBURSED":
		return LoanDisbursed, nil
	case "REPAID", "COMPLETED", "SUCCESS", "PAYMENT_COMPLETED", "PAID":
		return LoanRepaid, nil
	}
	return "", fmt.Errorf("unknown loan status %q", s)
}

var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanPending:   {LoanApproved, LoanRejected},
	LoanApproved:  {LoanDisbursed},
	LoanDisbursed: {LoanRepaid},
	LoanRejected:  {},
	LoanRepaid:    {},
}

func (s LoanStatus) CanTransition(to LoanStatus) bool {
	if s == to {
		return true
	}
	for _, next := range loanTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}
