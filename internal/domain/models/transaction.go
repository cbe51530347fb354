package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one money movement: an inbound deposit, an outbound payout,
// or an internal disbursement record. ExternalID is the correlation id shared
// with the gateway; deposit and payout callbacks reference the same identity
// space.
type Transaction struct {
	ExternalID        string            `db:"external_id" json:"external_id"`
	Kind              TransactionKind   `db:"kind" json:"kind"`
	Status            TransactionStatus `db:"status" json:"status"`
	Amount            decimal.Decimal   `db:"amount" json:"amount"`
	Currency          string            `db:"currency" json:"currency"`
	OwnerID           string            `db:"owner_id" json:"owner_id,omitempty"`
	CounterpartyPhone string            `db:"counterparty_phone" json:"counterparty_phone,omitempty"`
	Provider          string            `db:"counterparty_provider" json:"counterparty_provider,omitempty"`
	ProviderReference string            `db:"provider_reference" json:"provider_reference,omitempty"`
	FailureCode       string            `db:"failure_code" json:"failure_code,omitempty"`
	FailureMessage    string            `db:"failure_message" json:"failure_message,omitempty"`
	LinkedLoanID      string            `db:"linked_loan_id" json:"linked_loan_id,omitempty"`
	RawMetadata       []byte            `db:"raw_metadata" json:"-"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}
