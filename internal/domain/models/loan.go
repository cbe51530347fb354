package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Loan struct {
	ID                 string          `db:"loan_id" json:"loan_id"`
	BorrowerID         string          `db:"borrower_id" json:"borrower_id"`
	BorrowerPhone      string          `db:"borrower_phone" json:"borrower_phone"`
	LinkedInvestmentID string          `db:"linked_investment_id" json:"linked_investment_id,omitempty"`
	Amount             decimal.Decimal `db:"amount" json:"amount"`
	InterestRate       decimal.Decimal `db:"interest_rate" json:"interest_rate"`
	Status             LoanStatus      `db:"status" json:"status"`
	ExpectedReturnDate string          `db:"expected_return_date" json:"expected_return_date,omitempty"`
	ApprovedBy         string          `db:"approved_by" json:"approved_by,omitempty"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	ApprovedAt         *time.Time      `db:"approved_at" json:"approved_at,omitempty"`
	DisbursedAt        *time.Time      `db:"disbursed_at" json:"disbursed_at,omitempty"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}
