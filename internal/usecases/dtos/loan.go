package dtos

import "encoding/json"

// LoanRequestDTO is the request-loan body.
type LoanRequestDTO struct {
	UserID             string      `json:"user_id"`
	Phone              string      `json:"phone"`
	InvestmentID       string      `json:"investment_id"`
	Amount             json.Number `json:"amount"`
	Interest           json.Number `json:"interest"`
	ExpectedReturnDate string      `json:"expected_return_date"`
}

// AdminActionDTO carries the acting admin for approve/reject/disburse.
type AdminActionDTO struct {
	AdminID string `json:"admin_id"`
}
