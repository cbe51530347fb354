package dtos

import (
	"encoding/json"

	"github.com/mulengadev/lendstack/internal/domain/models"
)

// DepositDTO is the initiate-deposit request body. Clients disagree on the
// phone key, so both spellings are accepted.
type DepositDTO struct {
	Phone         string      `json:"phone"`
	PhoneNumber   string      `json:"phoneNumber"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	Correspondent string      `json:"correspondent"`
}

func (d DepositDTO) PayerPhone() string {
	if d.Phone != "" {
		return d.Phone
	}
	return d.PhoneNumber
}

// InvestmentDTO is the initiate-investment request body.
type InvestmentDTO struct {
	Phone         string      `json:"phone"`
	PhoneNumber   string      `json:"phoneNumber"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	Correspondent string      `json:"correspondent"`
	UserID        string      `json:"user_id"`
	UserIDAlt     string      `json:"userId"`
}

func (d InvestmentDTO) PayerPhone() string {
	if d.Phone != "" {
		return d.Phone
	}
	return d.PhoneNumber
}

func (d InvestmentDTO) Owner() string {
	if d.UserID != "" {
		return d.UserID
	}
	return d.UserIDAlt
}

// PayoutDTO is the initiate-payout request body. LoanID ties the payout to a
// loan so the callback can settle it.
type PayoutDTO struct {
	Phone         string      `json:"phone"`
	PhoneNumber   string      `json:"phoneNumber"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	Correspondent string      `json:"correspondent"`
	UserID        string      `json:"user_id"`
	UserIDAlt     string      `json:"userId"`
	LoanID        string      `json:"loan_id"`
}

func (d PayoutDTO) RecipientPhone() string {
	if d.Phone != "" {
		return d.Phone
	}
	return d.PhoneNumber
}

func (d PayoutDTO) Owner() string {
	if d.UserID != "" {
		return d.UserID
	}
	return d.UserIDAlt
}

type accountDetails struct {
	PhoneNumber string `json:"phoneNumber"`
	Provider    string `json:"provider"`
}

type callbackParty struct {
	AccountDetails accountDetails `json:"accountDetails"`
}

type failureReason struct {
	FailureCode    string `json:"failureCode"`
	FailureMessage string `json:"failureMessage"`
}

// CallbackDTO is the asynchronous gateway callback payload, shared by deposit
// and payout flows. Exactly one of DepositID/PayoutID identifies it.
type CallbackDTO struct {
	DepositID             string          `json:"depositId"`
	PayoutID              string          `json:"payoutId"`
	Status                string          `json:"status"`
	Amount                json.Number     `json:"amount"`
	Currency              string          `json:"currency"`
	Payer                 *callbackParty  `json:"payer"`
	Recipient             *callbackParty  `json:"recipient"`
	ProviderTransactionID string          `json:"providerTransactionId"`
	FailureReason         *failureReason  `json:"failureReason"`
	Metadata              models.Metadata `json:"metadata"`
}

// CounterpartyPhone picks the payer on deposits and the recipient on payouts.
func (c CallbackDTO) CounterpartyPhone() string {
	if c.DepositID != "" && c.Payer != nil {
		return c.Payer.AccountDetails.PhoneNumber
	}
	if c.Recipient != nil {
		return c.Recipient.AccountDetails.PhoneNumber
	}
	return ""
}

func (c CallbackDTO) CounterpartyProvider() string {
	if c.DepositID != "" && c.Payer != nil {
		return c.Payer.AccountDetails.Provider
	}
	if c.Recipient != nil {
		return c.Recipient.AccountDetails.Provider
	}
	return ""
}

func (c CallbackDTO) FailureCode() string {
	if c.FailureReason == nil {
		return ""
	}
	return c.FailureReason.FailureCode
}

func (c CallbackDTO) FailureMessage() string {
	if c.FailureReason == nil {
		return ""
	}
	return c.FailureReason.FailureMessage
}
