package http

const (
	UserIDParam    = "userId"
	LoanIDParam    = "loanId"
	DepositIDParam = "depositId"
)
