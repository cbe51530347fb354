package repositories

import "context"

// LegacyRow is one record of the free-text estack_transactions table, where
// identity and state were encoded in a pipe-delimited display string.
type LegacyRow struct {
	NameOfTransaction string
	Status            string
}

type LegacyRepository interface {
	ListAll(ctx context.Context) ([]LegacyRow, error)
}
