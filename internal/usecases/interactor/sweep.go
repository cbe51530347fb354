package interactor

import (
	"context"
	"time"

	"github.com/mulengadev/lendstack/internal/domain/gateway"
	"github.com/mulengadev/lendstack/internal/domain/models"
	"github.com/mulengadev/lendstack/internal/domain/repositories"
	apperrors "github.com/mulengadev/lendstack/internal/errors"
	"github.com/mulengadev/lendstack/internal/usecases/dtos"
	"github.com/mulengadev/lendstack/pkg/log"
	"github.com/rs/zerolog"
)

// SweepInteractor re-polls the gateway for transactions stuck in PENDING, in
// case the callback was lost, and feeds any terminal answer back through the
// reconciler.
type SweepInteractor struct {
	transactions repositories.TransactionRepository
	gateway      gateway.Client
	reconciler   *ReconcilerInteractor
	minAge       int
	logger       *zerolog.Logger
}

func NewSweepInteractor(transactions repositories.TransactionRepository, gw gateway.Client, reconciler *ReconcilerInteractor, minAgeMinutes int) *SweepInteractor {
	l := log.GetLogger()
	return &SweepInteractor{
		transactions: transactions,
		gateway:      gw,
		reconciler:   reconciler,
		minAge:       minAgeMinutes,
		logger:       &l,
	}
}

func (s *SweepInteractor) Execute(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	pending, err := s.transactions.ListPendingOlderThan(ctx, s.minAge)
	if err != nil {
		s.logger.Error().Err(err).Msg(apperrors.ErrFailedSweepPending)
		return err
	}

	for _, tx := range pending {
		result, err := s.gateway.DepositStatus(ctx, tx.ExternalID)
		if err != nil {
			s.logger.Warn().Err(err).Str("deposit_id", tx.ExternalID).Msg("status poll failed")
			continue
		}
		if result.Status == tx.Status || !terminal(result) {
			continue
		}

		_, err = s.reconciler.Reconcile(ctx, &dtos.CallbackDTO{
			DepositID: tx.ExternalID,
			Status:    string(result.Status),
		})
		if err != nil {
			s.logger.Error().Err(err).Str("deposit_id", tx.ExternalID).Msg("failed to reconcile polled status")
			continue
		}
		s.logger.Info().Str("deposit_id", tx.ExternalID).Str("status", string(result.Status)).Msg("settled stale pending transaction")
	}

	return nil
}

func terminal(r *gateway.Result) bool {
	return r.Status.IsTerminalSuccess() || r.Status == models.TxFailed
}
