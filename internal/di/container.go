package di

import (
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mulengadev/lendstack/internal/config"
	"github.com/mulengadev/lendstack/internal/infrastructure/api/handlers"
	"github.com/mulengadev/lendstack/internal/infrastructure/database/repositories"
	"github.com/mulengadev/lendstack/internal/infrastructure/gateway"
	"github.com/mulengadev/lendstack/internal/usecases/interactor"
)

type Container struct {
	TransactionHandler  *handlers.TransactionHandler
	CallbackHandler     *handlers.CallbackHandler
	LoanHandler         *handlers.LoanHandler
	NotificationHandler *handlers.NotificationHandler
	SweepInteractor     *interactor.SweepInteractor
}

// NewContainer wires repositories, the gateway client, interactors and
// handlers together.
func NewContainer(db *pgxpool.Pool, cfg *config.Config) (*Container, error) {
	transactionRepository := repositories.NewTransactionRepositoryImpl(db)
	loanRepository := repositories.NewLoanRepositoryImpl(db)
	walletRepository := repositories.NewWalletRepositoryImpl(db)
	notificationRepository := repositories.NewNotificationRepositoryImpl(db)

	gatewayClient, err := gateway.NewHTTPClient(cfg.Gateway)
	if err != nil {
		return nil, err
	}

	transactionInteractor := interactor.NewTransactionInteractor(transactionRepository, gatewayClient, cfg.Gateway)
	reconcilerInteractor := interactor.NewReconcilerInteractor(transactionRepository, loanRepository, notificationRepository)
	loanInteractor := interactor.NewLoanInteractor(loanRepository, transactionRepository, walletRepository, notificationRepository)
	notificationInteractor := interactor.NewNotificationInteractor(notificationRepository)

	minAge, err := strconv.Atoi(cfg.Process.SweepMinAge)
	if err != nil {
		return nil, err
	}
	sweepInteractor := interactor.NewSweepInteractor(transactionRepository, gatewayClient, reconcilerInteractor, minAge)

	return &Container{
		TransactionHandler:  handlers.NewTransactionHandler(transactionInteractor),
		CallbackHandler:     handlers.NewCallbackHandler(reconcilerInteractor),
		LoanHandler:         handlers.NewLoanHandler(loanInteractor),
		NotificationHandler: handlers.NewNotificationHandler(notificationInteractor),
		SweepInteractor:     sweepInteractor,
	}, nil
}
