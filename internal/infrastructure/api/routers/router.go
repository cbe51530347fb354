package routers

import (
	"fmt"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mulengadev/lendstack/internal/di"
	http2 "github.com/mulengadev/lendstack/internal/infrastructure/api/http"
	"github.com/mulengadev/lendstack/internal/infrastructure/api/middlewares"
)

func NewRouter(container *di.Container) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/deposits", func(r chi.Router) {
			th := container.TransactionHandler
			r.Post("/", th.InitiateDeposit)
			r.Get(fmt.Sprintf("/{%s}", http2.DepositIDParam), th.GetTransaction)
		})

		r.Post("/investments", container.TransactionHandler.InitiateInvestment)
		r.Post("/payouts", container.TransactionHandler.InitiatePayout)

		r.Route("/callbacks", func(r chi.Router) {
			ch := container.CallbackHandler
			r.Post("/deposit", ch.Reconcile)
			r.Post("/payout", ch.Reconcile)
		})

		r.Route("/loans", func(r chi.Router) {
			lh := container.LoanHandler
			r.Post("/", lh.RequestLoan)
			r.Get("/", lh.ListLoans)
			r.Route(fmt.Sprintf("/{%s}", http2.LoanIDParam), func(r chi.Router) {
				r.Get("/", lh.GetLoan)
				r.Post("/repay", lh.RepayLoan)
				r.Group(func(r chi.Router) {
					r.Use(middlewares.AdminValidationMiddleware())
					r.Post("/approve", lh.ApproveLoan)
					r.Post("/reject", lh.RejectLoan)
					r.Post("/disburse", lh.DisburseLoan)
				})
			})
		})

		r.Route(fmt.Sprintf("/users/{%s}", http2.UserIDParam), func(r chi.Router) {
			r.Get("/investments", container.TransactionHandler.ListInvestments)
			r.Get("/loans", container.LoanHandler.ListUserLoans)
			r.Get("/wallet", container.LoanHandler.GetWallet)
			r.Get("/notifications", container.NotificationHandler.ListNotifications)
		})
	})

	return router
}
