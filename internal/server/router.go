package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	ledgercontroller "barista/internal/ledger/controller"
	ordercontroller "barista/internal/order/controller"
	printercontroller "barista/internal/printer/controller"
	tablecontroller "barista/internal/table/controller"
)

type Controllers struct {
	Orders  *ordercontroller.OrderController
	Tables  *tablecontroller.TableController
	Ledger  *ledgercontroller.LedgerController
	Printer *printercontroller.PrinterController
	Events  *EventsHandler
}

func NewRouter(c Controllers, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", c.Orders.Create)
		r.Get("/", c.Orders.List)
		r.Get("/{orderId}", c.Orders.Get)
		r.Post("/{orderId}/payment", c.Orders.ConfirmPayment)
		r.Post("/{orderId}/approve", c.Orders.Approve)
		r.Post("/{orderId}/reject", c.Orders.Reject)
		r.Post("/{orderId}/serve", c.Orders.MarkServed)
	})

	r.Route("/tables", func(r chi.Router) {
		r.Get("/", c.Tables.List)
		r.Post("/{tableId}/release", c.Tables.Release)
	})

	r.Route("/loyalty/{customerId}", func(r chi.Router) {
		r.Get("/", c.Ledger.LoyaltySummary)
		r.Post("/redeem", c.Ledger.RedeemPoints)
		r.Post("/topup", c.Ledger.TopUpWallet)
	})

	r.Post("/wallet/transactions/{txnId}/approve", c.Ledger.ApproveTopUp)

	r.Route("/refunds", func(r chi.Router) {
		r.Post("/", c.Ledger.RequestRefund)
		r.Post("/{refundId}/approve", c.Ledger.ApproveRefund)
		r.Post("/{refundId}/reject", c.Ledger.RejectRefund)
	})

	r.Route("/printer", func(r chi.Router) {
		r.Get("/health", c.Printer.Health)
		r.Post("/jobs/{orderId}/retry", c.Printer.Retry)
	})

	r.Get("/events/{channel}", c.Events.Stream)

	return r
}
