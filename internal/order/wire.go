package order

import (
	"go.uber.org/zap"

	"barista/internal/bus"
	"barista/internal/order/controller"
	"barista/internal/order/service"
	"barista/internal/store"
)

func NewModule(st store.Store, ledger service.FinancialLedger, queue service.PrintQueue, pub bus.Publisher, logger *zap.Logger) *controller.OrderController {
	svc := service.NewOrderService(st, ledger, queue, pub, logger)
	return controller.NewOrderController(svc, logger)
}
