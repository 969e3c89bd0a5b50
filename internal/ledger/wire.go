package ledger

import (
	"go.uber.org/zap"

	"barista/internal/bus"
	"barista/internal/ledger/controller"
	"barista/internal/ledger/service"
	"barista/internal/store"
)

// NewModule returns the service too: the order state machine composes the
// ledger's transactional helpers inside its own units of work.
func NewModule(st store.Store, pub bus.Publisher, logger *zap.Logger) (*service.LedgerService, *controller.LedgerController) {
	svc := service.NewLedgerService(st, pub, logger)
	return svc, controller.NewLedgerController(svc, logger)
}
