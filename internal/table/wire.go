package table

import (
	"go.uber.org/zap"

	"barista/internal/bus"
	"barista/internal/store"
	"barista/internal/table/controller"
	"barista/internal/table/service"
)

func NewModule(st store.Store, pub bus.Publisher, logger *zap.Logger) *controller.TableController {
	svc := service.NewTableService(st, pub, logger)
	return controller.NewTableController(svc, logger)
}
