package printer

import (
	"go.uber.org/zap"

	"barista/internal/printer/controller"
)

func NewModule(d *Dispatcher, logger *zap.Logger) *controller.PrinterController {
	return controller.NewPrinterController(d, logger)
}
