package controller

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"barista/internal/domain"
	"barista/internal/dto"
	"barista/internal/respond"
)

type PrintPipeline interface {
	Retry(orderID uint) bool
	Health() domain.PrinterHealth
}

type PrinterController struct {
	pipeline PrintPipeline
	logger   *zap.Logger
}

func NewPrinterController(pipeline PrintPipeline, logger *zap.Logger) *PrinterController {
	return &PrinterController{
		pipeline: pipeline,
		logger:   logger,
	}
}

func (c *PrinterController) Retry(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := respond.PathID(w, logger, traceID, r, "orderId")
	if !ok {
		return
	}

	retried := c.pipeline.Retry(orderID)
	respond.JSON(w, logger, http.StatusOK, dto.RetryPrintResponse{
		OrderID: orderID,
		Retried: retried,
	})
}

func (c *PrinterController) Health(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	respond.JSON(w, logger, http.StatusOK, dto.FromPrinterHealth(c.pipeline.Health()))
}
