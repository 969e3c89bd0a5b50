package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"barista/internal/domain"
	"barista/internal/dto"
	"barista/internal/respond"
	"barista/internal/table/service"
)

type TableCoordinator interface {
	ListTablesWithStatus(ctx context.Context) ([]service.TableWithOrder, error)
	Release(ctx context.Context, tableID uint, actor string) (*domain.Table, error)
}

type TableController struct {
	tables TableCoordinator
	logger *zap.Logger
}

func NewTableController(tables TableCoordinator, logger *zap.Logger) *TableController {
	return &TableController{
		tables: tables,
		logger: logger,
	}
}

func (c *TableController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	tables, err := c.tables.ListTablesWithStatus(r.Context())
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}

	out := make([]dto.TableResponse, len(tables))
	for i, entry := range tables {
		out[i] = dto.FromTable(&entry.Table, entry.ActiveOrder)
	}
	respond.JSON(w, logger, http.StatusOK, out)
}

func (c *TableController) Release(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	tableID, ok := respond.PathID(w, logger, traceID, r, "tableId")
	if !ok {
		return
	}

	var req dto.ReleaseTableRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.ValidationError(w, logger, traceID, "invalid JSON body")
			return
		}
	}

	table, err := c.tables.Release(r.Context(), tableID, req.Actor)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}
	respond.JSON(w, logger, http.StatusOK, dto.FromTable(table, nil))
}
