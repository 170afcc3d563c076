package queries

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"neurovault/application/ports"
	"neurovault/application/services"
)

// CycleHistoryQuery asks for recent maintenance cycle reports, newest first
type CycleHistoryQuery struct {
	Limit int `json:"limit" validate:"gte=0,lte=100"`
}

// Validate validates the query
func (q CycleHistoryQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	return nil
}

// CycleHistoryHandler handles the CycleHistoryQuery
type CycleHistoryHandler struct {
	maintenance *services.MaintenanceService
	logger      *zap.Logger
}

// NewCycleHistoryHandler creates a new handler instance
func NewCycleHistoryHandler(maintenance *services.MaintenanceService, logger *zap.Logger) *CycleHistoryHandler {
	return &CycleHistoryHandler{
		maintenance: maintenance,
		logger:      logger,
	}
}

// Handle executes the history query
func (h *CycleHistoryHandler) Handle(ctx context.Context, q CycleHistoryQuery) ([]*ports.CycleReport, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return h.maintenance.History(ctx, q.Limit)
}

// CycleReportQuery asks for a single cycle report by its cycle ID
type CycleReportQuery struct {
	CycleID string `json:"cycle_id" validate:"required,uuid"`
}

// Validate validates the query
func (q CycleReportQuery) Validate() error {
	if q.CycleID == "" {
		return errors.New("cycle ID is required")
	}
	return nil
}

// CycleReportHandler handles the CycleReportQuery
type CycleReportHandler struct {
	maintenance *services.MaintenanceService
	logger      *zap.Logger
}

// NewCycleReportHandler creates a new handler instance
func NewCycleReportHandler(maintenance *services.MaintenanceService, logger *zap.Logger) *CycleReportHandler {
	return &CycleReportHandler{
		maintenance: maintenance,
		logger:      logger,
	}
}

// Handle executes the report query
func (h *CycleReportHandler) Handle(ctx context.Context, q CycleReportQuery) (*ports.CycleReport, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return h.maintenance.GetReport(ctx, q.CycleID)
}
