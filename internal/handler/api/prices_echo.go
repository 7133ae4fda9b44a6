package api

import (
	"context"
	"fmt"

	"FinSignal/internal/domain/models"
	xhttp "FinSignal/pkg/http"
	xlogger "FinSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PriceService is the price ingestion/read surface the handler needs.
type PriceService interface {
	Record(ctx context.Context, symbol string, points []models.PricePoint) (int, error)
	PriceHistory(ctx context.Context, symbol string, days int) ([]models.PricePoint, error)
}

// PricesEchoHandler exposes raw price history and price ingestion.
type PricesEchoHandler struct {
	logger *xlogger.Logger
	prices PriceService
}

func NewPricesEchoHandler(logger *xlogger.Logger, prices PriceService) *PricesEchoHandler {
	return &PricesEchoHandler{logger: logger, prices: prices}
}

func (h *PricesEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/prices")
	g.GET("", h.History)
	g.POST("", h.Store)
}

func (h *PricesEchoHandler) History(c echo.Context) error {
	req := &models.PriceHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.prices.PriceHistory(c.Request().Context(), req.Symbol, req.Days)
	if err != nil {
		if h.logger != nil && !models.IsValidation(err) {
			h.logger.Error("price history failed", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PricesEchoHandler) Store(c echo.Context) error {
	req := &models.StorePricesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	points := make([]models.PricePoint, 0, len(req.Points))
	for i, in := range req.Points {
		ts, ok := xhttp.ParseTime(in.Timestamp)
		if !ok {
			return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
				Code:    "ERR_TIMESTAMP",
				Field:   fmt.Sprintf("points[%d].timestamp", i),
				Message: "timestamp must be RFC3339, a date or unix seconds/milliseconds",
			}})
		}
		points = append(points, models.PricePoint{
			Timestamp: ts,
			Open:      in.Open,
			High:      in.High,
			Low:       in.Low,
			Close:     in.Close,
			Volume:    in.Volume,
			MarketCap: in.MarketCap,
		})
	}

	n, err := h.prices.Record(c.Request().Context(), req.Symbol, points)
	if err != nil {
		if h.logger != nil && !models.IsValidation(err) {
			h.logger.Error("store prices failed", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.CreatedResponse(c, map[string]int{"received": len(points), "inserted": n})
}
