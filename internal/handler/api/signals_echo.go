package api

import (
	"FinSignal/internal/domain/models"
	domsvc "FinSignal/internal/domain/service"
	"FinSignal/internal/service/ratelimit"
	xhttp "FinSignal/pkg/http"
	xlogger "FinSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SignalsEchoHandler serves signal generation and lookup.
type SignalsEchoHandler struct {
	logger    *xlogger.Logger
	generator domsvc.SignalGenerator
	reader    domsvc.SignalReader
	limiter   *ratelimit.Limiter
}

func NewSignalsEchoHandler(logger *xlogger.Logger, generator domsvc.SignalGenerator, reader domsvc.SignalReader, limiter *ratelimit.Limiter) *SignalsEchoHandler {
	return &SignalsEchoHandler{logger: logger, generator: generator, reader: reader, limiter: limiter}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/signals")
	g.POST("", h.Generate, ratelimit.Middleware(h.limiter, "generate"))
	g.GET("", h.List)
	g.GET("/:id", h.Get)
}

func (h *SignalsEchoHandler) Generate(c echo.Context) error {
	req := &models.GenerateSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, err := h.generator.GenerateSignal(c.Request().Context(), req.Symbol, req.Timeframe)
	if err != nil {
		h.logFailure("generate signal failed", err, xlogger.String("symbol", req.Symbol))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.CreatedResponse(c, sig)
}

func (h *SignalsEchoHandler) List(c echo.Context) error {
	req := &models.ListSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.reader.ListSignals(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		h.logFailure("list signals failed", err)
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *SignalsEchoHandler) Get(c echo.Context) error {
	sig, err := h.reader.GetSignal(c.Request().Context(), c.Param("id"))
	if err != nil {
		if mapped := toAppError(err); mapped != err {
			return xhttp.AppErrorResponse(c, mapped)
		}
		h.logFailure("get signal failed", err, xlogger.String("id", c.Param("id")))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, sig)
}

// logFailure logs unexpected and upstream errors; client errors stay quiet.
func (h *SignalsEchoHandler) logFailure(msg string, err error, fields ...xlogger.Field) {
	if h.logger == nil || models.IsValidation(err) {
		return
	}
	h.logger.Error(msg, append(fields, xlogger.Error(err))...)
}
