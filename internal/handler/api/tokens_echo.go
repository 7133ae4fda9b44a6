package api

import (
	domrepo "FinSignal/internal/domain/repository"
	xhttp "FinSignal/pkg/http"
	xlogger "FinSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TokensEchoHandler serves the supported-token catalog.
type TokensEchoHandler struct {
	logger  *xlogger.Logger
	catalog domrepo.TokenCatalog
}

func NewTokensEchoHandler(logger *xlogger.Logger, catalog domrepo.TokenCatalog) *TokensEchoHandler {
	return &TokensEchoHandler{logger: logger, catalog: catalog}
}

func (h *TokensEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/tokens", h.List)
}

// List returns active tokens, largest market cap first.
func (h *TokensEchoHandler) List(c echo.Context) error {
	tokens, err := h.catalog.ListTokens(c.Request().Context())
	if err != nil {
		if h.logger != nil {
			h.logger.Error("list tokens failed", xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.ListResponse(c, tokens, int64(len(tokens)))
}
