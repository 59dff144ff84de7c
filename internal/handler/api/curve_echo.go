package api

import (
	"errors"
	"time"

	models "CurveWatch/internal/domain/models"
	drepo "CurveWatch/internal/domain/repository"
	"CurveWatch/internal/usecase"
	"CurveWatch/pkg/config"
	xhttp "CurveWatch/pkg/http"
	xlogger "CurveWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CurveEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type CurveEchoHandler struct {
	logger *xlogger.Logger
	svc    *usecase.CurveService
}

func NewCurveEchoHandler(logger *xlogger.Logger, svc *usecase.CurveService) *CurveEchoHandler {
	return &CurveEchoHandler{logger: logger, svc: svc}
}

func (h *CurveEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/curve", h.Curve)
	g.GET("/curve/history", h.History)
	g.GET("/metrics", h.Metrics)
	g.GET("/spread", h.Spread)
	g.GET("/inversions", h.Inversions)
	g.GET("/summary", h.Summary)
	g.POST("/refresh", h.Refresh)
	g.GET("/health", h.Health)
}

// Curve returns the most recent cross-section of the yield curve.
func (h *CurveEchoHandler) Curve(c echo.Context) error {
	res, err := h.svc.LatestCurve(c.Request().Context())
	if err != nil {
		return h.serviceError(c, "curve", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// History returns the dated observations of one maturity.
func (h *CurveEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	points, err := h.svc.History(c.Request().Context(), req.Maturity, req.Limit)
	if err != nil {
		return h.serviceError(c, "history", err)
	}
	return xhttp.SuccessResponse(c, echo.Map{
		"maturity": models.NormalizeMaturity(req.Maturity),
		"points":   points,
	})
}

// Metrics returns latest value, trailing average and delta for one maturity.
func (h *CurveEchoHandler) Metrics(c echo.Context) error {
	req := &models.MetricsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	m, err := h.svc.Metrics(c.Request().Context(), req.Maturity)
	if err != nil {
		return h.serviceError(c, "metrics", err)
	}
	return xhttp.SuccessResponse(c, m)
}

// Spread returns the spread series for a maturity pair plus the recession
// ranges the dashboard shades behind it.
func (h *CurveEchoHandler) Spread(c echo.Context) error {
	req := &models.SpreadRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	series, err := h.svc.Spread(c.Request().Context(), req.Short, req.Long)
	if err != nil {
		return h.serviceError(c, "spread", err)
	}
	recessions := h.svc.Recessions()
	if recessions == nil {
		recessions = []config.DateRange{}
	}
	return xhttp.SuccessResponse(c, echo.Map{
		"spread":     series,
		"recessions": recessions,
	})
}

// Inversions returns the detected inversion episodes for a maturity pair.
func (h *CurveEchoHandler) Inversions(c echo.Context) error {
	req := &models.InversionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	episodes, err := h.svc.Inversions(c.Request().Context(), req.Short, req.Long)
	if err != nil {
		return h.serviceError(c, "inversions", err)
	}
	if episodes == nil {
		episodes = []models.InversionEpisode{}
	}
	return xhttp.SuccessResponse(c, echo.Map{
		"short":    models.NormalizeMaturity(req.Short),
		"long":     models.NormalizeMaturity(req.Long),
		"episodes": episodes,
	})
}

// Summary returns the dashboard status header.
func (h *CurveEchoHandler) Summary(c echo.Context) error {
	res, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return h.serviceError(c, "summary", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Refresh discards the cached snapshot and rebuilds it from the source.
func (h *CurveEchoHandler) Refresh(c echo.Context) error {
	snap, err := h.svc.Refresh(c.Request().Context())
	if err != nil {
		return h.serviceError(c, "refresh", err)
	}
	return xhttp.SuccessResponse(c, echo.Map{
		"as_of":        snap.AsOf.Format(time.RFC3339),
		"observations": len(snap.Table.Rows),
		"fetch_errors": snap.FetchErrors,
	})
}

// Health reports source connectivity and snapshot freshness.
func (h *CurveEchoHandler) Health(c echo.Context) error {
	health := h.svc.CheckHealth(c.Request().Context())
	if !health.SourceOK {
		return xhttp.ServiceUnavailableResponse(c, health)
	}
	return xhttp.SuccessResponse(c, health)
}

// serviceError maps use case errors onto the response envelope.
func (h *CurveEchoHandler) serviceError(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnknownMaturity):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	case errors.Is(err, usecase.ErrNoData):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
	case errors.Is(err, drepo.ErrUnavailable):
		h.logger.Error(op+" source unavailable", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.DataUnavailableError(err.Error()))
	default:
		h.logger.Error(op+" usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
}
