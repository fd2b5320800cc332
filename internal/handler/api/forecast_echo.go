package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"FinForge/internal/domain/models"
	domrepo "FinForge/internal/domain/repository"
	"FinForge/internal/service/metrics"
	"FinForge/internal/service/ratelimit"
	"FinForge/internal/services/features"
	"FinForge/internal/services/synth"
	"FinForge/internal/usecase"
	xhttp "FinForge/pkg/http"
	xlogger "FinForge/pkg/logger"
)

const (
	CodeInvalidInstrument    = "ERR_INVALID_INSTRUMENT"
	CodeInvalidArgument      = "ERR_INVALID_ARGUMENT"
	CodeUnsupportedTimeframe = "ERR_UNSUPPORTED_TIMEFRAME"
)

// HealthCheck reports the state of one dependency; nil means healthy.
type HealthCheck func(ctx context.Context) error

// ForecastEchoHandler serves the forecast API.
type ForecastEchoHandler struct {
	logger      *xlogger.Logger
	forecast    *usecase.ForecastUseCase
	dashboard   *usecase.DashboardUseCase
	rl          *ratelimit.Limiter
	defaultDays int
	checks      map[string]HealthCheck
}

type HandlerOption func(*ForecastEchoHandler)

// WithRateLimiter limits /api requests per client IP. nil disables limiting.
func WithRateLimiter(rl *ratelimit.Limiter) HandlerOption {
	return func(h *ForecastEchoHandler) { h.rl = rl }
}

// WithDefaultDays sets the horizon used when a request omits days.
func WithDefaultDays(days int) HandlerOption {
	return func(h *ForecastEchoHandler) {
		if days >= 0 {
			h.defaultDays = days
		}
	}
}

func WithHealthCheck(name string, check HealthCheck) HandlerOption {
	return func(h *ForecastEchoHandler) {
		if check != nil {
			h.checks[name] = check
		}
	}
}

func NewForecastEchoHandler(logger *xlogger.Logger, forecast *usecase.ForecastUseCase, dashboard *usecase.DashboardUseCase, opts ...HandlerOption) *ForecastEchoHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.Nop()
	}
	h := &ForecastEchoHandler{
		logger:      logger,
		forecast:    forecast,
		dashboard:   dashboard,
		defaultDays: 30,
		checks:      map[string]HealthCheck{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api", h.rateLimit)
	g.GET("/instruments", h.Instruments)
	g.GET("/candles", h.Candles)
	g.GET("/predictions", h.Predictions)
	g.GET("/news", h.News)
	g.GET("/dashboard", h.Dashboard)
	g.POST("/forecast", h.Forecast)
}

func (h *ForecastEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.rl != nil && !h.rl.Allow(c.RealIP()) {
			metrics.RateLimited.Inc()
			h.logger.Warn("rate limited", xlogger.String("remote", c.RealIP()), xlogger.String("path", c.Path()))
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
		}
		return next(c)
	}
}

func (h *ForecastEchoHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	res := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			res[name] = err.Error()
			continue
		}
		res[name] = "ok"
	}
	return xhttp.DataResponse(c, status, res)
}

func (h *ForecastEchoHandler) Instruments(c echo.Context) error {
	defer observe("instruments", time.Now())

	insts, err := h.forecast.Instruments(c.Request().Context())
	if err != nil {
		return h.fail(c, "instruments", err)
	}
	rows := make([]instrumentDTO, len(insts))
	for i, inst := range insts {
		rows[i] = toInstrumentDTO(inst)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *ForecastEchoHandler) Candles(c echo.Context) error {
	defer observe("candles", time.Now())

	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	seed, err := xhttp.ParseSeedParam(req.Seed)
	if err != nil {
		return h.fail(c, "candles", err)
	}

	res, err := h.forecast.Candles(c.Request().Context(), usecase.CandlesParams{
		Symbol: req.Symbol,
		Days:   h.days(c, req.Days),
		Seed:   seed,
	})
	if err != nil {
		return h.fail(c, "candles", err)
	}
	return xhttp.SuccessResponse(c, candlesResponse{
		Symbol:  res.Instrument.Symbol,
		Seed:    res.Seed,
		Days:    res.Days,
		Cached:  res.Cached,
		Candles: toCandleDTOs(res.Candles),
		Stats:   toStatsDTO(features.Summarize(res.Candles)),
	})
}

func (h *ForecastEchoHandler) Predictions(c echo.Context) error {
	defer observe("predictions", time.Now())

	req := &models.PredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	seed, err := xhttp.ParseSeedParam(req.Seed)
	if err != nil {
		return h.fail(c, "predictions", err)
	}
	tfs, err := usecase.ParseTimeframes(xhttp.SplitList(req.Timeframes))
	if err != nil {
		return h.fail(c, "predictions", err)
	}

	res, err := h.forecast.Predictions(c.Request().Context(), usecase.PredictionsParams{
		Symbol:     req.Symbol,
		Timeframes: tfs,
		Seed:       seed,
	})
	if err != nil {
		return h.fail(c, "predictions", err)
	}
	return xhttp.SuccessResponse(c, predictionsResponse{
		Symbol:      res.Instrument.Symbol,
		Seed:        res.Seed,
		Cached:      res.Cached,
		Predictions: toPredictionDTOs(res.Predictions),
	})
}

func (h *ForecastEchoHandler) News(c echo.Context) error {
	defer observe("news", time.Now())

	req := &models.NewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.forecast.News(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "news", err)
	}
	return xhttp.SuccessResponse(c, newsResponse{Symbol: res.Instrument.Symbol, News: toNewsDTOs(res.News)})
}

func (h *ForecastEchoHandler) Dashboard(c echo.Context) error {
	defer observe("dashboard", time.Now())

	req := &models.DashboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	seed, err := xhttp.ParseSeedParam(req.Seed)
	if err != nil {
		return h.fail(c, "dashboard", err)
	}
	tfs, err := usecase.ParseTimeframes(xhttp.SplitList(req.Timeframes))
	if err != nil {
		return h.fail(c, "dashboard", err)
	}

	d, err := h.dashboard.Get(c.Request().Context(), req.Symbol, usecase.DashboardParams{
		Days:       h.days(c, req.Days),
		Timeframes: tfs,
		Seed:       seed,
	})
	if err != nil {
		return h.fail(c, "dashboard", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, toDashboardResponse(d))
}

// Forecast builds a dashboard for an instrument described in the request body.
func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	defer observe("forecast", time.Now())

	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	inst, hasBeta := req.Instrument.Descriptor()
	if !hasBeta {
		return h.fail(c, "forecast", fmt.Errorf("%w: beta is required", synth.ErrInvalidInstrument))
	}
	tfs, err := usecase.ParseTimeframes(req.Timeframes)
	if err != nil {
		return h.fail(c, "forecast", err)
	}
	days := h.defaultDays
	if req.Days != nil {
		days = *req.Days
	}

	d, err := h.dashboard.GetFor(c.Request().Context(), inst, usecase.DashboardParams{
		Days:       days,
		Timeframes: tfs,
		Seed:       req.Seed,
	})
	if err != nil {
		return h.fail(c, "forecast", err)
	}
	return xhttp.SuccessResponse(c, toDashboardResponse(d))
}

// days returns the requested horizon, or the default when the query omits it.
func (h *ForecastEchoHandler) days(c echo.Context, requested int) int {
	if c.QueryParam("days") == "" {
		return h.defaultDays
	}
	return requested
}

func (h *ForecastEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	metrics.APIErrors.WithLabelValues(endpoint, appErr.Code).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Ctx(c.Request().Context()).Error(endpoint+" failed", xlogger.Error(err))
	} else {
		h.logger.Debug(endpoint+" rejected", xlogger.String("code", appErr.Code), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, synth.ErrInvalidInstrument):
		return xhttp.NewAppError(CodeInvalidInstrument, "instrument", err.Error(), http.StatusUnprocessableEntity).WithError(err)
	case errors.Is(err, synth.ErrUnsupportedTimeframe):
		return xhttp.NewAppError(CodeUnsupportedTimeframe, "timeframes", err.Error(), http.StatusBadRequest).
			WithParam("options", models.AllTimeframes()).
			WithError(err)
	case errors.Is(err, synth.ErrInvalidArgument):
		return xhttp.NewAppError(CodeInvalidArgument, "", err.Error(), http.StatusBadRequest).WithError(err)
	case errors.Is(err, domrepo.ErrInstrumentNotFound):
		return xhttp.NotFoundErrorf("%v", err).WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.ServiceUnavailableError("request timed out").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}

func observe(endpoint string, start time.Time) {
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
