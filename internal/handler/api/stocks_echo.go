package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"PumpScan/internal/domain/models"
	domrepo "PumpScan/internal/domain/repository"
	icache "PumpScan/internal/service/cache"
	"PumpScan/internal/service/ratelimit"
	"PumpScan/internal/usecase"
	xhttp "PumpScan/pkg/http"
	xlogger "PumpScan/pkg/logger"

	"github.com/labstack/echo/v4"
)

const serviceName = "NEPSE Pump Scan"

// StocksEchoHandler serves analyses over REST.
type StocksEchoHandler struct {
	logger   *xlogger.Logger
	analyzer *usecase.Analyzer
	store    domrepo.AnalysisStore
	cache    icache.BytesCache
	cacheTTL time.Duration
	rl       *ratelimit.Limiter
}

type HandlerOption func(*StocksEchoHandler)

// WithCache caches list and stats responses per store version.
func WithCache(c icache.BytesCache, ttl time.Duration) HandlerOption {
	return func(h *StocksEchoHandler) {
		h.cache = c
		h.cacheTTL = ttl
	}
}

// WithRateLimiter limits POST /api/stocks/analyze per client IP.
func WithRateLimiter(rl *ratelimit.Limiter) HandlerOption {
	return func(h *StocksEchoHandler) {
		h.rl = rl
	}
}

func NewStocksEchoHandler(logger *xlogger.Logger, analyzer *usecase.Analyzer, store domrepo.AnalysisStore, opts ...HandlerOption) *StocksEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	h := &StocksEchoHandler{logger: logger, analyzer: analyzer, store: store}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *StocksEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	g := e.Group("/api")
	g.POST("/stocks/analyze", h.Analyze)
	g.GET("/stocks", h.List)
	g.GET("/stocks/suspicious", h.Suspicious)
	g.GET("/stocks/:symbol", h.Stock)
	g.GET("/stats", h.Stats)
	g.GET("/archive/:symbol", h.Archive)
}

func (h *StocksEchoHandler) Root(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"message":      serviceName,
		"total_stocks": h.store.Stats().Total,
	})
}

func (h *StocksEchoHandler) Analyze(c echo.Context) error {
	if h.rl != nil && !h.rl.Allow(c.RealIP()) {
		h.logger.Warn("analyze rate limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("Too many requests"))
	}

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.analyzer.Rejected(usecase.SourceHTTP)
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.AnalyzeRequest(c.Request().Context(), usecase.SourceHTTP, req)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			return xhttp.BadRequestResponse(c, fieldErrors(ve))
		}
		h.logger.Error("analyze usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, res)
}

func (h *StocksEchoHandler) List(c echo.Context) error {
	return h.cached(c, "stocks:all", func() interface{} { return h.store.All() })
}

func (h *StocksEchoHandler) Suspicious(c echo.Context) error {
	return h.cached(c, "stocks:suspicious", func() interface{} { return h.store.Suspicious() })
}

func (h *StocksEchoHandler) Stats(c echo.Context) error {
	return h.cached(c, "stats", func() interface{} { return h.store.Stats() })
}

func (h *StocksEchoHandler) Stock(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if req.History {
		hist, err := h.store.History(req.Symbol)
		if err != nil {
			return h.storeError(c, req.Symbol, err)
		}
		return xhttp.ListResponse(c, hist, int64(len(hist)))
	}

	a, err := h.store.Latest(req.Symbol)
	if err != nil {
		return h.storeError(c, req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, a)
}

func (h *StocksEchoHandler) Archive(c echo.Context) error {
	req := &models.ArchiveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.analyzer.Archive(c.Request().Context(), req.Symbol, req.Limit)
	if errors.Is(err, models.ErrArchiveDisabled) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("Archive is not enabled"))
	}
	if err != nil {
		h.logger.Error("archive query error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *StocksEchoHandler) storeError(c echo.Context, symbol string, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("Stock %s not found", models.NormalizeSymbol(symbol)))
	}
	h.logger.Error("store error", xlogger.String("symbol", symbol), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}

// cached serves a 200 envelope for load from the cache. Keys carry the store
// version, so any write invalidates them.
func (h *StocksEchoHandler) cached(c echo.Context, key string, load func() interface{}) error {
	if h.cache == nil {
		return xhttp.SuccessResponse(c, load())
	}

	ctx := c.Request().Context()
	cacheKey := fmt.Sprintf("%s:v%d", key, h.store.Version())
	if b, ok, err := h.cache.GetBytes(ctx, cacheKey); err != nil {
		h.logger.Warn("cache get error", xlogger.String("key", cacheKey), xlogger.Error(err))
	} else if ok {
		h.logger.Debug("cache hit", xlogger.String("key", cacheKey))
		return xhttp.BlobResponse(c, http.StatusOK, b)
	}

	b, err := xhttp.EncodeEnvelope(http.StatusOK, load())
	if err != nil {
		h.logger.Error("encode response", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError(err))
	}
	if err := h.cache.SetBytes(ctx, cacheKey, b, h.cacheTTL); err != nil {
		h.logger.Warn("cache set error", xlogger.String("key", cacheKey), xlogger.Error(err))
	}
	return xhttp.BlobResponse(c, http.StatusOK, b)
}

func fieldErrors(ve *models.ValidationError) []xhttp.ValidationError {
	out := make([]xhttp.ValidationError, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		out = append(out, xhttp.ValidationError{Code: xhttp.CodeInvalid, Field: f.Field, Message: f.Message})
	}
	return out
}
