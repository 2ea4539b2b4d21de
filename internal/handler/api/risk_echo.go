package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"auri/internal/domain/models"
	"auri/internal/usecase"
	httppkg "auri/pkg/http"
	"auri/pkg/logger"
)

// RiskHandler serves the risk analysis and market history endpoints.
type RiskHandler struct {
	analyzer *usecase.RiskAnalyzer
	history  *usecase.PriceHistory
	log      *logger.Logger
}

// NewRiskHandler creates the handler.
func NewRiskHandler(analyzer *usecase.RiskAnalyzer, history *usecase.PriceHistory, log *logger.Logger) *RiskHandler {
	return &RiskHandler{analyzer: analyzer, history: history, log: log}
}

// RegisterRoutes wires the handler routes.
func (h *RiskHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/risk/analyze", h.Analyze)
	g.GET("/market/sol-msol", h.SolMsolHistory)
}

// Analyze handles POST /api/risk/analyze.
func (h *RiskHandler) Analyze(c echo.Context) error {
	var req models.AnalyzeRequest
	if errs := httppkg.ReadAndValidateRequest(c, &req); errs != nil {
		return httppkg.BadRequestResponse(c, errs)
	}

	resp, err := h.analyzer.Analyze(c.Request().Context(), req)
	if err != nil {
		h.log.Error("risk analysis failed",
			logger.String("wallet", req.WalletAddress), logger.Error(err))
		return httppkg.AppErrorResponse(c, err)
	}

	return httppkg.SuccessResponse(c, resp)
}

// SolMsolHistory handles GET /api/market/sol-msol.
func (h *RiskHandler) SolMsolHistory(c echo.Context) error {
	days := 7
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return httppkg.BadRequestResponse(c, "days must be an integer")
		}
		days = parsed
	}

	resp, err := h.history.History(c.Request().Context(), days)
	if err != nil {
		h.log.Error("price history failed", logger.Int("days", days), logger.Error(err))
		return httppkg.AppErrorResponse(c, err)
	}

	return httppkg.SuccessResponse(c, resp)
}
