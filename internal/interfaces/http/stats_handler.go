package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aromas-stock/internal/application/analytics"
	"github.com/jhoicas/aromas-stock/internal/application/dto"
)

// StatsHandler resumen de ventas y movimientos.
type StatsHandler struct {
	uc *analytics.StatsUseCase
}

// NewStatsHandler construye el handler.
func NewStatsHandler(uc *analytics.StatsUseCase) *StatsHandler {
	return &StatsHandler{uc: uc}
}

// Summary godoc
// @Summary      Resumen del período
// @Description  Unidades e importes por tipo y sucursal, ventas y comisión por vendedor y productos más vendidos.
// @Tags         stats
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        to      query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        branch  query  string  false  "Sucursal"
// @Success      200  {object}  dto.StatsSummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stats/summary [get]
func (h *StatsHandler) Summary(c *fiber.Ctx) error {
	var req dto.StatsSummaryRequest
	if err := c.QueryParser(&req); err != nil {
		return badQuery(c)
	}
	out, err := h.uc.GetSummary(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
