package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aromas-stock/internal/application/dto"
	"github.com/jhoicas/aromas-stock/internal/application/inventory"
)

// StockHandler expone el libro de movimientos y los saldos (protegido).
type StockHandler struct {
	uc            *inventory.StockUseCase
	replenishment *inventory.ReplenishmentUseCase
	documents     *inventory.DocumentsUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase, replenishment *inventory.ReplenishmentUseCase, documents *inventory.DocumentsUseCase) *StockHandler {
	return &StockHandler{uc: uc, replenishment: replenishment, documents: documents}
}

// Add godoc
// @Summary      Cargar mercadería
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, quantity, branch, date, observations"
// @Success      201   {object}  dto.StockOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/add [post]
func (h *StockHandler) Add(c *fiber.Ctx) error {
	return h.operation(c, h.uc.Add)
}

// Sell godoc
// @Summary      Registrar venta
// @Description  Venta de un producto (product_id + quantity) o de varios (items) en una sucursal.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id + quantity o items, branch, price, total, seller_id, final_consumer"
// @Success      201   {object}  dto.StockOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/sell [post]
func (h *StockHandler) Sell(c *fiber.Ctx) error {
	var in dto.StockMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	sell := h.uc.Sell
	if len(in.Items) > 0 {
		sell = h.uc.SellItems
	}
	out, err := sell(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Transfer godoc
// @Summary      Trasladar entre sucursales
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, quantity, branch (origen), destination"
// @Success      201   {object}  dto.StockOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transfer [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	return h.operation(c, h.uc.Transfer)
}

// Shortage godoc
// @Summary      Registrar faltante
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, quantity, branch, observations"
// @Success      201   {object}  dto.StockOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/shortage [post]
func (h *StockHandler) Shortage(c *fiber.Ctx) error {
	return h.operation(c, h.uc.Shortage)
}

type stockOperation func(ctx context.Context, in dto.StockMovementRequest) (*dto.StockOperationResponse, error)

func (h *StockHandler) operation(c *fiber.Ctx, op stockOperation) error {
	var in dto.StockMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := op(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Inventory godoc
// @Summary      Inventario por sucursal
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ProductStockResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/inventory [get]
func (h *StockHandler) Inventory(c *fiber.Ctx) error {
	out, err := h.uc.ListInventory(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Historial de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        from              query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        to                query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        kind              query  string  false  "add | sell | transfer | shortage"
// @Param        product_id        query  string  false  "Producto"
// @Param        branch            query  string  false  "Sucursal (origen o destino)"
// @Param        seller_id         query  string  false  "Vendedor"
// @Param        has_observations  query  bool    false  "Sólo con / sin observaciones"
// @Param        limit             query  int     false  "Default 50, máximo 500"
// @Param        offset            query  int     false  "Default 0"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	req, err := movementListRequest(c)
	if err != nil {
		return badQuery(c)
	}
	out, err := h.uc.ListMovements(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Movement godoc
// @Summary      Obtener movimiento
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id} [get]
func (h *StockHandler) Movement(c *fiber.Ctx) error {
	out, err := h.uc.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateNotes godoc
// @Summary      Editar observaciones de un movimiento
// @Description  Sólo las observaciones son editables; cantidades, sucursales y productos son inmutables.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true  "ID del movimiento"
// @Param        body  body  dto.UpdateMovementNotesRequest  true  "observations"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id} [patch]
func (h *StockHandler) UpdateNotes(c *fiber.Ctx) error {
	var in dto.UpdateMovementNotesRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateMovementNotes(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante de venta (PDF)
// @Tags         stock
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del movimiento de venta"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id}/receipt [get]
func (h *StockHandler) Receipt(c *fiber.Ctx) error {
	pdf, filename, err := h.documents.DownloadReceipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}

// Export godoc
// @Summary      Exportar historial a Excel
// @Description  Libro Excel 2003 (XML) con los mismos filtros que el historial, sin paginar.
// @Tags         stock
// @Security     Bearer
// @Produce      application/vnd.ms-excel
// @Param        from    query  string  false  "YYYY-MM-DD"
// @Param        to      query  string  false  "YYYY-MM-DD"
// @Param        kind    query  string  false  "add | sell | transfer | shortage"
// @Param        branch  query  string  false  "Sucursal"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/export [get]
func (h *StockHandler) Export(c *fiber.Ctx) error {
	req, err := movementListRequest(c)
	if err != nil {
		return badQuery(c)
	}
	content, filename, contentType, err := h.documents.ExportMovements(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(content)
}

// Rebuild godoc
// @Summary      Reconstruir saldos desde el libro
// @Description  Pone todos los saldos en cero y los recalcula sumando todos los movimientos. Sólo admin.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RebuildResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/rebuild [post]
func (h *StockHandler) Rebuild(c *fiber.Ctx) error {
	out, err := h.uc.RebuildBalances(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Replenishment godoc
// @Summary      Lista de reposición por sucursal
// @Description  Productos con stock menor o igual al umbral, con cantidad sugerida y acción (traslado o carga).
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        branch     query  string  true   "Sucursal"
// @Param        threshold  query  int     false  "Umbral (default 3)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/replenishment [get]
func (h *StockHandler) Replenishment(c *fiber.Ctx) error {
	threshold := c.QueryInt("threshold", inventory.DefaultReplenishmentThreshold)
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), c.Query("branch"), threshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// Branches godoc
// @Summary      Sucursales
// @Tags         branches
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BranchResponse
// @Router       /api/branches [get]
func (h *StockHandler) Branches(c *fiber.Ctx) error {
	out, err := h.uc.Branches(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// movementListRequest lee los filtros del historial. Acepta kind o type como nombre del filtro de tipo.
func movementListRequest(c *fiber.Ctx) (dto.MovementListRequest, error) {
	var req dto.MovementListRequest
	if err := c.QueryParser(&req); err != nil {
		return req, err
	}
	if req.Type == "" {
		req.Type = c.Query("kind")
	}
	req.HasObservations = strings.TrimSpace(req.HasObservations)
	return req, nil
}

func badQuery(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
}
