package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/authz"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// InventoryHandler maneja ajustes manuales y consultas del kardex (protegido).
type InventoryHandler struct {
	register  *inventory.RegisterMovementUseCase
	queries   *inventory.QueryUseCase
	reconcile *inventory.ReconcileUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(register *inventory.RegisterMovementUseCase, queries *inventory.QueryUseCase, reconcile *inventory.ReconcileUseCase) *InventoryHandler {
	return &InventoryHandler{register: register, queries: queries, reconcile: reconcile}
}

// Adjust godoc
// @Summary      Registrar ajuste manual de existencias
// @Description  Una salida mayor al disponible requiere force=true y el permiso inventory.force_negative.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "warehouse_id, product_id, type, quantity, reason_code"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var req dto.AdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	if req.Force && !authz.CanOn(GetActor(c), authz.CapForceNegativeStock, GetCompanyID(c)) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado: falta el permiso " + string(authz.CapForceNegativeStock)})
	}
	m, err := h.register.RegisterMovement(c.Context(), inventory.MovementInputDTO{
		CompanyID:    GetCompanyID(c),
		UserID:       GetUserID(c),
		WarehouseID:  req.WarehouseID,
		ProductID:    req.ProductID,
		Type:         entity.MovementType(req.Type),
		Quantity:     req.Quantity,
		UnitCost:     req.UnitCost,
		MovementDate: req.MovementDate,
		ReasonCode:   req.ReasonCode,
		Force:        req.Force,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(m))
}

// Kardex godoc
// @Summary      Historial de movimientos de un producto en una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true   "bodega"
// @Param        product_id    query  string  true   "producto"
// @Param        date_from     query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        date_to       query  string  false  "RFC3339 o YYYY-MM-DD (incluye el día)"
// @Param        type          query  string  false  "tipos separados por coma"
// @Param        limit         query  int     false  "máximo 1000"
// @Param        after         query  string  false  "next_cursor de la página anterior"
// @Success      200  {object}  dto.KardexResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/kardex [get]
func (h *InventoryHandler) Kardex(c *fiber.Ctx) error {
	key, ok := stockKeyFromQuery(c)
	if !ok {
		return nil
	}
	filter, err := kardexFilter(c)
	if err != nil {
		return writeError(c, err)
	}
	items, err := h.queries.History(c.Context(), key, filter)
	if err != nil {
		return writeError(c, err)
	}
	balance, err := h.queries.LatestBalance(c.Context(), key)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.KardexResponse{Items: make([]dto.MovementResponse, 0, len(items)), Balance: balance}
	for _, m := range items {
		out.Items = append(out.Items, toMovementResponse(m))
	}
	if len(items) == filter.Limit {
		out.NextCursor = encodeCursor(inventory.NextCursor(items))
	}
	return c.JSON(out)
}

// Snapshot godoc
// @Summary      Existencias actuales (disponible = en mano - reservado)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true  "bodega"
// @Param        product_id    query  string  true  "producto"
// @Success      200  {object}  dto.SnapshotResponse
// @Router       /api/inventory/snapshot [get]
func (h *InventoryHandler) Snapshot(c *fiber.Ctx) error {
	key, ok := stockKeyFromQuery(c)
	if !ok {
		return nil
	}
	snap, err := h.queries.Snapshot(c.Context(), key)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSnapshotResponse(snap))
}

// Reconcile godoc
// @Summary      Conciliar saldos del kardex contra las existencias
// @Description  Solo lectura: reporta registros con saldo almacenado distinto del recalculado.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true  "bodega"
// @Param        product_id    query  string  true  "producto"
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/inventory/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	key, ok := stockKeyFromQuery(c)
	if !ok {
		return nil
	}
	report, err := h.reconcile.Check(c.Context(), key)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReconcileResponse(report))
}

// stockKeyFromQuery responde 400 y devuelve false si faltan warehouse_id o product_id.
func stockKeyFromQuery(c *fiber.Ctx) (entity.StockKey, bool) {
	key := entity.StockKey{
		CompanyID:   GetCompanyID(c),
		WarehouseID: strings.TrimSpace(c.Query("warehouse_id")),
		ProductID:   strings.TrimSpace(c.Query("product_id")),
	}
	if key.WarehouseID == "" || key.ProductID == "" {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id y product_id son requeridos"})
		return key, false
	}
	return key, true
}

func kardexFilter(c *fiber.Ctx) (repository.MovementFilter, error) {
	var f repository.MovementFilter
	var err error
	if f.From, err = parseDate(c.Query("date_from"), false); err != nil {
		return f, err
	}
	if f.To, err = parseDate(c.Query("date_to"), true); err != nil {
		return f, err
	}
	if f.After, err = decodeCursor(c.Query("after")); err != nil {
		return f, err
	}
	if raw := c.Query("type"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			mt := entity.MovementType(strings.TrimSpace(t))
			if !mt.IsValid() {
				return f, invalidQuery("type")
			}
			f.Types = append(f.Types, mt)
		}
	}
	if raw := c.Query("limit"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n <= 0 {
			return f, invalidQuery("limit")
		}
		f.Limit = n
	}
	f.Limit = inventory.KardexLimit(f.Limit)
	return f, nil
}
