package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/workflow"
	"github.com/jhoicas/inventario-ledger/internal/domain/authz"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// DocumentHandler maneja despachos, donaciones o traslados según kind (protegido).
type DocumentHandler struct {
	engine *workflow.Engine
	kind   entity.DocumentKind
}

// NewDocumentHandler construye el handler de un tipo de documento.
func NewDocumentHandler(engine *workflow.Engine, kind entity.DocumentKind) *DocumentHandler {
	return &DocumentHandler{engine: engine, kind: kind}
}

// Create godoc
// @Summary      Crear documento en su estado inicial
// @Tags         workflow
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string               false  "clave de reintento"
// @Param        body             body    dto.DocumentRequest  true   "cabecera y líneas"
// @Success      201  {object}  dto.DocumentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/{kind} [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	in, err := h.parseDocument(c)
	if err != nil {
		return err
	}
	if in == nil {
		return nil
	}
	doc, err := h.engine.CreateDocument(c.Context(), h.kind, *in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDocumentResponse(doc, entity.MatchLanguage(c.Get(fiber.HeaderAcceptLanguage))))
}

// CreateQuick godoc
// @Summary      Despacho rápido: crea el despacho ya despachado y descuenta existencias
// @Tags         workflow
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DocumentRequest  true  "cabecera y líneas"
// @Success      201  {object}  dto.DocumentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/dispatches/quick [post]
func (h *DocumentHandler) CreateQuick(c *fiber.Ctx) error {
	in, err := h.parseDocument(c)
	if err != nil {
		return err
	}
	if in == nil {
		return nil
	}
	d, err := h.engine.CreatePreDispatched(c.Context(), *in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDocumentResponse(d, entity.MatchLanguage(c.Get(fiber.HeaderAcceptLanguage))))
}

// Update godoc
// @Summary      Editar cabecera y líneas (solo estados editables)
// @Tags         workflow
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del documento"
// @Param        body  body  dto.DocumentRequest  true  "version es la última leída"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	var req dto.DocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	if req.Version <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "version requerida"})
	}
	doc, err := h.engine.UpdateDocument(c.Context(), h.kind, c.Params("id"), req.Version, toDocumentInput(c, req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toDocumentResponse(doc, entity.MatchLanguage(c.Get(fiber.HeaderAcceptLanguage))))
}

// Get godoc
// @Summary      Obtener documento
// @Tags         workflow
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	doc, err := h.engine.GetDocument(c.Context(), h.kind, GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toDocumentResponse(doc, entity.MatchLanguage(c.Get(fiber.HeaderAcceptLanguage))))
}

// Transition godoc
// @Summary      Ejecutar una transición (submit, approve, dispatch, ship, deliver, receive, cancel)
// @Tags         workflow
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true   "ID del documento"
// @Param        name  path  string                 true   "transición"
// @Param        body  body  dto.TransitionRequest  false  "campos de la transición"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id}/transitions/{name} [post]
func (h *DocumentHandler) Transition(c *fiber.Ctx) error {
	var req dto.TransitionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
	}
	if err := validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	fields := workflow.TransitionFields{
		ReceivedByName: req.ReceivedByName,
		Notes:          req.Notes,
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.Carrier,
		Reason:         req.Reason,
	}
	for _, d := range req.Discrepancies {
		fields.Discrepancies = append(fields.Discrepancies, workflow.DiscrepancyInput{ProductID: d.ProductID, Received: d.Received, Reason: d.Reason})
	}
	doc, err := h.engine.Transition(c.Context(), h.kind, GetCompanyID(c), c.Params("id"), GetUserID(c), entity.Transition(c.Params("name")), fields)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toDocumentResponse(doc, entity.MatchLanguage(c.Get(fiber.HeaderAcceptLanguage))))
}

// RequireTransition autoriza según la capacidad de la transición :name del tipo.
// Una transición desconocida para el tipo pasa al motor, que responde INVALID_TRANSITION.
func (h *DocumentHandler) RequireTransition() fiber.Handler {
	return func(c *fiber.Ctx) error {
		capability, ok := authz.ForTransition(string(h.kind), c.Params("name"))
		if !ok {
			capability, _ = authz.ForManage(string(h.kind))
		}
		return authorize(c, capability)
	}
}

// parseDocument devuelve nil, nil cuando ya respondió con error de validación.
func (h *DocumentHandler) parseDocument(c *fiber.Ctx) (*workflow.DocumentInput, error) {
	var req dto.DocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, invalidBody(c)
	}
	if err := validate.Struct(req); err != nil {
		return nil, validationFailed(c, err)
	}
	in := toDocumentInput(c, req)
	return &in, nil
}

func toDocumentInput(c *fiber.Ctx, req dto.DocumentRequest) workflow.DocumentInput {
	in := workflow.DocumentInput{
		CompanyID:       GetCompanyID(c),
		ActorID:         GetUserID(c),
		WarehouseID:     req.WarehouseID,
		FromWarehouseID: req.FromWarehouseID,
		ToWarehouseID:   req.ToWarehouseID,
		PartyID:         req.CustomerID,
		Notes:           req.Notes,
		TaxAmount:       req.TaxAmount,
		DiscountAmount:  req.DiscountAmount,
		ShippingCost:    req.ShippingCost,
	}
	if req.DonorID != "" {
		in.PartyID = req.DonorID
	}
	if req.Date != nil {
		in.Date = *req.Date
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, workflow.LineInput{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice, Notes: l.Notes})
	}
	return in
}
