package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/workflow"
	"github.com/jhoicas/inventario-ledger/internal/domain/authz"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine           *workflow.Engine
	RegisterMovement *inventory.RegisterMovementUseCase
	Queries          *inventory.QueryUseCase
	Reconcile        *inventory.ReconcileUseCase
	Idempotency      IdempotencyStore // nil = sin control de duplicados
	JWTSecret        string
	JWTIssuer        string
}

// Router registra las rutas de la API. Orden por ruta: auth → permiso → idempotencia → handler.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	idem := Idempotency(deps.Idempotency)

	// Documentos de flujo
	documentRoutes(api.Group("/dispatches"), NewDocumentHandler(deps.Engine, entity.KindDispatch), idem, true)
	documentRoutes(api.Group("/donations"), NewDocumentHandler(deps.Engine, entity.KindDonation), idem, false)
	documentRoutes(api.Group("/transfers"), NewDocumentHandler(deps.Engine, entity.KindTransfer), idem, false)

	// Kardex y existencias
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Queries, deps.Reconcile)
	inv.Post("/adjustments", RequireCapability(authz.CapAdjustStock), idem, inventoryHandler.Adjust)
	inv.Get("/kardex", RequireCapability(authz.CapViewInventory), inventoryHandler.Kardex)
	inv.Get("/snapshot", RequireCapability(authz.CapViewInventory), inventoryHandler.Snapshot)
	inv.Get("/reconcile", RequireCapability(authz.CapViewInventory), inventoryHandler.Reconcile)
}

func documentRoutes(g fiber.Router, h *DocumentHandler, idem fiber.Handler, quick bool) {
	manage, _ := authz.ForManage(string(h.kind))
	if quick {
		g.Post("/quick", RequireCapability(authz.CapQuickDispatch), idem, h.CreateQuick)
	}
	g.Post("/", RequireCapability(manage), idem, h.Create)
	g.Get("/:id", RequireCapability(manage), h.Get)
	g.Put("/:id", RequireCapability(manage), h.Update)
	g.Post("/:id/transitions/:name", h.RequireTransition(), idem, h.Transition)
}
