package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitacora/internal/application/ledger"
	"github.com/jhoicas/bitacora/internal/application/reconcile"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger   *ledger.Engine
	Catalogs map[string]*reconcile.Engine      // catálogo -> motor de reconciliación
	Sources  map[string]reconcile.RosterSource // catálogo -> roster autoritativo (opcional)
	Products string                            // catálogo que nombra las referencias del inventario
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	ledgerHandler := NewLedgerHandler(deps.Ledger, deps.Catalogs[deps.Products])
	api.Post("/movements", ledgerHandler.CreateMovement)
	api.Get("/movements", ledgerHandler.ListMovements)
	api.Get("/stock", ledgerHandler.Stock)
	api.Get("/stock/:itemKey", ledgerHandler.StockByItem)
	api.Get("/inventory", ledgerHandler.Inventory)

	api.Post("/orders", ledgerHandler.PlaceOrder)
	api.Get("/orders", ledgerHandler.ListOrders)

	api.Put("/attendance/:date", ledgerHandler.SubmitAttendance)
	api.Get("/attendance", ledgerHandler.AttendanceHistory)

	catalogs := api.Group("/catalogs/:catalog")
	recordHandler := NewRecordHandler(deps.Catalogs, deps.Sources)
	catalogs.Get("/records", recordHandler.List)
	catalogs.Post("/records", recordHandler.Create)
	catalogs.Delete("/records", recordHandler.ClearLocal)
	catalogs.Get("/records/:key", recordHandler.Get)
	catalogs.Put("/records/:key", recordHandler.Upsert)
	catalogs.Delete("/records/:key", recordHandler.Delete)
	catalogs.Post("/records/:key/rekey", recordHandler.Rekey)
	catalogs.Get("/records/:key/groups", recordHandler.RecordGroups)
	catalogs.Post("/refresh", recordHandler.Refresh)

	catalogs.Get("/groups", recordHandler.ListGroups)
	catalogs.Post("/groups", recordHandler.CreateGroup)
	catalogs.Get("/groups/:key", recordHandler.GetGroup)
	catalogs.Delete("/groups/:key", recordHandler.DeleteGroup)
	catalogs.Get("/groups/:key/members", recordHandler.GroupMembers)
}
