package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitacora/internal/application/dto"
	"github.com/jhoicas/bitacora/internal/application/ledger"
	"github.com/jhoicas/bitacora/internal/application/reconcile"
	"github.com/jhoicas/bitacora/internal/domain"
	"github.com/jhoicas/bitacora/internal/domain/entity"
)

// LedgerHandler maneja movimientos, existencias, pedidos y asistencia.
type LedgerHandler struct {
	ledger   *ledger.Engine
	products *reconcile.Engine // catálogo de referencias; puede ser nil
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(l *ledger.Engine, products *reconcile.Engine) *LedgerHandler {
	return &LedgerHandler{ledger: l, products: products}
}

// CreateMovement godoc
// @Summary      Registrar entrada o salida
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "item_key, quantity (> 0), type (IN|OUT)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *LedgerHandler) CreateMovement(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	mov, err := h.ledger.Append(c.UserContext(), ledger.MovementInputDTO{
		ItemKey:  in.ItemKey,
		Quantity: in.Quantity,
		Type:     in.Type,
	})
	if err != nil {
		return writeError(c, err, "item_key, quantity > 0 y type IN|OUT son requeridos")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovement(mov))
}

// ListMovements GET /api/movements?item_key=
func (h *LedgerHandler) ListMovements(c *fiber.Ctx) error {
	return c.JSON(dto.FromMovements(h.ledger.Movements(c.Query("item_key"))))
}

// Stock GET /api/stock
func (h *LedgerHandler) Stock(c *fiber.Ctx) error {
	return c.JSON(h.ledger.CurrentQuantities())
}

// StockByItem GET /api/stock/:itemKey (0 para referencias desconocidas)
func (h *LedgerHandler) StockByItem(c *fiber.Ctx) error {
	key := c.Params("itemKey")
	return c.JSON(dto.StockResponse{ItemKey: key, Quantity: h.ledger.CurrentQuantity(key)})
}

// Inventory GET /api/inventory: catálogo completo con cantidades (0 si sin movimientos).
func (h *LedgerHandler) Inventory(c *fiber.Ctx) error {
	return c.JSON(dto.FromStock(h.ledger.InventoryView(h.productNames())))
}

// productNames nombres del catálogo de referencias; nil si no hay catálogo.
func (h *LedgerHandler) productNames() map[string]string {
	if h.products == nil {
		return nil
	}
	return h.products.Names()
}

// PlaceOrder godoc
// @Summary      Registrar pedido (una salida por línea, todo o nada)
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OrderRequest  true  "location_key, owner_key, lines"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *LedgerHandler) PlaceOrder(c *fiber.Ctx) error {
	var in dto.OrderRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	order, err := h.ledger.PlaceOrder(c.UserContext(), ledger.OrderInputDTO{
		LocationKey: in.LocationKey,
		OwnerKey:    in.OwnerKey,
		Lines:       in.ToOrderLines(),
	})
	if err != nil {
		return writeError(c, err, "location_key, owner_key y líneas con cantidad > 0 son requeridos")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOrder(order, h.productNames()))
}

// ListOrders GET /api/orders?group_by=none|location|owner
func (h *LedgerHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.ledger.OrderHistory(c.Query("group_by", ledger.GroupByNone))
	if err != nil {
		return writeError(c, err, "group_by debe ser none, location u owner")
	}
	return c.JSON(dto.FromOrders(orders, h.productNames()))
}

// SubmitAttendance PUT /api/attendance/:date (YYYY-MM-DD); reemplaza el snapshot del día.
func (h *LedgerHandler) SubmitAttendance(c *fiber.Ctx) error {
	date, err := time.Parse(entity.DateLayout, c.Params("date"))
	if err != nil {
		return writeError(c, domain.ErrInvalidInput, "la fecha debe tener formato YYYY-MM-DD")
	}
	var in dto.AttendanceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.ledger.SubmitAttendance(c.UserContext(), date, in.Presence); err != nil {
		return writeError(c, err, "claves de estudiante vacías")
	}
	return c.JSON(dto.MessageResponse{Message: "asistencia registrada"})
}

// AttendanceHistory GET /api/attendance
func (h *LedgerHandler) AttendanceHistory(c *fiber.Ctx) error {
	return c.JSON(dto.FromAttendanceRows(h.ledger.AttendanceHistory()))
}
