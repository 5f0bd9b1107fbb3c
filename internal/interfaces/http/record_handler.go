package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitacora/internal/application/dto"
	"github.com/jhoicas/bitacora/internal/application/reconcile"
	"github.com/jhoicas/bitacora/internal/domain"
	"github.com/jhoicas/bitacora/internal/domain/entity"
)

// RecordHandler maneja registros reconciliados y grupos por catálogo (students, products...).
type RecordHandler struct {
	catalogs map[string]*reconcile.Engine
	sources  map[string]reconcile.RosterSource
}

// NewRecordHandler construye el handler. sources puede no tener entrada para un catálogo
// sin roster (solo registros locales).
func NewRecordHandler(catalogs map[string]*reconcile.Engine, sources map[string]reconcile.RosterSource) *RecordHandler {
	return &RecordHandler{catalogs: catalogs, sources: sources}
}

func (h *RecordHandler) engine(c *fiber.Ctx) (*reconcile.Engine, error) {
	eng, ok := h.catalogs[c.Params("catalog")]
	if !ok {
		return nil, c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "catálogo desconocido"})
	}
	return eng, nil
}

// List GET /api/catalogs/:catalog/records
func (h *RecordHandler) List(c *fiber.Ctx) error {
	eng, err := h.engine(c)
	if eng == nil {
		return err
	}
	return c.JSON(dto.FromRecords(eng.Reconciled()))
}

// Get GET /api/catalogs/:catalog/records/:key
func (h *RecordHandler) Get(c *fiber.Ctx) error {
	eng, err := h.engine(c)
	if eng == nil {
		return err
	}
	rec, ok := eng.Lookup(c.Params("key"))
	if !ok {
		return writeError(c, domain.ErrNotFound, "")
	}
	return c.JSON(dto.FromRecord(rec))
}

// Create godoc
// @Summary      Alta de registro local
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        catalog  path  string             true  "students | products"
// @Param        body     body  dto.RecordRequest  true  "identity_key (opcional), name, surname, email, phone"
// @Success      201   {object}  dto.RecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/catalogs/{catalog}/records [post]
func (h *RecordHandler) Create(c *fiber.Ctx) error {
	eng, err := h.engine(c)
	if eng == nil {
		return err
	}
	var in dto.RecordRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	rec, ok := in.ToEntity().Normalize()
	if !ok {
		return writeError(c, domain.ErrInvalidInput, "name es requerido")
	}
	if err := eng.AddLocal(c.UserContext(), rec); err != nil {
		return writeError(c, err, "name es requerido")
	}
	created, _ := eng.Lookup(rec.IdentityKey)
	return c.Status(fiber.StatusCreated).JSON(dto.FromRecord(created))
}

// Upsert PUT /api/catalogs/:catalog/records/:key: edita el registro local; si solo existe
// en el roster (o no existe), crea la versión local que lo sombrea.
func (h *RecordHandler) Upsert(c *fiber.Ctx) error {
	eng, err := h.engine(c)
	if eng == nil {
		return err
	}
	var in dto.RecordRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	key := c.Params("key")
	err = eng.UpdateLocal(c.UserContext(), key, in.Fields())
	status := fiber.StatusOK
	if errors.Is(err, domain.ErrNotFound) {
		rec := in.ToEntity()
		rec.IdentityKey = key
		err = eng.AddLocal(c.UserContext(), rec)
		status = fiber.StatusCreated
	}
	if err != nil {
		return writeError(c, err, "name es requerido")
	}
	updated, _ := eng.Lookup(key)
	return c.Status(status).JSON(dto.FromRecord(updated))
}

// Delete DELETE /api/catalogs/:catalog/records/:key (solo registros locales)
func (h *RecordHandler) Delete(c *fiber.Ctx) error {
	eng, err := h.engine(c)
	if eng == nil {
		return err
	}
	if err := eng.DeleteLocal(c.UserContext(), c.Params("key")); err != nil {
		return writeError(c, err, "")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ClearLocal DELETE /api/catalogs/:catalog/records
func (h *RecordHandler) ClearLocal(c *fiber.Ctx) error {
	eng, err := h.engine(c)
	if eng == nil {
		return err
	}
	if err := eng.ClearAllLocal(c.UserContext()); err != nil {
		return writeError(c, err, "")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Rekey POST /api/catalogs/:catalog/records/:key/rekey: cambia la clave en una sola operación.
func (h *RecordHandler) Rekey(c *fiber.Ctx) error {
	eng, err := h.engine(c)
	if eng == nil {
		return err
	}
	var in dto.RecordRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	rec, ok := in.ToEntity().Normalize()
	if !ok {
		return writeError(c, domain.ErrInvalidInput, "name es requerido")
	}
	if err := eng.RekeyLocal(c.UserContext(), c.Params("key"), rec); err != nil {
		return writeError(c, err, "name es requerido")
	}
	updated, _ := eng.Lookup(rec.IdentityKey)
	return c.JSON(dto.FromRecord(updated))
}

// Refresh POST /api/catalogs/:catalog/refresh: recarga el roster autoritativo.
func (h *RecordHandler) Refresh(c *fiber.Ctx) error {
	eng, err := h.engine(c)
	if eng == nil {
		return err
	}
	src, ok := h.sources[eng.Catalog()]
	if !ok || src == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "el catálogo no tiene roster configurado"})
	}
	report, err := eng.Refresh(c.UserContext(), src)
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(dto.LoadReportResponse{Loaded: report.Loaded, Dropped: report.Dropped, Duplicates: report.Duplicates})
}

// RecordGroups GET /api/catalogs/:catalog/records/:key/groups
func (h *RecordHandler) RecordGroups(c *fiber.Ctx) error {
	eng, err := h.engine(c)
	if eng == nil {
		return err
	}
	return c.JSON(eng.GroupsContaining(c.Params("key")))
}

// ListGroups GET /api/catalogs/:catalog/groups
func (h *RecordHandler) ListGroups(c *fiber.Ctx) error {
	eng, err := h.engine(c)
	if eng == nil {
		return err
	}
	return c.JSON(dto.FromGroups(eng.Groups()))
}

// CreateGroup POST /api/catalogs/:catalog/groups
func (h *RecordHandler) CreateGroup(c *fiber.Ctx) error {
	eng, err := h.engine(c)
	if eng == nil {
		return err
	}
	var in dto.GroupRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := eng.CreateGroup(c.UserContext(), in.Key, in.Members); err != nil {
		return writeError(c, err, "key es requerido")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "grupo creado"})
}

// GetGroup GET /api/catalogs/:catalog/groups/:key
func (h *RecordHandler) GetGroup(c *fiber.Ctx) error {
	eng, err := h.engine(c)
	if eng == nil {
		return err
	}
	g, ok := eng.Group(c.Params("key"))
	if !ok {
		return writeError(c, domain.ErrNotFound, "")
	}
	return c.JSON(dto.FromGroups([]entity.Group{g})[0])
}

// DeleteGroup DELETE /api/catalogs/:catalog/groups/:key
func (h *RecordHandler) DeleteGroup(c *fiber.Ctx) error {
	eng, err := h.engine(c)
	if eng == nil {
		return err
	}
	if err := eng.DeleteGroup(c.UserContext(), c.Params("key")); err != nil {
		return writeError(c, err, "")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GroupMembers GET /api/catalogs/:catalog/groups/:key/members (omite claves obsoletas)
func (h *RecordHandler) GroupMembers(c *fiber.Ctx) error {
	eng, err := h.engine(c)
	if eng == nil {
		return err
	}
	members, err := eng.GroupMembers(c.Params("key"))
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(dto.FromRecords(members))
}
