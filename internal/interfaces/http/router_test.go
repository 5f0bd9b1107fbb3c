package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bitacora/internal/application/dto"
	"github.com/jhoicas/bitacora/internal/application/ledger"
	"github.com/jhoicas/bitacora/internal/application/reconcile"
	"github.com/jhoicas/bitacora/internal/domain/entity"
	"github.com/jhoicas/bitacora/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/bitacora/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fakeSource struct {
	records []entity.EntityRecord
	err     error
}

func (s *fakeSource) Fetch(context.Context) ([]entity.EntityRecord, error) {
	return s.records, s.err
}

type testApp struct {
	app      *fiber.App
	ledger   *ledger.Engine
	students *reconcile.Engine
	products *reconcile.Engine
	roster   *fakeSource
}

func buildTestApp(t *testing.T) *testApp {
	t.Helper()
	store := memory.NewStore()
	ta := &testApp{
		ledger:   ledger.NewEngine(store, zerolog.Nop(), nil),
		students: reconcile.NewEngine("students", store, zerolog.Nop(), nil),
		products: reconcile.NewEngine("products", store, zerolog.Nop(), nil),
		roster:   &fakeSource{},
	}
	ta.app = fiber.New()
	apphttp.Router(ta.app, apphttp.RouterDeps{
		Ledger:   ta.ledger,
		Catalogs: map[string]*reconcile.Engine{"students": ta.students, "products": ta.products},
		Sources:  map[string]reconcile.RosterSource{"students": ta.roster},
		Products: "products",
	})
	return ta
}

func (ta *testApp) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro
// ──────────────────────────────────────────────────────────────────────────────

func TestMovements_EntradaSalidaYStock(t *testing.T) {
	ta := buildTestApp(t)

	resp, _ := ta.do(t, http.MethodPost, "/api/movements", dto.MovementRequest{ItemKey: "A", Quantity: 10, Type: "IN"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp, _ = ta.do(t, http.MethodPost, "/api/movements", dto.MovementRequest{ItemKey: "A", Quantity: 3, Type: "OUT"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, raw := ta.do(t, http.MethodGet, "/api/stock/A", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(7), decode[dto.StockResponse](t, raw).Quantity)

	_, raw = ta.do(t, http.MethodGet, "/api/stock/desconocido", nil)
	assert.Equal(t, int64(0), decode[dto.StockResponse](t, raw).Quantity)

	_, raw = ta.do(t, http.MethodGet, "/api/movements?item_key=A", nil)
	assert.Len(t, decode[[]dto.MovementResponse](t, raw), 2)
}

func TestMovements_CantidadInvalida(t *testing.T) {
	ta := buildTestApp(t)
	resp, raw := ta.do(t, http.MethodPost, "/api/movements", dto.MovementRequest{ItemKey: "A", Quantity: 0, Type: "IN"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, raw).Code)
	assert.Equal(t, 0, ta.ledger.Len())
}

func TestOrders_LineaInvalidaNoDescuentaNada(t *testing.T) {
	ta := buildTestApp(t)
	_, _ = ta.do(t, http.MethodPost, "/api/movements", dto.MovementRequest{ItemKey: "A", Quantity: 10, Type: "IN"})

	resp, _ := ta.do(t, http.MethodPost, "/api/orders", dto.OrderRequest{
		LocationKey: "Mesa 1", OwnerKey: "Ana",
		Lines: []dto.OrderLineDTO{{ItemKey: "A", Quantity: 5}, {ItemKey: "B", Quantity: -1}},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int64(10), ta.ledger.CurrentQuantity("A"))

	resp, raw := ta.do(t, http.MethodPost, "/api/orders", dto.OrderRequest{
		LocationKey: "Mesa 1", OwnerKey: "Ana",
		Lines: []dto.OrderLineDTO{{ItemKey: "A", Quantity: 5}},
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, decode[dto.OrderResponse](t, raw).ID)
	assert.Equal(t, int64(5), ta.ledger.CurrentQuantity("A"))

	resp, raw = ta.do(t, http.MethodGet, "/api/orders?group_by=owner", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.OrderResponse](t, raw), 1)

	resp, _ = ta.do(t, http.MethodGet, "/api/orders?group_by=mesero", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestInventory_IncluyeCatalogo(t *testing.T) {
	ta := buildTestApp(t)
	resp, _ := ta.do(t, http.MethodPost, "/api/catalogs/products/records", dto.RecordRequest{IdentityKey: "cerveza", Name: "Cerveza"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	_, _ = ta.do(t, http.MethodPost, "/api/movements", dto.MovementRequest{ItemKey: "hielo", Quantity: 2, Type: "OUT"})

	_, raw := ta.do(t, http.MethodGet, "/api/inventory", nil)
	assert.Equal(t, []dto.StockResponse{
		{ItemKey: "cerveza", Name: "Cerveza", Quantity: 0},
		{ItemKey: "hielo", Quantity: -2},
	}, decode[[]dto.StockResponse](t, raw))
}

func TestOrders_LineasConNombreDelCatalogo(t *testing.T) {
	ta := buildTestApp(t)
	resp, _ := ta.do(t, http.MethodPost, "/api/catalogs/products/records", dto.RecordRequest{IdentityKey: "aguila001", Name: "Aguila"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, raw := ta.do(t, http.MethodPost, "/api/orders", dto.OrderRequest{
		LocationKey: "Mesa 5", OwnerKey: "Laura",
		Lines: []dto.OrderLineDTO{{ItemKey: "aguila001", Quantity: 2}, {ItemKey: "hielo", Quantity: 1}},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, []dto.OrderLineDTO{
		{ItemKey: "aguila001", Name: "Aguila", Quantity: 2},
		{ItemKey: "hielo", Quantity: 1},
	}, decode[dto.OrderResponse](t, raw).Lines)

	_, raw = ta.do(t, http.MethodGet, "/api/orders?group_by=location", nil)
	history := decode[[]dto.OrderResponse](t, raw)
	require.Len(t, history, 1)
	assert.Equal(t, "Aguila", history[0].Lines[0].Name)
}

func TestAttendance_ReemplazoPorFecha(t *testing.T) {
	ta := buildTestApp(t)
	resp, _ := ta.do(t, http.MethodPut, "/api/attendance/2024-09-02", dto.AttendanceRequest{Presence: map[string]bool{"s1": true, "s2": true}})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = ta.do(t, http.MethodPut, "/api/attendance/2024-09-02", dto.AttendanceRequest{Presence: map[string]bool{"s1": false}})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, raw := ta.do(t, http.MethodGet, "/api/attendance", nil)
	assert.Equal(t, []dto.AttendanceRowResponse{{Date: "2024-09-02", StudentKey: "s1", Present: false}},
		decode[[]dto.AttendanceRowResponse](t, raw))

	resp, _ = ta.do(t, http.MethodPut, "/api/attendance/02-09-2024", dto.AttendanceRequest{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Registros y grupos
// ──────────────────────────────────────────────────────────────────────────────

func TestRecords_DuplicadoLocalEs409(t *testing.T) {
	ta := buildTestApp(t)
	resp, _ := ta.do(t, http.MethodPost, "/api/catalogs/students/records", dto.RecordRequest{IdentityKey: "k1", Name: "Ana"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, raw := ta.do(t, http.MethodPost, "/api/catalogs/students/records", dto.RecordRequest{IdentityKey: "k1", Name: "Otra"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, raw).Code)

	_, raw = ta.do(t, http.MethodGet, "/api/catalogs/students/records", nil)
	list := decode[[]dto.RecordResponse](t, raw)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana", list[0].Name)
}

func TestRecords_PutSombreaAutoritativoYDeleteLoRevela(t *testing.T) {
	ta := buildTestApp(t)
	ta.students.LoadAuthoritative([]entity.EntityRecord{{IdentityKey: "k2", Name: "Bob"}})

	resp, raw := ta.do(t, http.MethodPut, "/api/catalogs/students/records/k2", dto.RecordRequest{Name: "Bobby"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "local", decode[dto.RecordResponse](t, raw).Source)

	resp, raw = ta.do(t, http.MethodPut, "/api/catalogs/students/records/k2", dto.RecordRequest{Name: "Roberto"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Roberto", decode[dto.RecordResponse](t, raw).Name)

	resp, _ = ta.do(t, http.MethodDelete, "/api/catalogs/students/records/k2", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	_, raw = ta.do(t, http.MethodGet, "/api/catalogs/students/records/k2", nil)
	assert.Equal(t, "Bob", decode[dto.RecordResponse](t, raw).Name)

	resp, _ = ta.do(t, http.MethodDelete, "/api/catalogs/students/records/k2", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRecords_RekeyYClear(t *testing.T) {
	ta := buildTestApp(t)
	_, _ = ta.do(t, http.MethodPost, "/api/catalogs/students/records", dto.RecordRequest{IdentityKey: "l1", Name: "Lucía"})

	resp, raw := ta.do(t, http.MethodPost, "/api/catalogs/students/records/l1/rekey", dto.RecordRequest{IdentityKey: "l9", Name: "Lucía"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "l9", decode[dto.RecordResponse](t, raw).IdentityKey)

	resp, _ = ta.do(t, http.MethodPost, "/api/catalogs/students/records/l1/rekey", dto.RecordRequest{IdentityKey: "l8", Name: "X"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = ta.do(t, http.MethodDelete, "/api/catalogs/students/records", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Empty(t, ta.students.Reconciled())
}

func TestRecords_CatalogoDesconocido(t *testing.T) {
	ta := buildTestApp(t)
	resp, _ := ta.do(t, http.MethodGet, "/api/catalogs/mesas/records", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRefresh_FuenteCaidaEs503(t *testing.T) {
	ta := buildTestApp(t)
	ta.roster.records = []entity.EntityRecord{{IdentityKey: "1", Name: "Ana"}, {IdentityKey: "2"}}

	resp, raw := ta.do(t, http.MethodPost, "/api/catalogs/students/refresh", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.LoadReportResponse{Loaded: 1, Dropped: 1}, decode[dto.LoadReportResponse](t, raw))

	ta.roster.err = errors.New("timeout")
	resp, raw = ta.do(t, http.MethodPost, "/api/catalogs/students/refresh", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", decode[dto.ErrorResponse](t, raw).Code)
	assert.Len(t, ta.students.Reconciled(), 1)

	resp, _ = ta.do(t, http.MethodPost, "/api/catalogs/products/refresh", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGroups_Rutas(t *testing.T) {
	ta := buildTestApp(t)
	_, _ = ta.do(t, http.MethodPost, "/api/catalogs/students/records", dto.RecordRequest{IdentityKey: "s1", Name: "Ana"})

	resp, _ := ta.do(t, http.MethodPost, "/api/catalogs/students/groups", dto.GroupRequest{Key: "coro", Members: []string{"s1", "fantasma"}})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp, _ = ta.do(t, http.MethodPost, "/api/catalogs/students/groups", dto.GroupRequest{Key: "coro"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	_, raw := ta.do(t, http.MethodGet, "/api/catalogs/students/groups/coro", nil)
	assert.Equal(t, []string{"s1", "fantasma"}, decode[dto.GroupResponse](t, raw).Members)

	_, raw = ta.do(t, http.MethodGet, "/api/catalogs/students/groups/coro/members", nil)
	members := decode[[]dto.RecordResponse](t, raw)
	require.Len(t, members, 1)
	assert.Equal(t, "s1", members[0].IdentityKey)

	_, raw = ta.do(t, http.MethodGet, "/api/catalogs/students/records/s1/groups", nil)
	assert.Equal(t, []string{"coro"}, decode[[]string](t, raw))

	resp, _ = ta.do(t, http.MethodDelete, "/api/catalogs/students/groups/coro", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp, _ = ta.do(t, http.MethodGet, "/api/catalogs/students/groups/coro", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
