package ledger_test

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bitacora/internal/application/ledger"
	"github.com/jhoicas/bitacora/internal/domain"
	"github.com/jhoicas/bitacora/internal/domain/entity"
	domainledger "github.com/jhoicas/bitacora/internal/domain/ledger"
)

func TestAppend_EntradaYSalida(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	_, err := eng.Append(ctx, in("A", 10))
	require.NoError(t, err)
	_, err = eng.Append(ctx, out("A", 3))
	require.NoError(t, err)

	assert.Equal(t, int64(7), eng.CurrentQuantity("A"))
	assert.Equal(t, 2, eng.Len())
}

func TestAppend_CantidadNoPositiva(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	for _, qty := range []int64{0, -1, -50} {
		_, err := eng.Append(ctx, in("A", qty))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad %d", qty)
	}
	assert.Equal(t, 0, eng.Len(), "un movimiento rechazado no entra al libro")
}

func TestAppend_TipoOClaveInvalidos(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	_, err := eng.Append(ctx, ledger.MovementInputDTO{ItemKey: "A", Quantity: 1, Type: "ADJUSTMENT"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = eng.Append(ctx, in("   ", 1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, eng.Len())
}

func TestCurrentQuantity_NegativoSeReporta(t *testing.T) {
	eng, _ := newEngine(t)
	_, err := eng.Append(context.Background(), out("cerveza", 4))
	require.NoError(t, err)

	assert.Equal(t, int64(-4), eng.CurrentQuantity("cerveza"))
	assert.Equal(t, int64(0), eng.CurrentQuantity("sin-movimientos"))
}

func TestCurrentQuantities_IgualAReplayConIntercalado(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(42))
	keys := []string{"A", "B", "C", "D"}
	expected := map[string]int64{}

	for i := 0; i < 300; i++ {
		k := keys[rnd.Intn(len(keys))]
		qty := int64(rnd.Intn(20) + 1)
		if rnd.Intn(2) == 0 {
			_, err := eng.Append(ctx, in(k, qty))
			require.NoError(t, err)
			expected[k] += qty
		} else {
			_, err := eng.Append(ctx, out(k, qty))
			require.NoError(t, err)
			expected[k] -= qty
		}
	}

	assert.Equal(t, expected, eng.CurrentQuantities())
	assert.Equal(t, eng.Replay(), eng.CurrentQuantities())
	for _, k := range keys {
		assert.Equal(t, domainledger.QuantityOf(eng.Movements(""), k), eng.CurrentQuantity(k))
	}
	require.NoError(t, eng.Verify())
}

func TestLoad_ReplayDesdeCopiaPersistida(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	_, err := eng.Append(ctx, in("A", 10))
	require.NoError(t, err)
	_, err = eng.Append(ctx, out("B", 2))
	require.NoError(t, err)
	_, err = eng.PlaceOrder(ctx, ledger.OrderInputDTO{
		LocationKey: "Mesa 5", OwnerKey: "Laura",
		Lines: []entity.OrderLine{{ItemKey: "A", Quantity: 3}},
	})
	require.NoError(t, err)

	restored := ledger.NewEngine(store, zerolog.Nop(), nil)
	require.NoError(t, restored.Load(ctx))

	assert.Equal(t, eng.CurrentQuantities(), restored.CurrentQuantities())
	assert.Equal(t, eng.Movements(""), restored.Movements(""))
	assert.Len(t, restored.Orders(), 1)
	require.NoError(t, restored.Verify())
}

func TestAppend_FalloDePersistenciaNoMutaEstado(t *testing.T) {
	eng := ledger.NewEngine(failingRunner{}, zerolog.Nop(), nil)

	_, err := eng.Append(context.Background(), in("A", 5))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, eng.Len())
	assert.Equal(t, int64(0), eng.CurrentQuantity("A"))
}

func TestAppend_MarcaDeTiempoNoDecreciente(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(-time.Hour), base.Add(time.Minute)}
	i := 0
	eng.SetClock(func() time.Time { ts := times[i]; i++; return ts })

	for range times {
		_, err := eng.Append(ctx, in("A", 1))
		require.NoError(t, err)
	}
	movs := eng.Movements("A")
	require.Len(t, movs, 3)
	assert.Equal(t, base, movs[1].Timestamp, "un reloj que retrocede no rompe la monotonía")
	assert.Equal(t, base.Add(time.Minute), movs[2].Timestamp)
}

func TestMovements_FiltraPorReferencia(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()
	_, _ = eng.Append(ctx, in("A", 1))
	_, _ = eng.Append(ctx, in("B", 2))
	_, _ = eng.Append(ctx, out("A", 1))

	movs := eng.Movements("A")
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeIN, movs[0].Type)
	assert.Equal(t, entity.MovementTypeOUT, movs[1].Type)
	assert.NotEmpty(t, movs[0].ID)
	assert.Len(t, eng.Movements(""), 3)
}

func TestInventoryView_IncluyeCatalogoSinMovimientos(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()
	_, _ = eng.Append(ctx, in("aguila001", 24))
	_, _ = eng.Append(ctx, out("huerfano", 1))

	view := eng.InventoryView(map[string]string{
		"aguila001": "Aguila",
		"club001":   "Club Colombia",
	})
	assert.Equal(t, []entity.Stock{
		{ItemKey: "aguila001", Name: "Aguila", Quantity: 24},
		{ItemKey: "club001", Name: "Club Colombia", Quantity: 0},
		{ItemKey: "huerfano", Name: "", Quantity: -1},
	}, view)
}

func TestAppend_DesbordeSeRechaza(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	_, err := eng.Append(ctx, in("A", math.MaxInt64))
	require.NoError(t, err)
	_, err = eng.Append(ctx, in("A", 1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = eng.Append(ctx, out("B", math.MaxInt64))
	require.NoError(t, err)
	_, err = eng.Append(ctx, out("B", 2))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = eng.Append(ctx, out("B", 1))
	require.NoError(t, err, "MinInt64 todavía es representable")

	assert.Equal(t, int64(math.MaxInt64), eng.CurrentQuantity("A"))
	assert.Equal(t, int64(math.MinInt64), eng.CurrentQuantity("B"))
	assert.Equal(t, 3, eng.Len())
	require.NoError(t, eng.Verify())
}
