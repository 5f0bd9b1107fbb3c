package ledger

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/bitacora/internal/domain"
	"github.com/jhoicas/bitacora/internal/domain/entity"
	domainledger "github.com/jhoicas/bitacora/internal/domain/ledger"
	"github.com/jhoicas/bitacora/internal/domain/repository"
)

// Agrupaciones del historial de pedidos.
const (
	GroupByNone     = "none"
	GroupByLocation = "location"
	GroupByOwner    = "owner"
)

// OrderInputDTO entrada para registrar un pedido.
type OrderInputDTO struct {
	LocationKey string
	OwnerKey    string
	Lines       []entity.OrderLine
}

// PlaceOrder valida todas las líneas y, solo si todas son válidas, registra el pedido
// y una salida (OUT) por línea, en orden, dentro de una misma transacción.
// Ningún lector observa un pedido aplicado a medias.
func (e *Engine) PlaceOrder(ctx context.Context, in OrderInputDTO) (entity.Order, error) {
	in.LocationKey = strings.TrimSpace(in.LocationKey)
	in.OwnerKey = strings.TrimSpace(in.OwnerKey)
	if err := validateOrder(in); err != nil {
		e.rec.CommandRejected("place_order")
		e.log.Debug().Str("location", in.LocationKey).Str("owner", in.OwnerKey).
			Int("lines", len(in.Lines)).Msg("pedido rechazado")
		return entity.Order{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.stamp()
	order := entity.Order{
		ID:          uuid.New().String(),
		LocationKey: in.LocationKey,
		OwnerKey:    in.OwnerKey,
		PlacedAt:    now,
		Lines:       make([]entity.OrderLine, 0, len(in.Lines)),
	}
	movs := make([]entity.Movement, 0, len(in.Lines))
	pending := make(map[string]int64, len(in.Lines))
	for _, l := range in.Lines {
		line := entity.OrderLine{ItemKey: strings.TrimSpace(l.ItemKey), Quantity: l.Quantity}
		total, seen := pending[line.ItemKey]
		if !seen {
			total = e.totals[line.ItemKey]
		}
		total, ok := domainledger.Add(total, -line.Quantity)
		if !ok {
			e.rec.CommandRejected("place_order")
			e.log.Warn().Str("item_key", line.ItemKey).Int64("quantity", line.Quantity).
				Msg("pedido rechazado: la cantidad desborda")
			return entity.Order{}, domain.ErrInvalidInput
		}
		pending[line.ItemKey] = total
		order.Lines = append(order.Lines, line)
		movs = append(movs, entity.Movement{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ItemKey:   line.ItemKey,
			Quantity:  line.Quantity,
			Type:      entity.MovementTypeOUT,
			Timestamp: now,
		})
	}

	err := e.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		orderRepo repository.OrderRepository,
		_ repository.AttendanceRepository,
	) error {
		if err := orderRepo.Create(ctx, &order); err != nil {
			return err
		}
		for i := range movs {
			if err := movRepo.Create(ctx, &movs[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return entity.Order{}, err
	}

	e.orders = append(e.orders, order)
	for _, m := range movs {
		e.commit(m)
	}
	e.rec.MovementsAppended(entity.MovementTypeOUT, len(movs))
	return order.Clone(), nil
}

func validateOrder(in OrderInputDTO) error {
	if in.LocationKey == "" || in.OwnerKey == "" || len(in.Lines) == 0 {
		return domain.ErrInvalidInput
	}
	for _, l := range in.Lines {
		if strings.TrimSpace(l.ItemKey) == "" || l.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// Orders devuelve los pedidos en orden de registro.
func (e *Engine) Orders() []entity.Order {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]entity.Order, 0, len(e.orders))
	for _, o := range e.orders {
		out = append(out, o.Clone())
	}
	return out
}

// OrderHistory devuelve el historial de pedidos agrupado: none = más recientes primero;
// location/owner = por esa clave y luego por fecha ascendente.
func (e *Engine) OrderHistory(groupBy string) ([]entity.Order, error) {
	var less func(a, b entity.Order) bool
	switch groupBy {
	case "", GroupByNone:
		less = func(a, b entity.Order) bool { return a.PlacedAt.After(b.PlacedAt) }
	case GroupByLocation:
		less = func(a, b entity.Order) bool {
			if a.LocationKey != b.LocationKey {
				return a.LocationKey < b.LocationKey
			}
			return a.PlacedAt.Before(b.PlacedAt)
		}
	case GroupByOwner:
		less = func(a, b entity.Order) bool {
			if a.OwnerKey != b.OwnerKey {
				return a.OwnerKey < b.OwnerKey
			}
			return a.PlacedAt.Before(b.PlacedAt)
		}
	default:
		return nil, domain.ErrInvalidInput
	}
	orders := e.Orders()
	sort.SliceStable(orders, func(i, j int) bool { return less(orders[i], orders[j]) })
	return orders, nil
}
