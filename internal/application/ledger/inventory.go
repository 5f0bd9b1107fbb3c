package ledger

import (
	"sort"

	"github.com/jhoicas/bitacora/internal/domain/entity"
)

// InventoryView combina el catálogo (itemKey -> nombre) con las cantidades actuales.
// Incluye las referencias del catálogo sin movimientos (cantidad 0) y las referencias
// con movimientos que no están en el catálogo (nombre vacío). Ordenado por itemKey.
func (e *Engine) InventoryView(names map[string]string) []entity.Stock {
	quantities := e.CurrentQuantities()
	keys := make(map[string]struct{}, len(names)+len(quantities))
	for k := range names {
		keys[k] = struct{}{}
	}
	for k := range quantities {
		keys[k] = struct{}{}
	}
	out := make([]entity.Stock, 0, len(keys))
	for k := range keys {
		out = append(out, entity.Stock{ItemKey: k, Name: names[k], Quantity: quantities[k]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemKey < out[j].ItemKey })
	return out
}
