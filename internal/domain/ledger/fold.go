// Package ledger contiene las reglas puras del libro append-only: el plegado (fold) de
// movimientos en cantidades actuales. No depende de almacenamiento ni de concurrencia.
package ledger

import "github.com/jhoicas/bitacora/internal/domain/entity"

// Apply acumula un movimiento en totals (suma corrida con signo por referencia).
func Apply(totals map[string]int64, m entity.Movement) {
	totals[m.ItemKey] += m.Signed()
}

// Fold recorre el libro una sola vez y devuelve la cantidad actual por referencia:
// sum(IN) - sum(OUT). Los valores negativos se conservan tal cual.
func Fold(movements []entity.Movement) map[string]int64 {
	totals := make(map[string]int64)
	for _, m := range movements {
		Apply(totals, m)
	}
	return totals
}

// QuantityOf pliega solo los movimientos de itemKey; 0 si no hay ninguno.
func QuantityOf(movements []entity.Movement, itemKey string) int64 {
	var q int64
	for _, m := range movements {
		if m.ItemKey == itemKey {
			q += m.Signed()
		}
	}
	return q
}

// Add suma delta a total. ok es false si el resultado desborda int64.
func Add(total, delta int64) (sum int64, ok bool) {
	sum = total + delta
	if (delta > 0 && sum < total) || (delta < 0 && sum > total) {
		return total, false
	}
	return sum, true
}
