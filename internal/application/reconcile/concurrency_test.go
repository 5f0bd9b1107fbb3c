package reconcile_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bitacora/internal/domain/entity"
)

func roster(prefix string, n int) []entity.EntityRecord {
	out := make([]entity.EntityRecord, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, rec(fmt.Sprintf("%s%d", prefix, i), fmt.Sprintf("Nombre %s%d", prefix, i), ""))
	}
	return out
}

// observe llama a view en bucle hasta que done se cierra y devuelve la primera vista
// que check rechace.
func observe(view func() []entity.EntityRecord, check func([]string) bool, done <-chan struct{}) <-chan []string {
	bad := make(chan []string, 1)
	go func() {
		defer close(bad)
		for {
			select {
			case <-done:
				return
			default:
			}
			ks := keys(view())
			if !check(ks) {
				bad <- ks
				return
			}
		}
	}()
	return bad
}

func sinDuplicados(ks []string) bool {
	seen := make(map[string]struct{}, len(ks))
	for _, k := range ks {
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}

func TestLoadAuthoritative_LectoresVenIntercambioAtomico(t *testing.T) {
	eng, _ := newEngine(t)
	chico, grande := roster("a", 3), roster("b", 7)
	eng.LoadAuthoritative(chico)
	wantChico, wantGrande := keys(chico), keys(grande)

	done := make(chan struct{})
	bad := observe(eng.Reconciled, func(ks []string) bool {
		if !sinDuplicados(ks) {
			return false
		}
		return assert.ObjectsAreEqual(wantChico, ks) || assert.ObjectsAreEqual(wantGrande, ks)
	}, done)

	for i := 0; i < 500; i++ {
		if i%2 == 0 {
			eng.LoadAuthoritative(grande)
		} else {
			eng.LoadAuthoritative(chico)
		}
	}
	close(done)

	ks, seen := <-bad
	assert.False(t, seen, "vista intermedia observada: %v", ks)
}

func TestRekeyLocal_LectoresNuncaVenCambioAMedias(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()
	eng.LoadAuthoritative(roster("a", 2))
	require.NoError(t, eng.AddLocal(ctx, rec("l1", "Lucía", "")))

	done := make(chan struct{})
	bad := observe(eng.Reconciled, func(ks []string) bool {
		if len(ks) != 3 || !sinDuplicados(ks) {
			return false
		}
		last := ks[2]
		return last == "l1" || last == "l2"
	}, done)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		from, to := "l1", "l2"
		for i := 0; i < 300; i++ {
			if err := eng.RekeyLocal(ctx, from, rec(to, "Lucía", "")); err != nil {
				t.Errorf("rekey %s→%s: %v", from, to, err)
				return
			}
			from, to = to, from
		}
	}()
	wg.Wait()
	close(done)

	ks, seen := <-bad
	assert.False(t, seen, "vista intermedia observada: %v", ks)
	assert.Equal(t, []string{"a1", "a2", "l1"}, keys(eng.Reconciled()))
}
