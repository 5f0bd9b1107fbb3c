package reconcile_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/bitacora/internal/application/reconcile"
	"github.com/jhoicas/bitacora/internal/domain/entity"
)

// countingSource cuenta las lecturas y avisa por calls en cada una.
type countingSource struct {
	n     atomic.Int32
	calls chan struct{}
}

func (s *countingSource) Fetch(context.Context) ([]entity.EntityRecord, error) {
	s.n.Add(1)
	select {
	case s.calls <- struct{}{}:
	default:
	}
	return []entity.EntityRecord{rec("a1", "Ana", "")}, nil
}

func TestRefresher_RefrescaHastaCancelar(t *testing.T) {
	eng, _ := newEngine(t)
	src := &countingSource{calls: make(chan struct{}, 1)}
	r := reconcile.NewRefresher(eng, src, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-src.calls:
		case <-time.After(2 * time.Second):
			t.Fatal("el refresco no se ejecutó")
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run no terminó tras cancelar el contexto")
	}
	assert.GreaterOrEqual(t, src.n.Load(), int32(3))
	assert.Equal(t, []string{"a1"}, keys(eng.Reconciled()))
}

func TestRefresher_SinIntervaloRefrescaUnaVez(t *testing.T) {
	eng, _ := newEngine(t)
	src := &countingSource{calls: make(chan struct{}, 1)}
	reconcile.NewRefresher(eng, src, 0, zerolog.Nop()).Run(context.Background())
	assert.Equal(t, int32(1), src.n.Load())
}
