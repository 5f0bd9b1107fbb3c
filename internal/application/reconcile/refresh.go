package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Refresher recarga periódicamente el roster autoritativo de un motor. Un fallo de la
// fuente deja intacto el roster anterior hasta el siguiente intento.
type Refresher struct {
	engine   *Engine
	source   RosterSource
	interval time.Duration
	log      zerolog.Logger
}

// NewRefresher construye el refresco periódico.
func NewRefresher(engine *Engine, source RosterSource, interval time.Duration, log zerolog.Logger) *Refresher {
	return &Refresher{
		engine:   engine,
		source:   source,
		interval: interval,
		log:      log.With().Str("component", "refresher").Str("catalog", engine.Catalog()).Logger(),
	}
}

// Run refresca de inmediato y luego cada interval, hasta que ctx se cancela.
func (r *Refresher) Run(ctx context.Context) {
	r.refresh(ctx)
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Debug().Msg("refresco detenido")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if _, err := r.engine.Refresh(ctx, r.source); err != nil {
		r.log.Warn().Err(err).Msg("refresco de roster fallido")
	}
}
