// Package metrics expone contadores Prometheus de los motores de libro y reconciliación.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/bitacora/internal/application/ledger"
	"github.com/jhoicas/bitacora/internal/application/reconcile"
)

var _ ledger.Recorder = (*Recorder)(nil)
var _ reconcile.Recorder = (*Recorder)(nil)

// Recorder implementa los puertos Recorder de ambos motores.
type Recorder struct {
	movements      *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	rosterSize     *prometheus.GaugeVec
	rosterDropped  *prometheus.GaugeVec
	rosterFailures *prometheus.CounterVec
	localMutations *prometheus.CounterVec
}

// NewRecorder crea y registra las métricas en registerer (por defecto el registro global).
func NewRecorder(registerer prometheus.Registerer, appName string) *Recorder {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		appName = "bitacora"
	}
	constLabels := prometheus.Labels{"service": appName}

	r := &Recorder{
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bitacora_ledger_movements_total",
			Help:        "Movimientos agregados al libro por tipo.",
			ConstLabels: constLabels,
		}, []string{"type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bitacora_ledger_rejected_total",
			Help:        "Comandos del libro rechazados por validación.",
			ConstLabels: constLabels,
		}, []string{"command"}),
		rosterSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "bitacora_roster_records",
			Help:        "Registros autoritativos cargados en el último refresco.",
			ConstLabels: constLabels,
		}, []string{"catalog"}),
		rosterDropped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "bitacora_roster_dropped_records",
			Help:        "Filas malformadas descartadas en el último refresco.",
			ConstLabels: constLabels,
		}, []string{"catalog"}),
		rosterFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bitacora_roster_refresh_failures_total",
			Help:        "Refrescos del roster fallidos (fuente no disponible).",
			ConstLabels: constLabels,
		}, []string{"catalog"}),
		localMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bitacora_local_mutations_total",
			Help:        "Escrituras confirmadas sobre registros locales y grupos.",
			ConstLabels: constLabels,
		}, []string{"catalog", "op"}),
	}
	registerer.MustRegister(r.movements, r.rejected, r.rosterSize, r.rosterDropped, r.rosterFailures, r.localMutations)
	return r
}

// MovementsAppended suma n movimientos confirmados del tipo dado.
func (r *Recorder) MovementsAppended(movementType string, n int) {
	r.movements.WithLabelValues(movementType).Add(float64(n))
}

// CommandRejected cuenta un comando rechazado por validación.
func (r *Recorder) CommandRejected(command string) {
	r.rejected.WithLabelValues(command).Inc()
}

// RosterLoaded fija el tamaño del roster cargado y los registros descartados.
func (r *Recorder) RosterLoaded(catalog string, loaded, dropped int) {
	r.rosterSize.WithLabelValues(catalog).Set(float64(loaded))
	r.rosterDropped.WithLabelValues(catalog).Set(float64(dropped))
}

// RosterRefreshFailed cuenta un refresco fallido del roster.
func (r *Recorder) RosterRefreshFailed(catalog string) {
	r.rosterFailures.WithLabelValues(catalog).Inc()
}

// LocalMutation cuenta una mutación local confirmada por catálogo y operación.
func (r *Recorder) LocalMutation(catalog, op string) {
	r.localMutations.WithLabelValues(catalog, op).Inc()
}
