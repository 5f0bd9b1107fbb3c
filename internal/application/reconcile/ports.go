package reconcile

import (
	"context"

	"github.com/jhoicas/bitacora/internal/domain/entity"
	"github.com/jhoicas/bitacora/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con los repositorios de registros locales
// y grupos. Si fn devuelve error no se persiste nada.
type TxRunner interface {
	RunRecords(ctx context.Context, fn func(
		recordRepo repository.RecordRepository,
		groupRepo repository.GroupRepository,
	) error) error
}

// RosterSource entrega el roster autoritativo completo (hoja de cálculo, archivo, API).
type RosterSource interface {
	Fetch(ctx context.Context) ([]entity.EntityRecord, error)
}

// Recorder recibe señales de observabilidad del motor (métricas).
type Recorder interface {
	RosterLoaded(catalog string, loaded, dropped int)
	RosterRefreshFailed(catalog string)
	LocalMutation(catalog, op string)
}

type nopRecorder struct{}

func (nopRecorder) RosterLoaded(string, int, int) {}
func (nopRecorder) RosterRefreshFailed(string)    {}
func (nopRecorder) LocalMutation(string, string)  {}
