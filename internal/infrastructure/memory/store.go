// Package memory implementa los puertos de persistencia en memoria, con volcado
// opcional a un archivo JSON después de cada transacción confirmada.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jhoicas/bitacora/internal/application/ledger"
	"github.com/jhoicas/bitacora/internal/application/reconcile"
	"github.com/jhoicas/bitacora/internal/domain/entity"
	"github.com/jhoicas/bitacora/internal/domain/repository"
)

var _ ledger.TxRunner = (*Store)(nil)
var _ reconcile.TxRunner = (*Store)(nil)

// dataset es el contenido completo del almacén; también es el formato del snapshot en disco.
type dataset struct {
	Movements  []entity.Movement                `json:"movements"`
	Orders     []entity.Order                   `json:"orders"`
	Attendance []entity.AttendanceSnapshot      `json:"attendance"`
	Records    map[string][]entity.EntityRecord `json:"records"`
	Groups     map[string][]entity.Group        `json:"groups"`
}

func newDataset() dataset {
	return dataset{
		Records: make(map[string][]entity.EntityRecord),
		Groups:  make(map[string][]entity.Group),
	}
}

// clone copia profunda: una transacción trabaja sobre la copia y solo se publica al confirmar.
func (d dataset) clone() dataset {
	out := newDataset()
	out.Movements = append([]entity.Movement(nil), d.Movements...)
	for _, o := range d.Orders {
		out.Orders = append(out.Orders, o.Clone())
	}
	for _, s := range d.Attendance {
		out.Attendance = append(out.Attendance, s.Clone())
	}
	for catalog, recs := range d.Records {
		out.Records[catalog] = append([]entity.EntityRecord(nil), recs...)
	}
	for catalog, groups := range d.Groups {
		cp := make([]entity.Group, 0, len(groups))
		for _, g := range groups {
			cp = append(cp, g.Clone())
		}
		out.Groups[catalog] = cp
	}
	return out
}

// Store almacén transaccional en memoria. Las transacciones se serializan con un mutex
// y trabajan copy-on-write, de modo que un error descarta todos los cambios.
type Store struct {
	mu           sync.Mutex
	data         dataset
	snapshotPath string
}

// NewStore crea un almacén vacío sin persistencia en disco.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// Open crea un almacén respaldado por snapshotPath; si el archivo existe se carga.
func Open(snapshotPath string) (*Store, error) {
	s := &Store{data: newDataset(), snapshotPath: snapshotPath}
	if snapshotPath == "" {
		return s, nil
	}
	raw, err := os.ReadFile(snapshotPath)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.data.Records == nil {
		s.data.Records = make(map[string][]entity.EntityRecord)
	}
	if s.data.Groups == nil {
		s.data.Groups = make(map[string][]entity.Group)
	}
	return s, nil
}

// Run ejecuta fn con los repositorios del libro sobre una copia del almacén.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	orderRepo repository.OrderRepository,
	attendanceRepo repository.AttendanceRepository,
) error) error {
	return s.transact(ctx, func(d *dataset) error {
		return fn(&movementRepo{d: d}, &orderRepo{d: d}, &attendanceRepo{d: d})
	})
}

// RunRecords ejecuta fn con los repositorios de registros y grupos sobre una copia del almacén.
func (s *Store) RunRecords(ctx context.Context, fn func(
	recordRepo repository.RecordRepository,
	groupRepo repository.GroupRepository,
) error) error {
	return s.transact(ctx, func(d *dataset) error {
		return fn(&recordRepo{d: d}, &groupRepo{d: d})
	})
}

func (s *Store) transact(ctx context.Context, fn func(d *dataset) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&work); err != nil {
		return err
	}
	if err := s.persist(work); err != nil {
		return err
	}
	s.data = work
	return nil
}

// persist escribe el snapshot en un archivo temporal y lo renombra (reemplazo atómico).
func (s *Store) persist(d dataset) error {
	if s.snapshotPath == "" {
		return nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	dir := filepath.Dir(s.snapshotPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.snapshotPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
