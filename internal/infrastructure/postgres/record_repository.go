package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/bitacora/internal/domain"
	"github.com/jhoicas/bitacora/internal/domain/entity"
	"github.com/jhoicas/bitacora/internal/domain/repository"
)

var _ repository.RecordRepository = (*RecordRepo)(nil)

// RecordRepo registros locales por catálogo (usable con pool o tx).
type RecordRepo struct {
	q Querier
}

// NewRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecordRepository(q Querier) *RecordRepo {
	return &RecordRepo{q: q}
}

// Create persiste un registro local; domain.ErrDuplicate si la clave ya existe en el catálogo.
func (r *RecordRepo) Create(ctx context.Context, catalog string, rec *entity.EntityRecord) error {
	query := `
		INSERT INTO local_records (catalog, identity_key, name, surname, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, catalog, rec.IdentityKey, rec.Name, rec.Surname, rec.Email, rec.Phone)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert local record: %w", err)
	}
	return nil
}

// Update reemplaza los campos descriptivos; domain.ErrNotFound si la clave no existe.
func (r *RecordRepo) Update(ctx context.Context, catalog string, rec *entity.EntityRecord) error {
	query := `
		UPDATE local_records SET name = $3, surname = $4, email = $5, phone = $6
		WHERE catalog = $1 AND identity_key = $2`
	tag, err := r.q.Exec(ctx, query, catalog, rec.IdentityKey, rec.Name, rec.Surname, rec.Email, rec.Phone)
	if err != nil {
		return fmt.Errorf("update local record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un registro local; domain.ErrNotFound si la clave no existe.
func (r *RecordRepo) Delete(ctx context.Context, catalog, identityKey string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM local_records WHERE catalog = $1 AND identity_key = $2`, catalog, identityKey)
	if err != nil {
		return fmt.Errorf("delete local record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteAll elimina todos los registros locales del catálogo.
func (r *RecordRepo) DeleteAll(ctx context.Context, catalog string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM local_records WHERE catalog = $1`, catalog); err != nil {
		return fmt.Errorf("clear local records: %w", err)
	}
	return nil
}

// List devuelve los registros del catálogo en orden de creación.
func (r *RecordRepo) List(ctx context.Context, catalog string) ([]*entity.EntityRecord, error) {
	query := `
		SELECT identity_key, name, surname, email, phone
		FROM local_records WHERE catalog = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, catalog)
	if err != nil {
		return nil, fmt.Errorf("list local records: %w", err)
	}
	defer rows.Close()

	var list []*entity.EntityRecord
	for rows.Next() {
		rec := entity.EntityRecord{Source: entity.ProvenanceLocal}
		if err := rows.Scan(&rec.IdentityKey, &rec.Name, &rec.Surname, &rec.Email, &rec.Phone); err != nil {
			return nil, fmt.Errorf("scan local record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
