package entity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Provenance origen de un registro de entidad.
type Provenance string

const (
	// ProvenanceAuthoritative proviene del roster externo (solo lectura, se recarga completo).
	ProvenanceAuthoritative Provenance = "authoritative"
	// ProvenanceLocal lo administra un operador (alta, edición, baja).
	ProvenanceLocal Provenance = "local"
)

// RecordFields campos descriptivos editables de un registro.
type RecordFields struct {
	Name    string
	Surname string // opcional; ausente equivale a vacío
	Email   string
	Phone   string
}

// EntityRecord estudiante o referencia de producto. IdentityKey es única dentro de cada origen.
type EntityRecord struct {
	IdentityKey string
	Name        string
	Surname     string
	Email       string
	Phone       string
	Source      Provenance
}

// Fields devuelve los campos descriptivos del registro.
func (r EntityRecord) Fields() RecordFields {
	return RecordFields{Name: r.Name, Surname: r.Surname, Email: r.Email, Phone: r.Phone}
}

// WithFields reemplaza todos los campos descriptivos (la clave no cambia).
func (r EntityRecord) WithFields(f RecordFields) EntityRecord {
	r.Name = f.Name
	r.Surname = f.Surname
	r.Email = f.Email
	r.Phone = f.Phone
	return r
}

// FullName compone nombre y apellido tolerando apellido ausente y espacios sobrantes.
func (r EntityRecord) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.Name) + " " + strings.TrimSpace(r.Surname))
}

// NameKey clave de respaldo derivada del nombre completo: NFC, sin distinción de
// mayúsculas y con espacios internos colapsados.
func (r EntityRecord) NameKey() string {
	return NormalizeName(r.FullName())
}

// NormalizeName normaliza un nombre para comparaciones de igualdad.
func NormalizeName(s string) string {
	s = norm.NFC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Normalize limpia espacios y resuelve la clave (IdentityKey o, en su defecto, NameKey).
// ok es false si el registro no tiene nombre o no se puede derivar una clave.
func (r EntityRecord) Normalize() (EntityRecord, bool) {
	r.IdentityKey = strings.TrimSpace(r.IdentityKey)
	r.Name = strings.TrimSpace(r.Name)
	r.Surname = strings.TrimSpace(r.Surname)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	if r.FullName() == "" {
		return r, false
	}
	if r.IdentityKey == "" {
		r.IdentityKey = r.NameKey()
	}
	return r, r.IdentityKey != ""
}
