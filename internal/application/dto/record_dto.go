package dto

import "github.com/jhoicas/bitacora/internal/domain/entity"

// RecordRequest body para alta, edición y cambio de clave de un registro local.
type RecordRequest struct {
	IdentityKey string `json:"identity_key"`
	Name        string `json:"name"`
	Surname     string `json:"surname,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// ToEntity convierte el body en un registro (la clave puede venir vacía: se deriva del nombre).
func (r RecordRequest) ToEntity() entity.EntityRecord {
	return entity.EntityRecord{
		IdentityKey: r.IdentityKey,
		Name:        r.Name,
		Surname:     r.Surname,
		Email:       r.Email,
		Phone:       r.Phone,
	}
}

// Fields devuelve solo los campos descriptivos.
func (r RecordRequest) Fields() entity.RecordFields {
	return entity.RecordFields{Name: r.Name, Surname: r.Surname, Email: r.Email, Phone: r.Phone}
}

// RecordResponse registro de la vista reconciliada.
type RecordResponse struct {
	IdentityKey string `json:"identity_key"`
	Name        string `json:"name"`
	Surname     string `json:"surname,omitempty"`
	FullName    string `json:"full_name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Source      string `json:"source"`
}

// FromRecord convierte un registro reconciliado a su respuesta.
func FromRecord(r entity.EntityRecord) RecordResponse {
	return RecordResponse{
		IdentityKey: r.IdentityKey,
		Name:        r.Name,
		Surname:     r.Surname,
		FullName:    r.FullName(),
		Email:       r.Email,
		Phone:       r.Phone,
		Source:      string(r.Source),
	}
}

// FromRecords convierte la vista reconciliada.
func FromRecords(list []entity.EntityRecord) []RecordResponse {
	out := make([]RecordResponse, 0, len(list))
	for _, r := range list {
		out = append(out, FromRecord(r))
	}
	return out
}

// GroupRequest body para POST /groups.
type GroupRequest struct {
	Key     string   `json:"key"`
	Members []string `json:"members"`
}

// GroupResponse grupo con sus claves de miembros (pueden incluir claves obsoletas).
type GroupResponse struct {
	Key     string   `json:"key"`
	Members []string `json:"members"`
}

// FromGroups convierte la lista de grupos.
func FromGroups(list []entity.Group) []GroupResponse {
	out := make([]GroupResponse, 0, len(list))
	for _, g := range list {
		members := g.Members
		if members == nil {
			members = []string{}
		}
		out = append(out, GroupResponse{Key: g.Key, Members: members})
	}
	return out
}

// LoadReportResponse resultado de un refresco del roster.
type LoadReportResponse struct {
	Loaded     int `json:"loaded"`
	Dropped    int `json:"dropped"`
	Duplicates int `json:"duplicates"`
}
