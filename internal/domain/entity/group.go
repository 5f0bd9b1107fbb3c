package entity

// Group agrupa claves de identidad (p. ej. un curso). Los miembros que ya no existen
// en la vista reconciliada se toleran y simplemente no se muestran.
type Group struct {
	Key     string
	Members []string
}

// Clone copia el grupo y su lista de miembros.
func (g Group) Clone() Group {
	g.Members = append([]string(nil), g.Members...)
	return g
}

// Has indica si identityKey pertenece al grupo.
func (g Group) Has(identityKey string) bool {
	for _, m := range g.Members {
		if m == identityKey {
			return true
		}
	}
	return false
}
