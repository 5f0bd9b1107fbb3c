package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	// ErrInvalidInput entrada con forma o valor inválido (cantidad no positiva, pedido vacío, etc.).
	ErrInvalidInput = errors.New("entrada inválida")
	// ErrDuplicate la clave de identidad ya existe entre los registros locales.
	ErrDuplicate = errors.New("recurso duplicado")
	// ErrNotFound no existe el registro local o grupo indicado.
	ErrNotFound = errors.New("recurso no encontrado")
	// ErrUpstreamUnavailable la fuente autoritativa (roster externo) no respondió.
	ErrUpstreamUnavailable = errors.New("fuente externa no disponible")
)
