// Package roster lee el roster autoritativo de estudiantes desde un CSV, ya sea la
// exportación publicada de una hoja de cálculo (URL) o un archivo local.
package roster

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/bitacora/internal/application/reconcile"
	"github.com/jhoicas/bitacora/internal/domain/entity"
	"github.com/jhoicas/bitacora/pkg/config"
)

var _ reconcile.RosterSource = (*CSVSource)(nil)

// ErrMissingHeader el CSV no trae una columna de nombre ni de clave.
var ErrMissingHeader = errors.New("roster: faltan columnas id/nombre")

// ErrTooLarge la exportación remota supera maxBody; nunca se parsea a medias.
var ErrTooLarge = errors.New("roster: la exportación supera el tamaño máximo")

// maxBody límite de lectura de la exportación remota.
const maxBody = 16 << 20

// columnas aceptadas (en minúsculas, sin espacios sobrantes).
var headerAliases = map[string]string{
	"id":        "id",
	"clave":     "id",
	"documento": "id",
	"nombre":    "name",
	"nombres":   "name",
	"name":      "name",
	"apellido":  "surname",
	"apellidos": "surname",
	"surname":   "surname",
	"email":     "email",
	"correo":    "email",
	"telefono":  "phone",
	"teléfono":  "phone",
	"phone":     "phone",
}

// CSVSource implementa reconcile.RosterSource.
type CSVSource struct {
	url     string
	path    string
	charset string
	client  *http.Client
}

// NewCSVSource construye la fuente a partir de la configuración. URL tiene prioridad sobre Path.
func NewCSVSource(cfg config.RosterConfig) *CSVSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &CSVSource{
		url:     cfg.URL,
		path:    cfg.Path,
		charset: cfg.Charset,
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch descarga o lee el CSV y lo convierte en registros. Cualquier error de red, de
// estado HTTP o de formato se devuelve sin tocar el roster vigente (lo decide el motor).
func (s *CSVSource) Fetch(ctx context.Context) ([]entity.EntityRecord, error) {
	var (
		raw []byte
		err error
	)
	switch {
	case s.url != "":
		raw, err = s.download(ctx)
	case s.path != "":
		raw, err = os.ReadFile(s.path)
	default:
		return nil, errors.New("roster: sin URL ni archivo configurado")
	}
	if err != nil {
		return nil, err
	}
	return ParseCSV(bytes.NewReader(raw), s.charset)
}

func (s *CSVSource) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("roster request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("roster download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("roster download: status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("roster download: %w", err)
	}
	if len(raw) > maxBody {
		return nil, ErrTooLarge
	}
	return raw, nil
}

// decoder devuelve r decodificado a UTF-8 según charset.
func decoder(r io.Reader, charset string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return r
	}
}

// ParseCSV lee un roster con encabezado. Acepta coma o punto y coma como separador y
// conserva filas incompletas: el motor descarta y cuenta las malformadas.
func ParseCSV(r io.Reader, charset string) ([]entity.EntityRecord, error) {
	raw, err := io.ReadAll(decoder(r, charset))
	if err != nil {
		return nil, fmt.Errorf("roster read: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if firstLine, _, _ := bytes.Cut(raw, []byte("\n")); bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		cr.Comma = ';'
	}

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("roster header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if field, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}
	_, hasID := cols["id"]
	_, hasName := cols["name"]
	if !hasID && !hasName {
		return nil, ErrMissingHeader
	}

	var records []entity.EntityRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("roster row: %w", err)
		}
		if isBlank(row) {
			continue
		}
		get := func(field string) string {
			i, ok := cols[field]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		records = append(records, entity.EntityRecord{
			IdentityKey: get("id"),
			Name:        get("name"),
			Surname:     get("surname"),
			Email:       get("email"),
			Phone:       get("phone"),
			Source:      entity.ProvenanceAuthoritative,
		})
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
