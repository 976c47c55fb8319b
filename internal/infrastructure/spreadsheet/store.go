// Package spreadsheet es la planilha de patrimonios del despliegue: un único archivo .xlsx
// con nombre fijo en el área de archivos de la aplicación.
//
// Esquema (lectura y escritura): fila 1 = encabezados, datos desde la fila 2, columnas
// tombo, descricao, setor, dependencia, situacao. Se usa la primera hoja del libro.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-patrimonio/internal/application/ports"
	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
	"github.com/jhoicas/inventario-patrimonio/pkg/logger"
)

var _ ports.SpreadsheetStore = (*Store)(nil)

// HeaderRows filas de encabezado antes de los datos.
const HeaderRows = 1

// Headers títulos de columna en el orden del esquema.
var Headers = []string{"tombo", "descricao", "setor", "dependencia", "situacao"}

// Store acceso serializado al archivo de la planilha.
type Store struct {
	path string
	mu   sync.Mutex
	log  *logger.Logger
}

// NewStore crea el store para la ruta dada.
func NewStore(path string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{path: path, log: log.Component("spreadsheet")}
}

// Path ruta del archivo.
func (s *Store) Path() string { return s.path }

// FileName nombre del archivo (para Content-Disposition).
func (s *Store) FileName() string { return filepath.Base(s.path) }

// Exists informa si la planilha existe.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Parse lee un libro desde r y devuelve sus filas de datos en orden.
// Las filas totalmente vacías se omiten sin contarse.
func Parse(r io.Reader) ([]entity.SpreadsheetLine, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: arquivo não é uma planilha válida", domain.ErrInvalidInput)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: planilha sem abas", domain.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("ler planilha: %w", err)
	}

	var out []entity.SpreadsheetLine
	for i, cells := range rows {
		if i < HeaderRows || blank(cells) {
			continue
		}
		out = append(out, parseRow(i+1, cells))
	}
	return out, nil
}

func parseRow(line int, cells []string) entity.SpreadsheetLine {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	p := entity.SpreadsheetLine{Line: line}

	tag, ok := coerceTag(cell(0))
	if !ok {
		p.Err = fmt.Errorf("%w: linha %d: tombo %q não é inteiro positivo", domain.ErrImportRowSkipped, line, cell(0))
		return p
	}
	status := entity.StatusLocated
	if raw := cell(4); raw != "" {
		st, ok := entity.ParseAssetStatus(raw)
		if !ok {
			p.Err = fmt.Errorf("%w: linha %d: situação %q inválida", domain.ErrImportRowSkipped, line, raw)
			return p
		}
		status = st
	}
	p.Row = entity.SpreadsheetRow{
		TagNumber:   tag,
		Description: cell(1),
		Sector:      cell(2),
		Dependency:  cell(3),
		Status:      status,
	}
	return p
}

// coerceTag acepta "123" y también "123.0" (celdas numéricas formateadas como float).
// El tombo debe ser positivo, igual que en el formulario.
func coerceTag(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, n > 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || f < 1 || f > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Save reemplaza la planilha con el contenido de r (archivo subido).
// Escribe a un temporal y renombra para no dejar archivos a medias.
func (s *Store) Save(r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("criar diretório de mídia: %w", err)
	}
	tmp := filepath.Join(filepath.Dir(s.path), ".upload-"+uuid.NewString()+".xlsx")
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("criar temporário: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("gravar planilha: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("gravar planilha: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("substituir planilha: %w", err)
	}
	s.log.Info().Str("path", s.path).Msg("planilha substituída")
	return nil
}

// Append agrega una fila al final de la primera hoja. Si la planilha no existe se crea con encabezados.
func (s *Store) Append(row entity.SpreadsheetRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.openOrCreate()
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("ler planilha: %w", err)
	}
	next := len(rows) + 1
	if next <= HeaderRows {
		next = HeaderRows + 1
	}
	cell, err := excelize.CoordinatesToCellName(1, next)
	if err != nil {
		return err
	}
	values := []any{row.TagNumber, row.Description, row.Sector, row.Dependency, string(row.Status)}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("escrever linha: %w", err)
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("salvar planilha: %w", err)
	}
	s.log.Debug().Int64("tombo", row.TagNumber).Int("linha", next).Msg("linha adicionada à planilha")
	return nil
}

func (s *Store) openOrCreate() (*excelize.File, error) {
	f, err := excelize.OpenFile(s.path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("abrir planilha: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("criar diretório de mídia: %w", err)
	}
	f = excelize.NewFile()
	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(f.GetSheetName(0), "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("escrever cabeçalho: %w", err)
	}
	return f, nil
}

// Parse lee las filas de un libro subido (ver Parse).
func (s *Store) Parse(r io.Reader) ([]entity.SpreadsheetLine, error) { return Parse(r) }

// Open abre la planilha para descarga. domain.ErrNotFound si no existe.
func (s *Store) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("abrir planilha: %w", err)
	}
	return f, nil
}

// Remove borra la planilha; que no exista no es error.
func (s *Store) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remover planilha: %w", err)
	}
	return nil
}
