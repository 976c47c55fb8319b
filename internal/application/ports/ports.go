package ports

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
)

// SpreadsheetStore define el puerto de salida hacia la planilha única del despliegue.
// La aplicación sólo conoce este contrato; el adaptador decide formato y ubicación.
type SpreadsheetStore interface {
	// Parse lee un libro subido y devuelve sus filas de datos en orden.
	Parse(r io.Reader) ([]entity.SpreadsheetLine, error)
	// Save reemplaza la planilha con el contenido subido.
	Save(r io.Reader) error
	// Append agrega una fila (crea la planilha con encabezados si no existe).
	Append(row entity.SpreadsheetRow) error
	// Open abre la planilha para descarga; domain.ErrNotFound si no existe.
	Open() (io.ReadCloser, error)
	// Remove borra la planilha; que no exista no es error.
	Remove() error
	FileName() string
}

// AssetReport datos del relatorio de patrimonios.
type AssetReport struct {
	Title       string
	Scope       string // "Todos os inventariantes" o el nombre del responsable
	Query       string
	GeneratedAt time.Time
	Assets      []*entity.Asset
}

// ReportGenerator genera el relatorio de patrimonios en PDF.
type ReportGenerator interface {
	GenerateAssetReport(ctx context.Context, report AssetReport) ([]byte, error)
}

// Metrics contadores de negocio.
type Metrics interface {
	AssetMutation(op string)
	ObserveImport(imported, skipped int)
}

// NopMetrics descarta todo (tests, CLI).
type NopMetrics struct{}

func (NopMetrics) AssetMutation(string)    {}
func (NopMetrics) ObserveImport(int, int) {}
