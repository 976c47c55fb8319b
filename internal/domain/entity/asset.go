package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-patrimonio/pkg/textnorm"
)

// AssetStatus situación de un patrimonio.
type AssetStatus string

// Situaciones válidas (los valores son los persistidos).
const (
	StatusLocated      AssetStatus = "localizado"
	StatusNotLocated   AssetStatus = "nao_localizado"
	StatusCalamityLoss AssetStatus = "calamidade"
)

// AssetStatuses en el orden en que se presentan.
var AssetStatuses = []AssetStatus{StatusLocated, StatusNotLocated, StatusCalamityLoss}

var statusLabels = map[AssetStatus]string{
	StatusLocated:      "Localizado",
	StatusNotLocated:   "Não Localizado",
	StatusCalamityLoss: "Perda por Calamidade",
}

// Label texto para presentar al usuario.
func (s AssetStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid informa si s es una de las tres situaciones.
func (s AssetStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// ParseAssetStatus acepta el código ("nao_localizado") o la etiqueta con cualquier
// capitalización o acentuación ("Não Localizado"). Texto vacío devuelve ok=false.
func ParseAssetStatus(raw string) (AssetStatus, bool) {
	key := textnorm.Key(raw)
	if key == "" {
		return "", false
	}
	for s, label := range statusLabels {
		if key == string(s) || key == textnorm.Key(label) {
			return s, true
		}
	}
	return "", false
}

// Asset patrimônio: un bien tangible con tombo único.
type Asset struct {
	ID                int64
	TagNumber         int64 // tombo
	Description       string
	Value             decimal.NullDecimal // 2 decimales
	AccountingAccount string
	Sector            string
	CommitmentNumber  string // empenho
	Supplier          string
	DocumentNumber    string
	DocumentDate      *time.Time
	AttestationDate   *time.Time
	Dependency        string
	Status            AssetStatus
	Notes             string
	InventoryDate     *time.Time
	StaffID           int64 // inventariante responsable
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Datos del responsable cargados en lecturas (no se persisten desde aquí).
	OwnerUsername string
	OwnerName     string
}

// Normalize aplica los valores por defecto antes de persistir.
func (a *Asset) Normalize() {
	if a.Status == "" {
		a.Status = StatusLocated
	}
	if a.Value.Valid {
		a.Value.Decimal = a.Value.Decimal.Round(2)
	}
}

// AssetFilter criterios de listado. OwnerID == 0 significa todos los inventariantes.
type AssetFilter struct {
	Query   string // subcadena sobre tombo, descripción, setor y dependencia
	OwnerID int64
}
