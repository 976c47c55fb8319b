package dto

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
	"github.com/jhoicas/inventario-patrimonio/pkg/pagination"
)

const dateLayout = "2006-01-02"

// maxAssetValue límite de NUMERIC(10,2).
var maxAssetValue = decimal.New(1, 8)

// AssetForm campos crudos del formulario de patrimonio.
type AssetForm struct {
	TagNumber         string `form:"tag_number" validate:"required,max=18"`
	Description       string `form:"description" validate:"max=2000"`
	Value             string `form:"value" validate:"max=20"`
	AccountingAccount string `form:"accounting_account" validate:"max=50"`
	Sector            string `form:"sector" validate:"max=100"`
	CommitmentNumber  string `form:"commitment_number" validate:"max=50"`
	Supplier          string `form:"supplier" validate:"max=100"`
	DocumentNumber    string `form:"document_number" validate:"max=50"`
	DocumentDate      string `form:"document_date" validate:"omitempty,datetime=2006-01-02"`
	AttestationDate   string `form:"attestation_date" validate:"omitempty,datetime=2006-01-02"`
	Dependency        string `form:"dependency" validate:"max=100"`
	Status            string `form:"status" validate:"max=30"`
	Notes             string `form:"notes" validate:"max=5000"`
	InventoryDate     string `form:"inventory_date" validate:"omitempty,datetime=2006-01-02"`
	StaffID           string `form:"staff_id" validate:"omitempty,numeric"`
}

// AssetInput valores tipados para crear/editar un patrimonio.
// Status queda crudo: el caso de uso lo valida (ErrInvalidStatus).
type AssetInput struct {
	TagNumber         int64
	Description       string
	Value             decimal.NullDecimal
	AccountingAccount string
	Sector            string
	CommitmentNumber  string
	Supplier          string
	DocumentNumber    string
	DocumentDate      *time.Time
	AttestationDate   *time.Time
	Dependency        string
	Status            string
	Notes             string
	InventoryDate     *time.Time
	StaffID           int64 // sólo Admin; 0 = propio
}

// ToInput convierte el formulario. Los errores por campo vuelven como *domain.ValidationError.
func (f AssetForm) ToInput() (AssetInput, error) {
	verr := &domain.ValidationError{}
	in := AssetInput{
		Description:       strings.TrimSpace(f.Description),
		AccountingAccount: strings.TrimSpace(f.AccountingAccount),
		Sector:            strings.TrimSpace(f.Sector),
		CommitmentNumber:  strings.TrimSpace(f.CommitmentNumber),
		Supplier:          strings.TrimSpace(f.Supplier),
		DocumentNumber:    strings.TrimSpace(f.DocumentNumber),
		Dependency:        strings.TrimSpace(f.Dependency),
		Status:            strings.TrimSpace(f.Status),
		Notes:             strings.TrimSpace(f.Notes),
	}

	tag, err := strconv.ParseInt(strings.TrimSpace(f.TagNumber), 10, 64)
	if err != nil {
		verr.Add("tag_number", "Informe um número inteiro.")
	} else if tag <= 0 {
		verr.Add("tag_number", "O tombo deve ser positivo.")
	}
	in.TagNumber = tag

	if raw := strings.TrimSpace(f.Value); raw != "" {
		v, err := ParseMoney(raw)
		switch {
		case err != nil:
			verr.Add("value", "Informe um valor numérico.")
		case v.IsNegative():
			verr.Add("value", "O valor não pode ser negativo.")
		case v.Round(2).GreaterThanOrEqual(maxAssetValue):
			verr.Add("value", "Valor acima do permitido.")
		default:
			in.Value = decimal.NewNullDecimal(v.Round(2))
		}
	}

	in.DocumentDate = parseDate(verr, "document_date", f.DocumentDate)
	in.AttestationDate = parseDate(verr, "attestation_date", f.AttestationDate)
	in.InventoryDate = parseDate(verr, "inventory_date", f.InventoryDate)

	if raw := strings.TrimSpace(f.StaffID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			verr.Add("staff_id", "Inventariante inválido.")
		}
		in.StaffID = id
	}

	if !verr.Empty() {
		return in, verr
	}
	return in, nil
}

// thousandsOnly "1.234" o "12.345.678": puntos como separador de miles (pt-BR).
var thousandsOnly = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)

// ParseMoney acepta "1234.56", "1234,56", "1.234,56" y "1.234" (= 1234).
func ParseMoney(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	s = strings.TrimPrefix(s, "R$")
	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case thousandsOnly.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}
	return decimal.NewFromString(s)
}

func parseDate(verr *domain.ValidationError, field, raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		verr.Add(field, "Data inválida (use AAAA-MM-DD).")
		return nil
	}
	return &t
}

// AssetFormFrom rellena el formulario de edición.
func AssetFormFrom(a *entity.Asset) AssetForm {
	f := AssetForm{
		TagNumber:         strconv.FormatInt(a.TagNumber, 10),
		Description:       a.Description,
		AccountingAccount: a.AccountingAccount,
		Sector:            a.Sector,
		CommitmentNumber:  a.CommitmentNumber,
		Supplier:          a.Supplier,
		DocumentNumber:    a.DocumentNumber,
		DocumentDate:      formatDate(a.DocumentDate),
		AttestationDate:   formatDate(a.AttestationDate),
		Dependency:        a.Dependency,
		Status:            string(a.Status),
		Notes:             a.Notes,
		InventoryDate:     formatDate(a.InventoryDate),
		StaffID:           strconv.FormatInt(a.StaffID, 10),
	}
	if a.Value.Valid {
		f.Value = a.Value.Decimal.StringFixed(2)
	}
	return f
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// AssetResponse patrimonio listo para presentar.
type AssetResponse struct {
	ID                int64  `json:"id"`
	TagNumber         int64  `json:"tag_number"`
	Description       string `json:"description"`
	Value             string `json:"value,omitempty"`
	AccountingAccount string `json:"accounting_account,omitempty"`
	Sector            string `json:"sector"`
	CommitmentNumber  string `json:"commitment_number,omitempty"`
	Supplier          string `json:"supplier,omitempty"`
	DocumentNumber    string `json:"document_number,omitempty"`
	DocumentDate      string `json:"document_date,omitempty"`
	AttestationDate   string `json:"attestation_date,omitempty"`
	Dependency        string `json:"dependency"`
	Status            string `json:"status"`
	StatusLabel       string `json:"status_label"`
	Notes             string `json:"notes,omitempty"`
	InventoryDate     string `json:"inventory_date,omitempty"`
	StaffID           int64  `json:"staff_id"`
	OwnerUsername     string `json:"owner_username"`
	OwnerName         string `json:"owner_name"`
}

// ToAssetResponse mapea la entidad.
func ToAssetResponse(a *entity.Asset) AssetResponse {
	r := AssetResponse{
		ID:                a.ID,
		TagNumber:         a.TagNumber,
		Description:       a.Description,
		AccountingAccount: a.AccountingAccount,
		Sector:            a.Sector,
		CommitmentNumber:  a.CommitmentNumber,
		Supplier:          a.Supplier,
		DocumentNumber:    a.DocumentNumber,
		DocumentDate:      formatDate(a.DocumentDate),
		AttestationDate:   formatDate(a.AttestationDate),
		Dependency:        a.Dependency,
		Status:            string(a.Status),
		StatusLabel:       a.Status.Label(),
		Notes:             a.Notes,
		InventoryDate:     formatDate(a.InventoryDate),
		StaffID:           a.StaffID,
		OwnerUsername:     a.OwnerUsername,
		OwnerName:         a.OwnerName,
	}
	if a.Value.Valid {
		r.Value = a.Value.Decimal.StringFixed(2)
	}
	return r
}

// AssetListResponse una página del listado.
type AssetListResponse struct {
	Items []AssetResponse
	Page  pagination.Page
	Query string
}

// StatusOption opción del selector de situação.
type StatusOption struct {
	Value string
	Label string
}

// StatusOptions las tres situaciones en orden de presentación.
func StatusOptions() []StatusOption {
	out := make([]StatusOption, 0, len(entity.AssetStatuses))
	for _, s := range entity.AssetStatuses {
		out = append(out, StatusOption{Value: string(s), Label: s.Label()})
	}
	return out
}
