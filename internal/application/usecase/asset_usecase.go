package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jhoicas/inventario-patrimonio/internal/application/dto"
	"github.com/jhoicas/inventario-patrimonio/internal/application/ports"
	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/access"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/repository"
	"github.com/jhoicas/inventario-patrimonio/pkg/logger"
	"github.com/jhoicas/inventario-patrimonio/pkg/pagination"
)

// Valores del alta rápida.
const (
	QuickAddDescription = "Novo patrimônio"
	quickAddAttempts    = 3
)

// AssetUseCase CRUD de patrimonios con las reglas de acceso por rol y responsable.
type AssetUseCase struct {
	assets  repository.AssetRepository
	staff   repository.StaffRepository
	sheet   ports.SpreadsheetStore
	reports ports.ReportGenerator
	metrics ports.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewAssetUseCase construye el caso de uso. metrics y log pueden ser nil.
func NewAssetUseCase(
	assets repository.AssetRepository,
	staff repository.StaffRepository,
	sheet ports.SpreadsheetStore,
	reports ports.ReportGenerator,
	metrics ports.Metrics,
	log *logger.Logger,
) *AssetUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AssetUseCase{
		assets:  assets,
		staff:   staff,
		sheet:   sheet,
		reports: reports,
		metrics: metrics,
		log:     log.Component("assets"),
		now:     time.Now,
	}
}

// List página de patrimonios visibles para s que coinciden con query.
// Un Regular sin inventariante recibe una página vacía, no un error.
func (uc *AssetUseCase) List(ctx context.Context, s access.Subject, query, page string) (*dto.AssetListResponse, error) {
	query = strings.TrimSpace(query)
	owner, err := access.AssetScope(s)
	if errors.Is(err, domain.ErrNotAStaffMember) {
		return &dto.AssetListResponse{Page: pagination.New(page, 0, pagination.DefaultSize), Query: query}, nil
	}
	if err != nil {
		return nil, err
	}
	filter := entity.AssetFilter{Query: query, OwnerID: owner}

	total, err := uc.assets.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	p := pagination.New(page, total, pagination.DefaultSize)
	list, err := uc.assets.List(ctx, filter, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.AssetResponse, 0, len(list))
	for _, a := range list {
		items = append(items, dto.ToAssetResponse(a))
	}
	return &dto.AssetListResponse{Items: items, Page: p, Query: query}, nil
}

// Get patrimonio editable por s (ErrNotFound si no existe o es de otro responsable).
func (uc *AssetUseCase) Get(ctx context.Context, s access.Subject, id int64) (*entity.Asset, error) {
	a, err := uc.assets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(s, access.OpUpdateAsset, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Create alta de un patrimonio. Para Regular el responsable es siempre el propio.
func (uc *AssetUseCase) Create(ctx context.Context, s access.Subject, in dto.AssetInput) (*dto.AssetResponse, error) {
	if err := access.Authorize(s, access.OpCreateAsset, nil); err != nil {
		return nil, err
	}
	owner, err := uc.resolveOwner(ctx, s, in.StaffID, 0)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	if err := uc.cleanTagNumber(ctx, in.TagNumber, 0); err != nil {
		return nil, err
	}

	a := assetFromInput(in)
	a.Status = status
	a.StaffID = owner
	// la constraint única decide ante altas concurrentes con el mismo tombo
	if err := uc.assets.Create(ctx, a); err != nil {
		return nil, err
	}
	uc.metrics.AssetMutation("create")
	uc.log.Info().Int64("asset_id", a.ID).Int64("tombo", a.TagNumber).Int64("staff_id", owner).Msg("patrimônio criado")
	return uc.response(ctx, a.ID)
}

// Update reemplaza todos los campos mutables. Sólo Admin puede cambiar el responsable.
func (uc *AssetUseCase) Update(ctx context.Context, s access.Subject, id int64, in dto.AssetInput) (*dto.AssetResponse, error) {
	current, err := uc.Get(ctx, s, id)
	if err != nil {
		return nil, err
	}
	owner, err := uc.resolveOwner(ctx, s, in.StaffID, current.StaffID)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	if err := uc.cleanTagNumber(ctx, in.TagNumber, id); err != nil {
		return nil, err
	}

	a := assetFromInput(in)
	a.ID = id
	a.Status = status
	a.StaffID = owner
	a.CreatedAt = current.CreatedAt
	if err := uc.assets.Update(ctx, a); err != nil {
		return nil, err
	}
	uc.metrics.AssetMutation("update")
	uc.log.Info().Int64("asset_id", id).Int64("tombo", a.TagNumber).Msg("patrimônio atualizado")
	return uc.response(ctx, id)
}

// UpdateStatus cambia sólo la situación. raw acepta código o etiqueta.
func (uc *AssetUseCase) UpdateStatus(ctx context.Context, s access.Subject, id int64, raw string) (*dto.AssetResponse, error) {
	if _, err := uc.Get(ctx, s, id); err != nil {
		return nil, err
	}
	status, ok := entity.ParseAssetStatus(raw)
	if !ok {
		return nil, domain.ErrInvalidStatus
	}
	if err := uc.assets.UpdateStatus(ctx, id, status, uc.now()); err != nil {
		return nil, err
	}
	uc.metrics.AssetMutation("status")
	return uc.response(ctx, id)
}

// Delete borra un patrimonio propio (o cualquiera, para Admin).
func (uc *AssetUseCase) Delete(ctx context.Context, s access.Subject, id int64) error {
	a, err := uc.assets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(s, access.OpDeleteAsset, a); err != nil {
		return err
	}
	if err := uc.assets.Delete(ctx, id); err != nil {
		return err
	}
	uc.metrics.AssetMutation("delete")
	uc.log.Info().Int64("asset_id", id).Int64("tombo", a.TagNumber).Msg("patrimônio excluído")
	return nil
}

// NextTagNumber mayor tombo + 1 (1 si no hay patrimonios).
func (uc *AssetUseCase) NextTagNumber(ctx context.Context) (int64, error) {
	maxTag, err := uc.assets.MaxTagNumber(ctx)
	if err != nil {
		return 0, err
	}
	return maxTag + 1, nil
}

// QuickAdd crea un patrimonio con valores provisorios para el inventariante propio y
// agrega la fila a la planilha. La fila no forma parte de la transacción: si falla se registra.
func (uc *AssetUseCase) QuickAdd(ctx context.Context, s access.Subject) (*dto.AssetResponse, error) {
	if err := access.Authorize(s, access.OpQuickAddAsset, nil); err != nil {
		return nil, err
	}
	owner, err := s.StaffID()
	if err != nil {
		return nil, err
	}

	var a *entity.Asset
	for attempt := 1; ; attempt++ {
		tag, err := uc.NextTagNumber(ctx)
		if err != nil {
			return nil, err
		}
		a = &entity.Asset{
			TagNumber:   tag,
			Description: QuickAddDescription,
			Status:      entity.StatusLocated,
			StaffID:     owner,
		}
		err = uc.assets.Create(ctx, a)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrDuplicateTag) || attempt == quickAddAttempts {
			return nil, err
		}
		uc.log.Debug().Int64("tombo", tag).Int("tentativa", attempt).Msg("tombo ocupado, recalculando")
	}
	uc.metrics.AssetMutation("quick_add")
	uc.log.Info().Int64("asset_id", a.ID).Int64("tombo", a.TagNumber).Msg("patrimônio adicionado (rápido)")

	if uc.sheet != nil {
		if err := uc.sheet.Append(entity.SpreadsheetRowFromAsset(a)); err != nil {
			uc.log.Warn().Err(err).Int64("tombo", a.TagNumber).Msg("falha ao registrar linha na planilha")
		}
	}
	return uc.response(ctx, a.ID)
}

// Report relatorio PDF de los patrimonios visibles para s que coinciden con query.
func (uc *AssetUseCase) Report(ctx context.Context, s access.Subject, query string) ([]byte, error) {
	query = strings.TrimSpace(query)
	report := ports.AssetReport{
		Title:       "Relatório de Patrimônios",
		Scope:       "Todos os inventariantes",
		Query:       query,
		GeneratedAt: uc.now(),
	}
	owner, err := access.AssetScope(s)
	switch {
	case errors.Is(err, domain.ErrNotAStaffMember):
		report.Scope = s.User.FullName()
		return uc.reports.GenerateAssetReport(ctx, report)
	case err != nil:
		return nil, err
	}
	if owner != 0 {
		report.Scope = "Inventariante: " + s.Staff.DisplayName()
	}

	filter := entity.AssetFilter{Query: query, OwnerID: owner}
	total, err := uc.assets.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if total > 0 {
		report.Assets, err = uc.assets.List(ctx, filter, total, 0)
		if err != nil {
			return nil, err
		}
	}
	return uc.reports.GenerateAssetReport(ctx, report)
}

// StaffOptions responsables elegibles en el formulario (sólo Admin elige).
func (uc *AssetUseCase) StaffOptions(ctx context.Context, s access.Subject) ([]dto.StaffOption, error) {
	if !s.IsAdmin() {
		return nil, nil
	}
	total, err := uc.staff.Count(ctx, entity.StaffFilter{})
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}
	list, err := uc.staff.List(ctx, entity.StaffFilter{}, total, 0)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StaffOption, 0, len(list))
	for _, m := range list {
		out = append(out, dto.StaffOption{ID: m.ID, Label: m.DisplayName()})
	}
	return out, nil
}

// resolveOwner responsable efectivo: Admin puede elegir (validando que exista); si no elige
// se mantiene fallback (edición) o el propio (alta).
func (uc *AssetUseCase) resolveOwner(ctx context.Context, s access.Subject, requested, fallback int64) (int64, error) {
	if s.IsAdmin() && requested > 0 {
		m, err := uc.staff.GetByID(ctx, requested)
		if err != nil {
			return 0, err
		}
		if m == nil {
			return 0, domain.NewValidationError("staff_id", "Inventariante não encontrado.")
		}
		return m.ID, nil
	}
	if fallback > 0 {
		return fallback, nil
	}
	return access.AssetOwner(s, 0)
}

// cleanTagNumber pre-chequeo de unicidad excluyendo excludeID (mensaje de formulario);
// la garantía real es la constraint de la base.
func (uc *AssetUseCase) cleanTagNumber(ctx context.Context, tag, excludeID int64) error {
	existing, err := uc.assets.GetByTag(ctx, tag)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return domain.ErrDuplicateTag
	}
	return nil
}

func (uc *AssetUseCase) response(ctx context.Context, id int64) (*dto.AssetResponse, error) {
	a, err := uc.assets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	r := dto.ToAssetResponse(a)
	return &r, nil
}

// parseStatus vacío = localizado; cualquier otro valor debe ser una de las tres situaciones.
func parseStatus(raw string) (entity.AssetStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return entity.StatusLocated, nil
	}
	st, ok := entity.ParseAssetStatus(raw)
	if !ok {
		return "", domain.ErrInvalidStatus
	}
	return st, nil
}

func assetFromInput(in dto.AssetInput) *entity.Asset {
	return &entity.Asset{
		TagNumber:         in.TagNumber,
		Description:       in.Description,
		Value:             in.Value,
		AccountingAccount: in.AccountingAccount,
		Sector:            in.Sector,
		CommitmentNumber:  in.CommitmentNumber,
		Supplier:          in.Supplier,
		DocumentNumber:    in.DocumentNumber,
		DocumentDate:      in.DocumentDate,
		AttestationDate:   in.AttestationDate,
		Dependency:        in.Dependency,
		Notes:             in.Notes,
		InventoryDate:     in.InventoryDate,
	}
}
