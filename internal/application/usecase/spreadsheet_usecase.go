package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jhoicas/inventario-patrimonio/internal/application/ports"
	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/access"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/repository"
	"github.com/jhoicas/inventario-patrimonio/pkg/logger"
)

// SpreadsheetUseCase importación, purga y descarga de la planilha (sólo Admin).
type SpreadsheetUseCase struct {
	assets  repository.AssetRepository
	sheet   ports.SpreadsheetStore
	metrics ports.Metrics
	log     *logger.Logger
}

// NewSpreadsheetUseCase construye el caso de uso.
func NewSpreadsheetUseCase(assets repository.AssetRepository, sheet ports.SpreadsheetStore, metrics ports.Metrics, log *logger.Logger) *SpreadsheetUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SpreadsheetUseCase{assets: assets, sheet: sheet, metrics: metrics, log: log.Component("spreadsheet")}
}

// Import guarda el libro subido como planilha del despliegue y crea un patrimonio por fila
// válida, con responsable = inventariante de quien importa. Las filas inválidas o con tombo
// repetido se descartan sin error; el conteo va a logs y métricas, no al cliente.
func (uc *SpreadsheetUseCase) Import(ctx context.Context, s access.Subject, r io.Reader) (entity.ImportResult, error) {
	var res entity.ImportResult
	if err := access.Authorize(s, access.OpImportSpreadsheet, nil); err != nil {
		return res, err
	}
	owner, err := s.StaffID()
	if err != nil {
		return res, err
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return res, fmt.Errorf("ler upload: %w", err)
	}
	lines, err := uc.sheet.Parse(bytes.NewReader(body))
	if err != nil {
		return res, err
	}
	if err := uc.sheet.Save(bytes.NewReader(body)); err != nil {
		return res, err
	}

	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if line.Err != nil {
			res.Skipped++
			uc.log.Warn().Err(line.Err).Int("linha", line.Line).Msg("linha ignorada")
			continue
		}
		a := &entity.Asset{
			TagNumber:   line.Row.TagNumber,
			Description: line.Row.Description,
			Sector:      line.Row.Sector,
			Dependency:  line.Row.Dependency,
			Status:      line.Row.Status,
			StaffID:     owner,
		}
		if err := uc.assets.Create(ctx, a); err != nil {
			if errors.Is(err, domain.ErrDuplicateTag) {
				res.Skipped++
				uc.log.Warn().Int("linha", line.Line).Int64("tombo", a.TagNumber).
					Msg("linha ignorada: tombo já cadastrado")
				continue
			}
			return res, err
		}
		res.Imported++
	}

	uc.metrics.ObserveImport(res.Imported, res.Skipped)
	uc.log.Info().Int("importados", res.Imported).Int("ignorados", res.Skipped).Int64("staff_id", owner).
		Msg("importação concluída")
	return res, nil
}

// Purge borra la planilha y todos los patrimonios. Irreversible.
func (uc *SpreadsheetUseCase) Purge(ctx context.Context, s access.Subject) (int64, error) {
	if err := access.Authorize(s, access.OpPurgeSpreadsheet, nil); err != nil {
		return 0, err
	}
	if err := uc.sheet.Remove(); err != nil {
		return 0, err
	}
	n, err := uc.assets.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	uc.metrics.AssetMutation("purge")
	uc.log.Warn().Int64("excluidos", n).Msg("planilha e patrimônios removidos")
	return n, nil
}

// Download abre la planilha para descarga (domain.ErrNotFound si no existe).
func (uc *SpreadsheetUseCase) Download(_ context.Context, s access.Subject) (io.ReadCloser, string, error) {
	if err := access.Authorize(s, access.OpDownloadSpreadsheet, nil); err != nil {
		return nil, "", err
	}
	f, err := uc.sheet.Open()
	if err != nil {
		return nil, "", err
	}
	return f, uc.sheet.FileName(), nil
}
