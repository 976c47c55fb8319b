package usecase_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/spreadsheet"
)

// workbook arma un .xlsx en memoria con la cabecera estándar y las filas dadas.
func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]any, len(spreadsheet.Headers))
	for i, h := range spreadsheet.Headers {
		header[i] = h
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// Escenario: 3 filas con la fila 2 inválida → 2 patrimonios del importador.
func TestSpreadsheetUseCase_ImportSkipsBadRows(t *testing.T) {
	f := newFixture(t)
	body := workbook(t,
		[]any{10, "Mesa", "ADM", "Sala 1", "localizado"},
		[]any{"abc", "Cadeira", "ADM", "Sala 1", "localizado"},
		[]any{12, "Armário", "TI", "Sala 2", "Perda por Calamidade"},
	)

	res, err := f.import_.Import(f.ctx, f.admin, bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Skipped)

	list, err := f.assets.List(f.ctx, f.admin, "", "")
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, int64(10), list.Items[0].TagNumber)
	assert.Equal(t, "admin", list.Items[0].OwnerUsername)
	assert.Equal(t, "calamidade", list.Items[1].Status)

	expected := `
# HELP patrimonio_spreadsheet_import_rows_total Spreadsheet rows processed by import, by result.
# TYPE patrimonio_spreadsheet_import_rows_total counter
patrimonio_spreadsheet_import_rows_total{result="imported"} 2
patrimonio_spreadsheet_import_rows_total{result="skipped"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected),
		"patrimonio_spreadsheet_import_rows_total"))
}

func TestSpreadsheetUseCase_ImportDuplicateTagSkipped(t *testing.T) {
	f := newFixture(t)
	f.createAsset(t, f.admin, 10)

	res, err := f.import_.Import(f.ctx, f.admin, bytes.NewReader(workbook(t,
		[]any{10, "Repetido", "", "", ""},
		[]any{11, "Novo", "", "", ""},
	)))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)

	// la planilha subida queda como planilha del despliegue
	rc, name, err := f.import_.Download(f.ctx, f.admin)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "planilha.xlsx", name)
	saved, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.NotEmpty(t, saved)
}

func TestSpreadsheetUseCase_ImportRejectsNonWorkbook(t *testing.T) {
	f := newFixture(t)
	_, err := f.import_.Import(f.ctx, f.admin, strings.NewReader("não é xlsx"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = f.import_.Download(f.ctx, f.admin)
	assert.ErrorIs(t, err, domain.ErrNotFound, "un upload inválido no reemplaza la planilha")
}

func TestSpreadsheetUseCase_RegularIsForbidden(t *testing.T) {
	f := newFixture(t)
	a, _ := f.newStaff(t, "ana", "M1", false)

	_, err := f.import_.Import(f.ctx, a, bytes.NewReader(workbook(t)))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.import_.Purge(f.ctx, a)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, _, err = f.import_.Download(f.ctx, a)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSpreadsheetUseCase_Purge(t *testing.T) {
	f := newFixture(t)
	a, _ := f.newStaff(t, "ana", "M1", false)
	f.createAsset(t, a, 1)
	_, err := f.assets.QuickAdd(f.ctx, a)
	require.NoError(t, err)
	require.True(t, f.sheet.Exists())

	n, err := f.import_.Purge(f.ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.False(t, f.sheet.Exists())

	list, err := f.assets.List(f.ctx, f.admin, "", "")
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	// purgar sin planilha ni patrimonios no falla
	n, err = f.import_.Purge(f.ctx, f.admin)
	require.NoError(t, err)
	assert.Zero(t, n)
}
