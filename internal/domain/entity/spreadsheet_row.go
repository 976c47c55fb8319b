package entity

// SpreadsheetRow una fila de la planilha de patrimonios, en el esquema único que
// comparten lectura (importación) y escritura (alta rápida):
// tombo, descricao, setor, dependencia, situacao.
type SpreadsheetRow struct {
	TagNumber   int64
	Description string
	Sector      string
	Dependency  string
	Status      AssetStatus
}

// SpreadsheetRowFromAsset fila que refleja un patrimonio recién creado.
func SpreadsheetRowFromAsset(a *Asset) SpreadsheetRow {
	return SpreadsheetRow{
		TagNumber:   a.TagNumber,
		Description: a.Description,
		Sector:      a.Sector,
		Dependency:  a.Dependency,
		Status:      a.Status,
	}
}

// ImportResult conteo interno de una importación (se registra en logs y métricas,
// no se devuelve al cliente).
type ImportResult struct {
	Imported int
	Skipped  int
}

// SpreadsheetLine fila leída de la planilha. Err != nil (envuelve domain.ErrImportRowSkipped)
// indica que la fila se descarta.
type SpreadsheetLine struct {
	Line int // número de fila en la hoja, desde 1
	Row  SpreadsheetRow
	Err  error
}
