package usecase_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-patrimonio/internal/application/auth"
	"github.com/jhoicas/inventario-patrimonio/internal/application/dto"
	"github.com/jhoicas/inventario-patrimonio/internal/application/usecase"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/access"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/sqlite"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: SQLite real en un directorio temporal + casos de uso cableados
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	ctx     context.Context
	store   *sqlite.Store
	sheet   *spreadsheet.Store
	metrics *metrics.Metrics
	auth    *auth.AuthUseCase
	assets  *usecase.AssetUseCase
	staff   *usecase.StaffUseCase
	import_ *usecase.SpreadsheetUseCase
	admin   access.Subject
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	store, err := sqlite.Open(ctx, filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sheet := spreadsheet.NewStore(filepath.Join(dir, "media", "planilha.xlsx"), nil)
	m := metrics.New()

	f := &fixture{
		ctx:     ctx,
		store:   store,
		sheet:   sheet,
		metrics: m,
		auth: auth.NewAuthUseCase(store.Users(), store.Staff(), store.TxRunner(),
			auth.JWTConfig{Secret: "test-secret", ExpMinutes: 60, Issuer: "test"}, nil),
		assets:  usecase.NewAssetUseCase(store.Assets(), store.Staff(), sheet, pdf.NewMarotoReportGenerator(), m, nil),
		staff:   usecase.NewStaffUseCase(store.Users(), store.Staff(), store.TxRunner(), nil),
		import_: usecase.NewSpreadsheetUseCase(store.Assets(), sheet, m, nil),
	}

	su, err := f.auth.CreateSuperuser(ctx, dto.SuperuserRequest{Username: "admin", Password: "admin-pass-123"})
	require.NoError(t, err)
	f.admin = f.subject(t, su.UserID)
	return f
}

// subject resuelve el rol de una identidad como lo hace el middleware de sesión.
func (f *fixture) subject(t *testing.T, userID int64) access.Subject {
	t.Helper()
	s, err := f.auth.Resolve(f.ctx, userID)
	require.NoError(t, err)
	return s
}

// newStaff crea un inventariante (vía Admin) y devuelve su Subject.
func (f *fixture) newStaff(t *testing.T, username, code string, president bool) (access.Subject, *dto.StaffResponse) {
	t.Helper()
	resp, err := f.staff.Create(f.ctx, f.admin, dto.StaffInput{
		Username:         username,
		FirstName:        username,
		Password1:        "secret-123",
		Password2:        "secret-123",
		IsActive:         true,
		RegistrationCode: code,
		RoleTitle:        "Técnico",
		IsPresident:      president,
	})
	require.NoError(t, err)
	return f.subject(t, resp.UserID), resp
}

func (f *fixture) createAsset(t *testing.T, s access.Subject, tag int64) *dto.AssetResponse {
	t.Helper()
	a, err := f.assets.Create(f.ctx, s, dto.AssetInput{TagNumber: tag, Description: "Bem"})
	require.NoError(t, err)
	return a
}
