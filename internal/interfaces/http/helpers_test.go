package http_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-patrimonio/internal/application/auth"
	"github.com/jhoicas/inventario-patrimonio/internal/application/dto"
	"github.com/jhoicas/inventario-patrimonio/internal/application/usecase"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/access"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/sqlite"
	apphttp "github.com/jhoicas/inventario-patrimonio/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-patrimonio/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "patrimonio-test"
	testExpMin    = 60
	testPassword  = "secret-123"
)

type testServer struct {
	app    *fiber.App
	store  *sqlite.Store
	sheet  *spreadsheet.Store
	auth   *auth.AuthUseCase
	assets *usecase.AssetUseCase
	staff  *usecase.StaffUseCase
	admin  access.Subject
}

type serverOption func(*apphttp.RouterDeps)

func withSignup() serverOption { return func(d *apphttp.RouterDeps) { d.AllowSignup = true } }

func withLoginRate(n int) serverOption {
	return func(d *apphttp.RouterDeps) { d.LoginRatePerMinute = n }
}

// newTestServer arma la app completa sobre SQLite en un directorio temporal, con un
// superusuario "admin" ya creado.
func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	store, err := sqlite.Open(ctx, filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sheet := spreadsheet.NewStore(filepath.Join(dir, "media", "planilha.xlsx"), nil)
	m := metrics.New()
	authUC := auth.NewAuthUseCase(store.Users(), store.Staff(), store.TxRunner(),
		auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, nil)
	assetUC := usecase.NewAssetUseCase(store.Assets(), store.Staff(), sheet, pdf.NewMarotoReportGenerator(), m, nil)
	staffUC := usecase.NewStaffUseCase(store.Users(), store.Staff(), store.TxRunner(), nil)
	sheetUC := usecase.NewSpreadsheetUseCase(store.Assets(), sheet, m, nil)

	deps := apphttp.RouterDeps{
		AuthUC:             authUC,
		AssetUC:            assetUC,
		StaffUC:            staffUC,
		SpreadsheetUC:      sheetUC,
		DB:                 store,
		Observer:           m,
		MetricsHandler:     m.Handler(),
		SessionMinutes:     testExpMin,
		LoginRatePerMinute: 100,
	}
	for _, o := range opts {
		o(&deps)
	}
	app := apphttp.NewApp(apphttp.AppConfig{Name: "patrimonio-test", UploadMaxMB: 5}, nil)
	apphttp.Router(app, deps)

	su, err := authUC.CreateSuperuser(ctx, dto.SuperuserRequest{Username: "admin", Password: "admin-pass-1"})
	require.NoError(t, err)
	admin, err := authUC.Resolve(ctx, su.UserID)
	require.NoError(t, err)

	return &testServer{app: app, store: store, sheet: sheet, auth: authUC, assets: assetUC, staff: staffUC, admin: admin}
}

// newStaff crea un inventariante regular y devuelve su Subject.
func (s *testServer) newStaff(t *testing.T, username, code string) access.Subject {
	t.Helper()
	resp, err := s.staff.Create(context.Background(), s.admin, dto.StaffInput{
		Username: username, FirstName: username, Password1: testPassword, Password2: testPassword,
		IsActive: true, RegistrationCode: code,
	})
	require.NoError(t, err)
	subj, err := s.auth.Resolve(context.Background(), resp.UserID)
	require.NoError(t, err)
	return subj
}

func (s *testServer) createAsset(t *testing.T, owner access.Subject, tag int64) *dto.AssetResponse {
	t.Helper()
	a, err := s.assets.Create(context.Background(), owner, dto.AssetInput{TagNumber: tag, Description: "Bem"})
	require.NoError(t, err)
	return a
}

// sessionFor cookie de sesión firmada para el Subject.
func sessionFor(t *testing.T, s access.Subject) *http.Cookie {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, s.User.ID, s.User.Username, s.User.IsSuperuser, testIssuer, testExpMin)
	require.NoError(t, err)
	return &http.Cookie{Name: apphttp.SessionCookie, Value: tok}
}

type reqOpt func(*http.Request)

func asHX(r *http.Request) { r.Header.Set("HX-Request", "true") }

func withSession(t *testing.T, s access.Subject) reqOpt {
	c := sessionFor(t, s)
	return func(r *http.Request) { r.AddCookie(c) }
}

func (s *testServer) do(t *testing.T, req *http.Request, opts ...reqOpt) (*http.Response, string) {
	t.Helper()
	for _, o := range opts {
		o(req)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, string(body)
}

func (s *testServer) get(t *testing.T, path string, opts ...reqOpt) (*http.Response, string) {
	t.Helper()
	return s.do(t, httptest.NewRequest(http.MethodGet, path, nil), opts...)
}

func (s *testServer) postForm(t *testing.T, path string, form url.Values, opts ...reqOpt) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(t, req, opts...)
}

func (s *testServer) postFile(t *testing.T, path, field, name string, content []byte, opts ...reqOpt) (*http.Response, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.do(t, req, opts...)
}
