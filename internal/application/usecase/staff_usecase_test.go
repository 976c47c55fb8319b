package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-patrimonio/internal/application/auth"
	"github.com/jhoicas/inventario-patrimonio/internal/application/dto"
	"github.com/jhoicas/inventario-patrimonio/internal/domain"
)

func staffInput(username, code string) dto.StaffInput {
	return dto.StaffInput{
		Username:         username,
		FirstName:        "Nome",
		LastName:         "Sobrenome",
		Password1:        "secret-123",
		Password2:        "secret-123",
		IsActive:         true,
		RegistrationCode: code,
		RoleTitle:        "Técnico",
	}
}

func TestStaffUseCase_RegularIsForbidden(t *testing.T) {
	f := newFixture(t)
	a, aStaff := f.newStaff(t, "ana", "M1", false)

	_, err := f.staff.List(f.ctx, a, "", "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.staff.Create(f.ctx, a, staffInput("novo", "M9"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.staff.Update(f.ctx, a, aStaff.ID, staffInput("ana", "M1"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.staff.Delete(f.ctx, a, aStaff.ID), domain.ErrForbidden)
}

func TestStaffUseCase_PasswordRules(t *testing.T) {
	f := newFixture(t)

	// Caso 1: contraseñas distintas
	in := staffInput("carla", "C1")
	in.Password2 = "outra-senha"
	_, err := f.staff.Create(f.ctx, f.admin, in)
	assert.ErrorIs(t, err, domain.ErrPasswordMismatch)

	// Caso 2: contraseña vacía en alta
	in = staffInput("carla", "C1")
	in.Password1, in.Password2 = "", ""
	_, err = f.staff.Create(f.ctx, f.admin, in)
	assert.ErrorIs(t, err, domain.ErrPasswordRequired)

	// Caso 3: demasiado corta
	in = staffInput("carla", "C1")
	in.Password1, in.Password2 = "abc", "abc"
	_, err = f.staff.Create(f.ctx, f.admin, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, domain.FieldErrors(err), "password1")

	// nada se persistió
	list, err := f.staff.List(f.ctx, f.admin, "carla", "")
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestStaffUseCase_UpdateKeepsPasswordWhenEmpty(t *testing.T) {
	f := newFixture(t)
	_, created := f.newStaff(t, "ana", "M1", false)

	in := staffInput("ana", "M1-B")
	in.Password1, in.Password2 = "", ""
	in.IsPresident = true
	upd, err := f.staff.Update(f.ctx, f.admin, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "M1-B", upd.RegistrationCode)
	assert.True(t, upd.IsPresident)

	u, err := f.store.Users().GetByID(f.ctx, created.UserID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "secret-123"))

	in.Password1, in.Password2 = "nova-senha-1", "nova-senha-1"
	_, err = f.staff.Update(f.ctx, f.admin, created.ID, in)
	require.NoError(t, err)
	u, err = f.store.Users().GetByID(f.ctx, created.UserID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "nova-senha-1"))
}

func TestStaffUseCase_DuplicateRegistrationCode(t *testing.T) {
	f := newFixture(t)
	f.newStaff(t, "ana", "M1", false)
	_, bruno := f.newStaff(t, "bruno", "M2", false)

	_, err := f.staff.Create(f.ctx, f.admin, staffInput("carla", "M1"))
	assert.ErrorIs(t, err, domain.ErrDuplicateRegistrationCode)

	_, err = f.staff.Update(f.ctx, f.admin, bruno.ID, staffInput("bruno", "M1"))
	assert.ErrorIs(t, err, domain.ErrDuplicateRegistrationCode)

	_, err = f.staff.Create(f.ctx, f.admin, staffInput("ana", "M3"))
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	// la identidad no quedó huérfana
	u, err := f.store.Users().GetByUsername(f.ctx, "carla")
	require.NoError(t, err)
	assert.Nil(t, u)
}

// Escenario: borrar un inventariante elimina su identidad y sus patrimonios.
func TestStaffUseCase_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	a, aStaff := f.newStaff(t, "ana", "M1", false)
	f.createAsset(t, a, 1)
	f.createAsset(t, a, 2)
	f.createAsset(t, f.admin, 3)

	require.NoError(t, f.staff.Delete(f.ctx, f.admin, aStaff.ID))

	u, err := f.store.Users().GetByID(f.ctx, aStaff.UserID)
	require.NoError(t, err)
	assert.Nil(t, u)

	list, err := f.assets.List(f.ctx, f.admin, "", "")
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(3), list.Items[0].TagNumber)

	assert.ErrorIs(t, f.staff.Delete(f.ctx, f.admin, aStaff.ID), domain.ErrNotFound)
	_, err = f.staff.Get(f.ctx, f.admin, aStaff.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStaffUseCase_ListSearchAndPaging(t *testing.T) {
	f := newFixture(t)
	for _, u := range []string{"ana", "bruno", "carla", "daniel", "eva", "fabio"} {
		f.newStaff(t, u, "M-"+u, false)
	}

	page, err := f.staff.List(f.ctx, f.admin, "", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page.Number)
	assert.Equal(t, 7, page.Page.Total)
	assert.Len(t, page.Items, 2)

	found, err := f.staff.List(f.ctx, f.admin, "CARLA", "")
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "carla", found.Items[0].Username)
}

func TestStaffUseCase_ListSearchFoldsAccents(t *testing.T) {
	f := newFixture(t)
	in := staffInput("joao", "M-9")
	in.FirstName, in.LastName = "JOÃO", "CONCEIÇÃO"
	_, err := f.staff.Create(f.ctx, f.admin, in)
	require.NoError(t, err)
	f.newStaff(t, "bruno", "M-2", false)

	found, err := f.staff.List(f.ctx, f.admin, "conceição", "")
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "joao", found.Items[0].Username)
}
