package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createStaff(t *testing.T, s *Store, username, code string) *entity.StaffMember {
	t.Helper()
	ctx := context.Background()
	var staff *entity.StaffMember
	err := s.TxRunner().Run(ctx, func(users repository.UserRepository, sr repository.StaffRepository, _ repository.AssetRepository) error {
		u := &entity.User{Username: username, FirstName: "Nome", LastName: username, PasswordHash: "x", IsActive: true}
		if err := users.Create(ctx, u); err != nil {
			return err
		}
		staff = &entity.StaffMember{UserID: u.ID, RegistrationCode: code, RoleTitle: entity.DefaultRoleTitle}
		return sr.Create(ctx, staff)
	})
	require.NoError(t, err)
	return staff
}

func TestOpen_CreatesNestedDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "patrimonio.db")
	s, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestUserRepo_CreateGetAndDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	users := s.Users()

	u := &entity.User{Username: "ana", PasswordHash: "h", IsActive: true, IsSuperuser: true}
	require.NoError(t, users.Create(ctx, u))
	assert.NotZero(t, u.ID)

	got, err := users.GetByUsername(ctx, "ana")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsSuperuser)
	assert.Nil(t, got.LastLogin)

	now := time.Now()
	require.NoError(t, users.UpdateLastLogin(ctx, u.ID, now))
	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.WithinDuration(t, now, *got.LastLogin, time.Second)

	err = users.Create(ctx, &entity.User{Username: "ana", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	missing, err := users.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStaffRepo_DuplicateRegistrationCodeRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createStaff(t, s, "m1", "M1")

	err := s.TxRunner().Run(ctx, func(users repository.UserRepository, sr repository.StaffRepository, _ repository.AssetRepository) error {
		u := &entity.User{Username: "m2", PasswordHash: "x", IsActive: true}
		if err := users.Create(ctx, u); err != nil {
			return err
		}
		return sr.Create(ctx, &entity.StaffMember{UserID: u.ID, RegistrationCode: "M1"})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateRegistrationCode)

	u, err := s.Users().GetByUsername(ctx, "m2")
	require.NoError(t, err)
	assert.Nil(t, u, "la identidad no debe quedar sin inventariante")
}

func TestStaffRepo_ListFilterAndActiveYear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createStaff(t, s, "alice", "A-1")
	createStaff(t, s, "bob", "B-1")

	year := int64(2024)
	a.ActiveYear = &year
	a.IsPresident = true
	require.NoError(t, s.Staff().Update(ctx, a))

	got, err := s.Staff().GetByUserID(ctx, a.UserID)
	require.NoError(t, err)
	require.NotNil(t, got.ActiveYear)
	assert.Equal(t, int64(2024), *got.ActiveYear)
	assert.True(t, got.IsPresident)
	assert.Equal(t, "alice", got.User.Username)

	list, err := s.Staff().List(ctx, entity.StaffFilter{Query: "B-"}, 5, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].User.Username)

	n, err := s.Staff().Count(ctx, entity.StaffFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStaffRepo_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m1 := createStaff(t, s, "m1", "M1")
	m2 := createStaff(t, s, "m2", "M2")
	require.NoError(t, s.Assets().Create(ctx, &entity.Asset{TagNumber: 1, StaffID: m1.ID}))
	require.NoError(t, s.Assets().Create(ctx, &entity.Asset{TagNumber: 2, StaffID: m2.ID}))

	require.NoError(t, s.Staff().Delete(ctx, m1.ID))
	assert.ErrorIs(t, s.Staff().Delete(ctx, m1.ID), domain.ErrNotFound)

	u, err := s.Users().GetByUsername(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, u)

	left, err := s.Assets().List(ctx, entity.AssetFilter{}, 5, 0)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, int64(2), left[0].TagNumber)
}

func TestAssetRepo_ConcurrentDuplicateTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := createStaff(t, s, "m1", "M1")
	repo := s.Assets()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, &entity.Asset{TagNumber: 500, StaffID: owner.ID})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicateTag)
	}
	assert.Equal(t, 1, ok)

	n, err := repo.Count(ctx, entity.AssetFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAssetRepo_ScopeSearchAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m1 := createStaff(t, s, "m1", "M1")
	m2 := createStaff(t, s, "m2", "M2")
	repo := s.Assets()

	require.NoError(t, repo.Create(ctx, &entity.Asset{TagNumber: 101, Description: "Mesa", Sector: "TI", StaffID: m1.ID}))
	require.NoError(t, repo.Create(ctx, &entity.Asset{TagNumber: 102, Description: "Cadeira 50%", StaffID: m1.ID}))
	require.NoError(t, repo.Create(ctx, &entity.Asset{TagNumber: 200, Description: "Armário", Dependency: "Sala TI", StaffID: m2.ID}))

	mine, err := repo.List(ctx, entity.AssetFilter{OwnerID: m1.ID}, 5, 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Less(t, mine[0].ID, mine[1].ID)
	for _, a := range mine {
		assert.Equal(t, m1.ID, a.StaffID)
		assert.Equal(t, "m1", a.OwnerUsername)
	}

	ti, err := repo.Count(ctx, entity.AssetFilter{Query: "ti"})
	require.NoError(t, err)
	assert.Equal(t, 2, ti, "setor y dependência, sin distinguir mayúsculas")

	byTag, err := repo.Count(ctx, entity.AssetFilter{Query: "10"})
	require.NoError(t, err)
	assert.Equal(t, 2, byTag)

	pct, err := repo.Count(ctx, entity.AssetFilter{Query: "%"})
	require.NoError(t, err)
	assert.Equal(t, 1, pct, "el comodín se busca como literal")

	scoped, err := repo.Count(ctx, entity.AssetFilter{Query: "ti", OwnerID: m2.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, scoped)

	page2, err := repo.List(ctx, entity.AssetFilter{}, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, int64(200), page2[0].TagNumber)

	maxTag, err := repo.MaxTagNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(200), maxTag)
}

func TestAssetRepo_UpdateFieldsAndStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m1 := createStaff(t, s, "m1", "M1")
	repo := s.Assets()

	doc := time.Date(2023, 5, 17, 0, 0, 0, 0, time.UTC)
	a := &entity.Asset{
		TagNumber: 7, Description: "Notebook", StaffID: m1.ID,
		Value:        decimal.NewNullDecimal(decimal.RequireFromString("3499.999")),
		DocumentDate: &doc,
	}
	require.NoError(t, repo.Create(ctx, a))
	assert.Equal(t, entity.StatusLocated, a.Status)

	got, err := repo.GetByTag(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Value.Valid)
	assert.Equal(t, "3500.00", got.Value.Decimal.StringFixed(2))
	require.NotNil(t, got.DocumentDate)
	assert.True(t, doc.Equal(*got.DocumentDate))
	assert.Nil(t, got.InventoryDate)

	require.NoError(t, repo.UpdateStatus(ctx, a.ID, entity.StatusNotLocated, time.Now()))
	got, err = repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusNotLocated, got.Status)

	other := &entity.Asset{TagNumber: 8, StaffID: m1.ID}
	require.NoError(t, repo.Create(ctx, other))
	other.TagNumber = 7
	assert.ErrorIs(t, repo.Update(ctx, other), domain.ErrDuplicateTag)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, 9999, entity.StatusLocated, time.Now()), domain.ErrNotFound)
	assert.NoError(t, repo.Delete(ctx, 9999))

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestAssetRepo_UnknownOwner(t *testing.T) {
	s := newTestStore(t)
	err := s.Assets().Create(context.Background(), &entity.Asset{TagNumber: 1, StaffID: 42})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUniqueViolationOn(t *testing.T) {
	col, ok := uniqueViolationOn(assert.AnError)
	assert.False(t, ok)
	assert.Empty(t, col)

	col, ok = uniqueViolationOn(errString("constraint failed: UNIQUE constraint failed: assets.tag_number (2067)"))
	assert.True(t, ok)
	assert.Equal(t, "assets.tag_number", col)
}

type errString string

func (e errString) Error() string { return string(e) }
