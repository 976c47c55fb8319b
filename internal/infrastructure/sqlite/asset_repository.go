package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/repository"
)

var _ repository.AssetRepository = (*AssetRepo)(nil)

const assetSelect = `
	SELECT a.id, a.tag_number, a.description, a.value, a.accounting_account, a.sector, a.commitment_number,
		a.supplier, a.document_number, a.document_date, a.attestation_date, a.dependency, a.status, a.notes,
		a.inventory_date, a.staff_id, a.created_at, a.updated_at,
		u.username, u.first_name, u.last_name
	FROM assets a
	JOIN staff_members s ON s.id = a.staff_id
	JOIN users u ON u.id = s.user_id`

// AssetRepo implementación del puerto AssetRepository sobre SQLite.
type AssetRepo struct {
	q Querier
}

// NewAssetRepository construye el repositorio sobre db o tx.
func NewAssetRepository(q Querier) *AssetRepo {
	return &AssetRepo{q: q}
}

// Create persiste un patrimonio y asigna su ID.
func (r *AssetRepo) Create(ctx context.Context, a *entity.Asset) error {
	a.Normalize()
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO assets (tag_number, description, value, accounting_account, sector, commitment_number,
			supplier, document_number, document_date, attestation_date, dependency, status, notes,
			inventory_date, staff_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.TagNumber, a.Description, a.Value, a.AccountingAccount, a.Sector, a.CommitmentNumber,
		a.Supplier, a.DocumentNumber, nullDate(a.DocumentDate), nullDate(a.AttestationDate), a.Dependency,
		string(a.Status), a.Notes, nullDate(a.InventoryDate), a.StaffID, formatTime(now), formatTime(now),
	)
	if err != nil {
		return mapAssetWriteError("insert asset", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert asset id: %w", err)
	}
	a.ID, a.CreatedAt, a.UpdatedAt = id, now, now
	return nil
}

// GetByID obtiene un patrimonio por ID.
func (r *AssetRepo) GetByID(ctx context.Context, id int64) (*entity.Asset, error) {
	return r.getOne(ctx, assetSelect+` WHERE a.id = ?`, id)
}

// GetByTag obtiene un patrimonio por tombo.
func (r *AssetRepo) GetByTag(ctx context.Context, tag int64) (*entity.Asset, error) {
	return r.getOne(ctx, assetSelect+` WHERE a.tag_number = ?`, tag)
}

func (r *AssetRepo) getOne(ctx context.Context, query string, arg any) (*entity.Asset, error) {
	a, err := scanAsset(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

// Update reemplaza los campos mutables.
func (r *AssetRepo) Update(ctx context.Context, a *entity.Asset) error {
	a.Normalize()
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx, `
		UPDATE assets SET tag_number = ?, description = ?, value = ?, accounting_account = ?, sector = ?,
			commitment_number = ?, supplier = ?, document_number = ?, document_date = ?, attestation_date = ?,
			dependency = ?, status = ?, notes = ?, inventory_date = ?, staff_id = ?, updated_at = ?
		WHERE id = ?`,
		a.TagNumber, a.Description, a.Value, a.AccountingAccount, a.Sector,
		a.CommitmentNumber, a.Supplier, a.DocumentNumber, nullDate(a.DocumentDate), nullDate(a.AttestationDate),
		a.Dependency, string(a.Status), a.Notes, nullDate(a.InventoryDate), a.StaffID, formatTime(now),
		a.ID,
	)
	if err != nil {
		return mapAssetWriteError("update asset", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	a.UpdatedAt = now
	return nil
}

// UpdateStatus cambia sólo la situación.
func (r *AssetRepo) UpdateStatus(ctx context.Context, id int64, status entity.AssetStatus, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE assets SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(at), id)
	if err != nil {
		return fmt.Errorf("update asset status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra el patrimonio; un id inexistente no es error.
func (r *AssetRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

// DeleteAll borra todos los patrimonios.
func (r *AssetRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM assets`)
	if err != nil {
		return 0, fmt.Errorf("delete all assets: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// List patrimonios filtrados, ordenados por id.
func (r *AssetRepo) List(ctx context.Context, filter entity.AssetFilter, limit, offset int) ([]*entity.Asset, error) {
	where, args := assetWhere(filter)
	args = append(args, limit, offset)
	rows, err := r.q.QueryContext(ctx, assetSelect+" "+where+" ORDER BY a.id ASC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var list []*entity.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Count total de patrimonios que cumplen el filtro.
func (r *AssetRepo) Count(ctx context.Context, filter entity.AssetFilter) (int, error) {
	where, args := assetWhere(filter)
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets a `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return n, nil
}

// MaxTagNumber mayor tombo existente (0 si no hay).
func (r *AssetRepo) MaxTagNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(tag_number), 0) FROM assets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("max tag number: %w", err)
	}
	return n, nil
}

func assetWhere(filter entity.AssetFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.OwnerID != 0 {
		conds = append(conds, "a.staff_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Query != "" {
		p := containsPattern(filter.Query)
		conds = append(conds, `(CAST(a.tag_number AS TEXT) LIKE ? ESCAPE '\' OR fold(a.description) LIKE ? ESCAPE '\'
			OR fold(a.sector) LIKE ? ESCAPE '\' OR fold(a.dependency) LIKE ? ESCAPE '\')`)
		args = append(args, p, p, p, p)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func scanAsset(row rowScanner) (*entity.Asset, error) {
	var a entity.Asset
	var status, created, updated, firstName, lastName string
	var docDate, attDate, invDate sql.NullString
	if err := row.Scan(
		&a.ID, &a.TagNumber, &a.Description, &a.Value, &a.AccountingAccount, &a.Sector, &a.CommitmentNumber,
		&a.Supplier, &a.DocumentNumber, &docDate, &attDate, &a.Dependency, &status, &a.Notes,
		&invDate, &a.StaffID, &created, &updated,
		&a.OwnerUsername, &firstName, &lastName,
	); err != nil {
		return nil, err
	}
	a.Status = entity.AssetStatus(status)
	a.DocumentDate, a.AttestationDate, a.InventoryDate = parseNullDate(docDate), parseNullDate(attDate), parseNullDate(invDate)
	a.CreatedAt, a.UpdatedAt = parseTime(created), parseTime(updated)
	a.OwnerName = (&entity.User{Username: a.OwnerUsername, FirstName: firstName, LastName: lastName}).FullName()
	return &a, nil
}

func mapAssetWriteError(op string, err error) error {
	if col, ok := uniqueViolationOn(err); ok {
		if col == "assets.tag_number" {
			return domain.ErrDuplicateTag
		}
		return domain.ErrDuplicate
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: inventariante inexistente", domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
