package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

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

// AssetRepo implementación del puerto AssetRepository sobre PostgreSQL (usable con pool o tx).
type AssetRepo struct {
	q Querier
}

// NewAssetRepository construye el adaptador de persistencia para patrimonios.
func NewAssetRepository(q Querier) *AssetRepo {
	return &AssetRepo{q: q}
}

// Create persiste un patrimonio. Un tombo repetido falla en la constraint, también con altas concurrentes.
func (r *AssetRepo) Create(ctx context.Context, a *entity.Asset) error {
	a.Normalize()
	query := `
		INSERT INTO assets (tag_number, description, value, accounting_account, sector, commitment_number,
			supplier, document_number, document_date, attestation_date, dependency, status, notes,
			inventory_date, staff_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		a.TagNumber, a.Description, a.Value, a.AccountingAccount, a.Sector, a.CommitmentNumber,
		a.Supplier, a.DocumentNumber, a.DocumentDate, a.AttestationDate, a.Dependency, string(a.Status), a.Notes,
		a.InventoryDate, a.StaffID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return mapAssetWriteError("insert asset", err)
	}
	return nil
}

// GetByID obtiene un patrimonio por ID.
func (r *AssetRepo) GetByID(ctx context.Context, id int64) (*entity.Asset, error) {
	return r.getOne(ctx, assetSelect+` WHERE a.id = $1`, id)
}

// GetByTag obtiene un patrimonio por tombo.
func (r *AssetRepo) GetByTag(ctx context.Context, tag int64) (*entity.Asset, error) {
	return r.getOne(ctx, assetSelect+` WHERE a.tag_number = $1`, tag)
}

func (r *AssetRepo) getOne(ctx context.Context, query string, arg any) (*entity.Asset, error) {
	a, err := scanAsset(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

// Update reemplaza los campos mutables del patrimonio.
func (r *AssetRepo) Update(ctx context.Context, a *entity.Asset) error {
	a.Normalize()
	query := `
		UPDATE assets SET tag_number = $2, description = $3, value = $4, accounting_account = $5, sector = $6,
			commitment_number = $7, supplier = $8, document_number = $9, document_date = $10,
			attestation_date = $11, dependency = $12, status = $13, notes = $14, inventory_date = $15,
			staff_id = $16, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		a.ID, a.TagNumber, a.Description, a.Value, a.AccountingAccount, a.Sector,
		a.CommitmentNumber, a.Supplier, a.DocumentNumber, a.DocumentDate,
		a.AttestationDate, a.Dependency, string(a.Status), a.Notes, a.InventoryDate,
		a.StaffID,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapAssetWriteError("update asset", err)
	}
	return nil
}

// UpdateStatus cambia sólo la situación.
func (r *AssetRepo) UpdateStatus(ctx context.Context, id int64, status entity.AssetStatus, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE assets SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), at)
	if err != nil {
		return fmt.Errorf("update asset status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra el patrimonio; un id inexistente no es error.
func (r *AssetRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

// DeleteAll borra todos los patrimonios y devuelve cuántos eran.
func (r *AssetRepo) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM assets`)
	if err != nil {
		return 0, fmt.Errorf("delete all assets: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// List patrimonios filtrados, ordenados por id.
func (r *AssetRepo) List(ctx context.Context, filter entity.AssetFilter, limit, offset int) ([]*entity.Asset, error) {
	where, args := assetWhere(filter)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`%s %s ORDER BY a.id ASC LIMIT $%d OFFSET $%d`, assetSelect, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
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
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM assets a `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return n, nil
}

// MaxTagNumber mayor tombo existente (0 si la tabla está vacía).
func (r *AssetRepo) MaxTagNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(MAX(tag_number), 0) FROM assets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("max tag number: %w", err)
	}
	return n, nil
}

func assetWhere(filter entity.AssetFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.OwnerID != 0 {
		args = append(args, filter.OwnerID)
		conds = append(conds, fmt.Sprintf("a.staff_id = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, containsPattern(filter.Query))
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(CAST(a.tag_number AS TEXT) ILIKE $%[1]d ESCAPE '\'
			OR a.description ILIKE $%[1]d ESCAPE '\' OR a.sector ILIKE $%[1]d ESCAPE '\'
			OR a.dependency ILIKE $%[1]d ESCAPE '\')`, n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func scanAsset(row pgx.Row) (*entity.Asset, error) {
	var a entity.Asset
	var status, firstName, lastName string
	err := row.Scan(
		&a.ID, &a.TagNumber, &a.Description, &a.Value, &a.AccountingAccount, &a.Sector, &a.CommitmentNumber,
		&a.Supplier, &a.DocumentNumber, &a.DocumentDate, &a.AttestationDate, &a.Dependency, &status, &a.Notes,
		&a.InventoryDate, &a.StaffID, &a.CreatedAt, &a.UpdatedAt,
		&a.OwnerUsername, &firstName, &lastName,
	)
	if err != nil {
		return nil, err
	}
	a.Status = entity.AssetStatus(status)
	a.OwnerName = (&entity.User{Username: a.OwnerUsername, FirstName: firstName, LastName: lastName}).FullName()
	return &a, nil
}

func mapAssetWriteError(op string, err error) error {
	if isUniqueViolation(err) && violatedConstraint(err) == constraintTagNumber {
		return domain.ErrDuplicateTag
	}
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: inventariante inexistente", domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
