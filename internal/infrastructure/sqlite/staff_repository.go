package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/repository"
)

var _ repository.StaffRepository = (*StaffRepo)(nil)

const staffSelect = `
	SELECT s.id, s.user_id, s.registration_code, s.role_title, s.phone, s.is_president, s.active_year,
		s.created_at, s.updated_at,
		u.id, u.username, u.first_name, u.last_name, u.email, u.password_hash, u.is_superuser, u.is_active,
		u.date_joined, u.last_login
	FROM staff_members s
	JOIN users u ON u.id = s.user_id`

// StaffRepo implementación del puerto StaffRepository sobre SQLite.
type StaffRepo struct {
	q Querier
}

// NewStaffRepository construye el repositorio sobre db o tx.
func NewStaffRepository(q Querier) *StaffRepo {
	return &StaffRepo{q: q}
}

// Create persiste el inventariante y asigna su ID.
func (r *StaffRepo) Create(ctx context.Context, staff *entity.StaffMember) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO staff_members (user_id, registration_code, role_title, phone, is_president, active_year, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		staff.UserID, staff.RegistrationCode, staff.RoleTitle, staff.Phone, staff.IsPresident,
		nullInt(staff.ActiveYear), formatTime(now), formatTime(now),
	)
	if err != nil {
		return mapStaffWriteError("insert staff", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert staff id: %w", err)
	}
	staff.ID, staff.CreatedAt, staff.UpdatedAt = id, now, now
	return nil
}

// GetByID obtiene un inventariante por ID.
func (r *StaffRepo) GetByID(ctx context.Context, id int64) (*entity.StaffMember, error) {
	return r.getOne(ctx, staffSelect+` WHERE s.id = ?`, id)
}

// GetByUserID obtiene el inventariante de una identidad.
func (r *StaffRepo) GetByUserID(ctx context.Context, userID int64) (*entity.StaffMember, error) {
	return r.getOne(ctx, staffSelect+` WHERE s.user_id = ?`, userID)
}

// GetByRegistrationCode obtiene un inventariante por matrícula.
func (r *StaffRepo) GetByRegistrationCode(ctx context.Context, code string) (*entity.StaffMember, error) {
	return r.getOne(ctx, staffSelect+` WHERE s.registration_code = ?`, code)
}

func (r *StaffRepo) getOne(ctx context.Context, query string, arg any) (*entity.StaffMember, error) {
	s, err := scanStaff(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get staff: %w", err)
	}
	return s, nil
}

// Update actualiza los datos propios del inventariante.
func (r *StaffRepo) Update(ctx context.Context, staff *entity.StaffMember) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx, `
		UPDATE staff_members SET registration_code = ?, role_title = ?, phone = ?, is_president = ?,
			active_year = ?, updated_at = ?
		WHERE id = ?`,
		staff.RegistrationCode, staff.RoleTitle, staff.Phone, staff.IsPresident,
		nullInt(staff.ActiveYear), formatTime(now), staff.ID,
	)
	if err != nil {
		return mapStaffWriteError("update staff", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	staff.UpdatedAt = now
	return nil
}

// Delete borra la identidad; la cascada elimina inventariante y patrimonios.
func (r *StaffRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM users WHERE id = (SELECT user_id FROM staff_members WHERE id = ?)`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List inventariantes filtrados, ordenados por id.
func (r *StaffRepo) List(ctx context.Context, filter entity.StaffFilter, limit, offset int) ([]*entity.StaffMember, error) {
	where, args := staffWhere(filter)
	args = append(args, limit, offset)
	rows, err := r.q.QueryContext(ctx, staffSelect+" "+where+" ORDER BY s.id ASC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var list []*entity.StaffMember
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Count total de inventariantes que cumplen el filtro.
func (r *StaffRepo) Count(ctx context.Context, filter entity.StaffFilter) (int, error) {
	where, args := staffWhere(filter)
	var n int
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM staff_members s JOIN users u ON u.id = s.user_id `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count staff: %w", err)
	}
	return n, nil
}

func staffWhere(filter entity.StaffFilter) (string, []any) {
	if filter.Query == "" {
		return "", nil
	}
	p := containsPattern(filter.Query)
	return `WHERE (fold(u.username) LIKE ? ESCAPE '\' OR fold(u.first_name) LIKE ? ESCAPE '\'
		OR fold(u.last_name) LIKE ? ESCAPE '\' OR fold(s.registration_code) LIKE ? ESCAPE '\')`,
		[]any{p, p, p, p}
}

func scanStaff(row rowScanner) (*entity.StaffMember, error) {
	var s entity.StaffMember
	var u entity.User
	var activeYear sql.NullInt64
	var created, updated, joined string
	var lastLogin sql.NullString
	if err := row.Scan(
		&s.ID, &s.UserID, &s.RegistrationCode, &s.RoleTitle, &s.Phone, &s.IsPresident, &activeYear,
		&created, &updated,
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.IsSuperuser, &u.IsActive,
		&joined, &lastLogin,
	); err != nil {
		return nil, err
	}
	if activeYear.Valid {
		y := activeYear.Int64
		s.ActiveYear = &y
	}
	s.CreatedAt, s.UpdatedAt = parseTime(created), parseTime(updated)
	u.DateJoined, u.LastLogin = parseTime(joined), parseNullTime(lastLogin)
	s.User = &u
	return &s, nil
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func mapStaffWriteError(op string, err error) error {
	if col, ok := uniqueViolationOn(err); ok {
		switch col {
		case "staff_members.registration_code":
			return domain.ErrDuplicateRegistrationCode
		case "staff_members.user_id":
			return fmt.Errorf("%w: usuário já possui inventariante", domain.ErrDuplicate)
		}
		return domain.ErrDuplicate
	}
	if isForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
