package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

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

// StaffRepo implementación del puerto StaffRepository sobre PostgreSQL (usable con pool o tx).
type StaffRepo struct {
	q Querier
}

// NewStaffRepository construye el adaptador de persistencia para inventariantes.
func NewStaffRepository(q Querier) *StaffRepo {
	return &StaffRepo{q: q}
}

// Create persiste el inventariante. La identidad debe existir.
func (r *StaffRepo) Create(ctx context.Context, staff *entity.StaffMember) error {
	query := `
		INSERT INTO staff_members (user_id, registration_code, role_title, phone, is_president, active_year)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		staff.UserID, staff.RegistrationCode, staff.RoleTitle, staff.Phone, staff.IsPresident, staff.ActiveYear,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
	if err != nil {
		return mapStaffWriteError("insert staff", err)
	}
	return nil
}

// GetByID obtiene un inventariante por ID.
func (r *StaffRepo) GetByID(ctx context.Context, id int64) (*entity.StaffMember, error) {
	return r.getOne(ctx, staffSelect+` WHERE s.id = $1`, id)
}

// GetByUserID obtiene el inventariante vinculado a una identidad.
func (r *StaffRepo) GetByUserID(ctx context.Context, userID int64) (*entity.StaffMember, error) {
	return r.getOne(ctx, staffSelect+` WHERE s.user_id = $1`, userID)
}

// GetByRegistrationCode obtiene un inventariante por matrícula.
func (r *StaffRepo) GetByRegistrationCode(ctx context.Context, code string) (*entity.StaffMember, error) {
	return r.getOne(ctx, staffSelect+` WHERE s.registration_code = $1`, code)
}

func (r *StaffRepo) getOne(ctx context.Context, query string, arg any) (*entity.StaffMember, error) {
	s, err := scanStaff(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get staff: %w", err)
	}
	return s, nil
}

// Update actualiza los datos propios del inventariante (la identidad se actualiza aparte).
func (r *StaffRepo) Update(ctx context.Context, staff *entity.StaffMember) error {
	query := `
		UPDATE staff_members SET registration_code = $2, role_title = $3, phone = $4,
			is_president = $5, active_year = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		staff.ID, staff.RegistrationCode, staff.RoleTitle, staff.Phone, staff.IsPresident, staff.ActiveYear,
	).Scan(&staff.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapStaffWriteError("update staff", err)
	}
	return nil
}

// Delete borra la identidad vinculada; las FK en cascada eliminan el inventariante y sus patrimonios.
func (r *StaffRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx,
		`DELETE FROM users WHERE id = (SELECT user_id FROM staff_members WHERE id = $1)`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List inventariantes filtrados, ordenados por id.
func (r *StaffRepo) List(ctx context.Context, filter entity.StaffFilter, limit, offset int) ([]*entity.StaffMember, error) {
	where, args := staffWhere(filter)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`%s %s ORDER BY s.id ASC LIMIT $%d OFFSET $%d`, staffSelect, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
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
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM staff_members s JOIN users u ON u.id = s.user_id `+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count staff: %w", err)
	}
	return n, nil
}

func staffWhere(filter entity.StaffFilter) (string, []any) {
	if filter.Query == "" {
		return "", nil
	}
	return `WHERE (u.username ILIKE $1 ESCAPE '\' OR u.first_name ILIKE $1 ESCAPE '\'
		OR u.last_name ILIKE $1 ESCAPE '\' OR s.registration_code ILIKE $1 ESCAPE '\')`,
		[]any{containsPattern(filter.Query)}
}

func scanStaff(row pgx.Row) (*entity.StaffMember, error) {
	var s entity.StaffMember
	var u entity.User
	err := row.Scan(
		&s.ID, &s.UserID, &s.RegistrationCode, &s.RoleTitle, &s.Phone, &s.IsPresident, &s.ActiveYear,
		&s.CreatedAt, &s.UpdatedAt,
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.IsSuperuser, &u.IsActive,
		&u.DateJoined, &u.LastLogin,
	)
	if err != nil {
		return nil, err
	}
	s.User = &u
	return &s, nil
}

func mapStaffWriteError(op string, err error) error {
	if isUniqueViolation(err) {
		switch violatedConstraint(err) {
		case constraintRegistrationCode:
			return domain.ErrDuplicateRegistrationCode
		case constraintStaffUser:
			return fmt.Errorf("%w: usuário já possui inventariante", domain.ErrDuplicate)
		}
		return domain.ErrDuplicate
	}
	if isForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
