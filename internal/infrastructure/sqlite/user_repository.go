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

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, username, first_name, last_name, email, password_hash, is_superuser, is_active, date_joined, last_login`

// UserRepo implementación del puerto UserRepository sobre SQLite.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el repositorio sobre db o tx.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste una identidad y asigna su ID.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	if user.DateJoined.IsZero() {
		user.DateJoined = time.Now()
	}
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO users (username, first_name, last_name, email, password_hash, is_superuser, is_active, date_joined)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.FirstName, user.LastName, user.Email, user.PasswordHash,
		user.IsSuperuser, user.IsActive, formatTime(user.DateJoined),
	)
	if err != nil {
		if _, ok := uniqueViolationOn(err); ok {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert user id: %w", err)
	}
	user.ID = id
	return nil
}

// GetByID obtiene una identidad por ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByUsername obtiene una identidad por username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Update reemplaza los campos de la identidad.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET username = ?, first_name = ?, last_name = ?, email = ?,
			password_hash = ?, is_superuser = ?, is_active = ?
		WHERE id = ?`,
		user.Username, user.FirstName, user.LastName, user.Email,
		user.PasswordHash, user.IsSuperuser, user.IsActive, user.ID,
	)
	if err != nil {
		if _, ok := uniqueViolationOn(err); ok {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateLastLogin registra el último acceso.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.q.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, formatTime(at), id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	var joined string
	var lastLogin sql.NullString
	if err := row.Scan(
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.IsSuperuser, &u.IsActive, &joined, &lastLogin,
	); err != nil {
		return nil, err
	}
	u.DateJoined = parseTime(joined)
	u.LastLogin = parseNullTime(lastLogin)
	return &u, nil
}
