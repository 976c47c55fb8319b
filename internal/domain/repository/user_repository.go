package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para las identidades de acceso (DIP).
// Las lecturas devuelven (nil, nil) cuando el registro no existe.
type UserRepository interface {
	// Create persiste la identidad y asigna user.ID. Username repetido → domain.ErrUsernameTaken.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// Update reemplaza todos los campos, incluido el hash de password.
	Update(ctx context.Context, user *entity.User) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}
