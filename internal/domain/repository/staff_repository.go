package repository

import (
	"context"

	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
)

// StaffRepository define el puerto de persistencia para inventariantes.
// Las lecturas cargan también la identidad vinculada (StaffMember.User).
type StaffRepository interface {
	// Create persiste el inventariante y asigna staff.ID.
	// Matrícula repetida → domain.ErrDuplicateRegistrationCode (detectado por la constraint).
	Create(ctx context.Context, staff *entity.StaffMember) error
	GetByID(ctx context.Context, id int64) (*entity.StaffMember, error)
	GetByUserID(ctx context.Context, userID int64) (*entity.StaffMember, error)
	GetByRegistrationCode(ctx context.Context, code string) (*entity.StaffMember, error)
	Update(ctx context.Context, staff *entity.StaffMember) error
	// Delete elimina el inventariante junto con su identidad y, en cascada, sus patrimonios.
	// Devuelve domain.ErrNotFound si no existe.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter entity.StaffFilter, limit, offset int) ([]*entity.StaffMember, error)
	Count(ctx context.Context, filter entity.StaffFilter) (int, error)
}
