package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
)

// AssetRepository define el puerto de persistencia para patrimonios.
// La unicidad del tombo la garantiza la constraint de la tabla: cualquier escritura que
// la viole devuelve domain.ErrDuplicateTag, aun con creaciones concurrentes.
type AssetRepository interface {
	Create(ctx context.Context, asset *entity.Asset) error
	GetByID(ctx context.Context, id int64) (*entity.Asset, error)
	GetByTag(ctx context.Context, tag int64) (*entity.Asset, error)
	// Update reemplaza todos los campos mutables (tombo y responsable incluidos).
	Update(ctx context.Context, asset *entity.Asset) error
	UpdateStatus(ctx context.Context, id int64, status entity.AssetStatus, at time.Time) error
	// Delete es idempotente: borrar un id inexistente no es error.
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
	// List ordena por id ascendente.
	List(ctx context.Context, filter entity.AssetFilter, limit, offset int) ([]*entity.Asset, error)
	Count(ctx context.Context, filter entity.AssetFilter) (int, error)
	// MaxTagNumber mayor tombo existente, 0 si no hay patrimonios.
	MaxTagNumber(ctx context.Context) (int64, error)
}

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
// Commit si fn devuelve nil, rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(users UserRepository, staff StaffRepository, assets AssetRepository) error) error
}
