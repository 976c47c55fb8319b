// Package storage elige el backend de persistencia (PostgreSQL o SQLite) según la
// configuración y expone los repositorios detrás de los puertos del dominio.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-patrimonio/internal/domain/repository"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/sqlite"
	"github.com/jhoicas/inventario-patrimonio/pkg/config"
	"github.com/jhoicas/inventario-patrimonio/pkg/logger"
)

// Drivers soportados.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Storage repositorios + runner de transacciones sobre el backend abierto.
type Storage struct {
	Driver string
	Users  repository.UserRepository
	Staff  repository.StaffRepository
	Assets repository.AssetRepository
	Tx     repository.TxRunner

	ping  func(ctx context.Context) error
	close func()
}

// Ping comprueba la conexión.
func (s *Storage) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close libera el pool o el archivo.
func (s *Storage) Close() { s.close() }

// Open abre el backend de cfg.Driver. Con PostgreSQL y AutoMigrate aplica las
// migraciones pendientes; SQLite crea su esquema al abrir.
func Open(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Storage, error) {
	if log == nil {
		log = logger.Nop()
	}
	switch strings.ToLower(cfg.Driver) {
	case "", DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			applied, err := postgres.NewMigrator(pool).Up(ctx)
			if err != nil {
				pool.Close()
				return nil, fmt.Errorf("aplicar migraciones: %w", err)
			}
			if len(applied) > 0 {
				log.Info().Strs("migraciones", applied).Msg("esquema actualizado")
			}
		}
		return &Storage{
			Driver: DriverPostgres,
			Users:  postgres.NewUserRepository(pool),
			Staff:  postgres.NewStaffRepository(pool),
			Assets: postgres.NewAssetRepository(pool),
			Tx:     postgres.NewTxRunner(pool),
			ping:   pool.Ping,
			close:  pool.Close,
		}, nil

	case DriverSQLite:
		st, err := sqlite.Open(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Driver: DriverSQLite,
			Users:  st.Users(),
			Staff:  st.Staff(),
			Assets: st.Assets(),
			Tx:     st.TxRunner(),
			ping:   st.Ping,
			close:  func() { _ = st.Close() },
		}, nil
	}
	return nil, fmt.Errorf("DB_DRIVER desconocido: %q", cfg.Driver)
}
