// Package sqlite implementa los puertos de persistencia sobre SQLite (modernc.org/sqlite, sin cgo).
// Es el backend de instalaciones de un solo nodo y de las pruebas.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"


	"github.com/jhoicas/inventario-patrimonio/pkg/logger"
)

//go:embed schema.sql
var schema string

// Store conexión SQLite con el esquema aplicado.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// Open abre (o crea) la base en path y aplica el esquema. Crea los directorios padre.
func Open(ctx context.Context, path string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("crear directorio de la base: %w", err)
		}
	}

	// Los pragmas van en el DSN para que apliquen a cada conexión nueva.
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	// Un único escritor: las escrituras concurrentes se serializan y la constraint UNIQUE decide.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("aplicar esquema: %w", err)
	}

	log.Info().Str("path", path).Msg("SQLite inicializado")
	return &Store{db: db, log: log}, nil
}

// DB conexión subyacente.
func (s *Store) DB() *sql.DB { return s.db }

// Ping verifica la conexión (health check).
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close cierra la base.
func (s *Store) Close() error { return s.db.Close() }

// Users repositorio de identidades sobre la conexión principal.
func (s *Store) Users() *UserRepo { return NewUserRepository(s.db) }

// Staff repositorio de inventariantes sobre la conexión principal.
func (s *Store) Staff() *StaffRepo { return NewStaffRepository(s.db) }

// Assets repositorio de patrimonios sobre la conexión principal.
func (s *Store) Assets() *AssetRepo { return NewAssetRepository(s.db) }

// TxRunner runner transaccional sobre la conexión principal.
func (s *Store) TxRunner() *TxRunner { return NewTxRunner(s.db) }
