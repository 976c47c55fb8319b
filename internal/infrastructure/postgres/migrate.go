package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	migrationsTable = "schema_migrations"
	// clave arbitraria para pg_advisory_lock: evita que dos instancias migren a la vez.
	migrationsLockKey = 7_338_201
)

type migration struct {
	Name string // 001_init
	Up   string
	Down string
}

// loadMigrations lee los pares NNN_nombre.{up,down}.sql embebidos, ordenados por nombre.
func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("leer migraciones: %w", err)
	}
	byName := make(map[string]*migration)
	for _, e := range entries {
		file := e.Name()
		var name, kind string
		switch {
		case strings.HasSuffix(file, ".up.sql"):
			name, kind = strings.TrimSuffix(file, ".up.sql"), "up"
		case strings.HasSuffix(file, ".down.sql"):
			name, kind = strings.TrimSuffix(file, ".down.sql"), "down"
		default:
			continue
		}
		body, err := migrationsFS.ReadFile("migrations/" + file)
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", file, err)
		}
		m, ok := byName[name]
		if !ok {
			m = &migration{Name: name}
			byName[name] = m
		}
		if kind == "up" {
			m.Up = string(body)
		} else {
			m.Down = string(body)
		}
	}
	out := make([]migration, 0, len(byName))
	for _, m := range byName {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Migrator aplica las migraciones embebidas sobre PostgreSQL.
type Migrator struct {
	pool *pgxpool.Pool
}

// NewMigrator construye el migrador.
func NewMigrator(pool *pgxpool.Pool) *Migrator {
	return &Migrator{pool: pool}
}

// Up aplica las migraciones pendientes, cada una en su propia transacción.
// Devuelve los nombres aplicados.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	var applied []string
	err := m.withLock(ctx, func(conn *pgxpool.Conn) error {
		done, err := executed(ctx, conn)
		if err != nil {
			return err
		}
		migs, err := loadMigrations()
		if err != nil {
			return err
		}
		for _, mig := range migs {
			if done[mig.Name] {
				continue
			}
			if err := pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
				if _, err := tx.Exec(ctx, mig.Up); err != nil {
					return err
				}
				_, err := tx.Exec(ctx, `INSERT INTO `+migrationsTable+` (name) VALUES ($1)`, mig.Name)
				return err
			}); err != nil {
				return fmt.Errorf("migración %s: %w", mig.Name, err)
			}
			applied = append(applied, mig.Name)
		}
		return nil
	})
	return applied, err
}

// Down revierte la última migración aplicada. Devuelve su nombre ("" si no había ninguna).
func (m *Migrator) Down(ctx context.Context) (string, error) {
	var reverted string
	err := m.withLock(ctx, func(conn *pgxpool.Conn) error {
		var last string
		err := conn.QueryRow(ctx, `SELECT name FROM `+migrationsTable+` ORDER BY name DESC LIMIT 1`).Scan(&last)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("última migración: %w", err)
		}
		migs, err := loadMigrations()
		if err != nil {
			return err
		}
		for _, mig := range migs {
			if mig.Name != last {
				continue
			}
			if mig.Down == "" {
				return fmt.Errorf("migración %s sin script down", mig.Name)
			}
			if err := pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
				if _, err := tx.Exec(ctx, mig.Down); err != nil {
					return err
				}
				_, err := tx.Exec(ctx, `DELETE FROM `+migrationsTable+` WHERE name = $1`, mig.Name)
				return err
			}); err != nil {
				return fmt.Errorf("revertir %s: %w", mig.Name, err)
			}
			reverted = mig.Name
			return nil
		}
		return fmt.Errorf("migración %s aplicada pero no embebida", last)
	})
	return reverted, err
}

// Status lista cada migración embebida con su estado.
func (m *Migrator) Status(ctx context.Context) ([]string, error) {
	var lines []string
	err := m.withLock(ctx, func(conn *pgxpool.Conn) error {
		done, err := executed(ctx, conn)
		if err != nil {
			return err
		}
		migs, err := loadMigrations()
		if err != nil {
			return err
		}
		for _, mig := range migs {
			state := "pendiente"
			if done[mig.Name] {
				state = "aplicada"
			}
			lines = append(lines, fmt.Sprintf("%s\t%s", mig.Name, state))
		}
		return nil
	})
	return lines, err
}

func (m *Migrator) withLock(ctx context.Context, fn func(conn *pgxpool.Conn) error) error {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("adquirir conexión: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, migrationsLockKey); err != nil {
		return fmt.Errorf("lock de migraciones: %w", err)
	}
	defer func() { _, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationsLockKey) }()

	if _, err := conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+migrationsTable+` (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("crear %s: %w", migrationsTable, err)
	}
	return fn(conn)
}

func executed(ctx context.Context, conn *pgxpool.Conn) (map[string]bool, error) {
	rows, err := conn.Query(ctx, `SELECT name FROM `+migrationsTable)
	if err != nil {
		return nil, fmt.Errorf("listar migraciones: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("listar migraciones: %w", err)
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out, nil
}
