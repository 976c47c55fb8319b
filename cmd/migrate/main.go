// migrate aplica o revierte las migraciones embebidas en PostgreSQL.
//
// Uso: go run ./cmd/migrate [up|down|status]
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-patrimonio/pkg/config"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		color.Red("Configuración: %v", err)
		os.Exit(1)
	}
	if cfg.DB.Driver != config.DriverPostgres {
		color.Yellow("DB_DRIVER=%s: el esquema SQLite se crea al abrir la base", cfg.DB.Driver)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		color.Red("Conexión: %v", err)
		os.Exit(1)
	}
	defer pool.Close()

	m := postgres.NewMigrator(pool)
	switch cmd {
	case "up":
		applied, err := m.Up(ctx)
		if err != nil {
			color.Red("up: %v", err)
			os.Exit(1)
		}
		if len(applied) == 0 {
			fmt.Println("Sin migraciones pendientes")
			return
		}
		for _, name := range applied {
			color.Green("aplicada  %s", name)
		}
	case "down":
		name, err := m.Down(ctx)
		if err != nil {
			color.Red("down: %v", err)
			os.Exit(1)
		}
		if name == "" {
			fmt.Println("No hay migraciones aplicadas")
			return
		}
		color.Yellow("revertida %s", name)
	case "status":
		lines, err := m.Status(ctx)
		if err != nil {
			color.Red("status: %v", err)
			os.Exit(1)
		}
		for _, l := range lines {
			if strings.HasSuffix(l, "pendiente") {
				color.Yellow("%s", l)
				continue
			}
			fmt.Println(l)
		}
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido %q (up|down|status)\n", cmd)
		os.Exit(2)
	}
}
