// createsuperuser crea un superusuario con su inventariante (función "Administrador").
//
// Uso: go run ./cmd/createsuperuser -username admin -password 's3cret!' [-email a@b.c] [-matricula 0000]
// La senha también puede venir de PATRIMONIO_SUPERUSER_PASSWORD.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/jhoicas/inventario-patrimonio/internal/application/auth"
	"github.com/jhoicas/inventario-patrimonio/internal/application/dto"
	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/storage"
	"github.com/jhoicas/inventario-patrimonio/pkg/config"
	"github.com/jhoicas/inventario-patrimonio/pkg/logger"
)

func main() {
	username := flag.String("username", "", "nome de usuário (obrigatório)")
	email := flag.String("email", "", "e-mail")
	password := flag.String("password", os.Getenv("PATRIMONIO_SUPERUSER_PASSWORD"), "senha")
	code := flag.String("matricula", entity.DefaultSuperuserCode, "matrícula do inventariante")
	flag.Parse()

	fail := color.New(color.FgRed, color.Bold)
	if *username == "" || *password == "" {
		fail.Fprintln(os.Stderr, "username e senha são obrigatórios")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fail.Fprintf(os.Stderr, "Configuração: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "warn"})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := storage.Open(ctx, cfg.DB, log)
	if err != nil {
		fail.Fprintf(os.Stderr, "Banco de dados: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	uc := auth.NewAuthUseCase(store.Users, store.Staff, store.Tx, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)

	out, err := uc.CreateSuperuser(ctx, dto.SuperuserRequest{
		Username:         *username,
		Email:            *email,
		Password:         *password,
		RegistrationCode: *code,
	})
	switch {
	case errors.Is(err, domain.ErrDuplicateRegistrationCode):
		fail.Fprintf(os.Stderr, "Já existe um inventariante com a matrícula %q\n", *code)
		os.Exit(1)
	case errors.Is(err, domain.ErrDuplicate):
		fail.Fprintf(os.Stderr, "Usuário %q já existe\n", *username)
		os.Exit(1)
	case err != nil:
		fail.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}

	color.Green("Superusuário criado: %s (matrícula %s, inventariante #%d)", *username, out.RegistrationCode, out.ID)
}
