// cmd/seeduser/main.go: Crea o actualiza un usuario del terminal.
// Uso: go run ./cmd/seeduser -usuario ana -clave secreta -rol vendedor
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"bazarpos/internal/config"
	"bazarpos/internal/dto"
	"bazarpos/internal/infra"
	"bazarpos/internal/model"
	"bazarpos/internal/repository"
	"bazarpos/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	usuario := flag.String("usuario", "", "nombre de usuario")
	clave := flag.String("clave", "", "clave en texto plano")
	rol := flag.String("rol", model.RolVendedor, "vendedor | admin")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *usuario == "" || *clave == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	ctx := context.Background()

	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	if err := infra.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	repo := repository.NewUsuarioRepository(db)
	auth := service.NewAuthService(repo, cfg)
	req := dto.GuardarUsuarioRequest{Usuario: *usuario, Clave: *clave, Rol: *rol}

	existing, err := repo.FindByUsuario(ctx, *usuario)
	switch {
	case err == nil:
		_, err = auth.ActualizarUsuario(ctx, existing.ID, req)
	case errors.Is(err, gorm.ErrRecordNotFound):
		_, err = auth.CrearUsuario(ctx, req)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo guardar el usuario")
	}
	fmt.Printf("Usuario '%s' (%s) creado/actualizado\n", *usuario, *rol)
}
