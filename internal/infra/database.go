package infra

import (
	"context"
	"fmt"
	"time"

	"bazarpos/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// NewDatabase opens a GORM connection for driver and tunes the pool. It does
// not touch the schema; call Migrate for that.
func NewDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("DB_DRIVER %q no soportado (postgres | sqlite)", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// A single writer avoids SQLITE_BUSY and keeps :memory: databases shared
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}
	return db, nil
}

// Migrate brings any existing schema up to date. Every step is idempotent so it
// runs on each startup:
//  1. additive columns on tables created by early installs
//  2. AutoMigrate of every table
//  3. one-time import of legacy single-line ventas into boletas
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := applyPreMigrationPatches(db); err != nil {
		return fmt.Errorf("pre-migration patches: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Producto{},
		&model.Boleta{},
		&model.DetalleVenta{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	n, err := importLegacyVentas(db)
	if err != nil {
		return fmt.Errorf("legacy ventas: %w", err)
	}
	if n > 0 {
		log.Info().Int("ventas", n).Msg("ventas antiguas importadas a boletas")
	}
	return nil
}

// applyPreMigrationPatches adds the columns that later revisions introduced on
// tables an early install already has. Guards make each patch a no-op once applied.
func applyPreMigrationPatches(db *gorm.DB) error {
	m := db.Migrator()
	patches := []struct {
		descr string
		apply func() error
	}{
		{"productos.estado", func() error {
			if m.HasTable(&model.Producto{}) && !m.HasColumn(&model.Producto{}, "Estado") {
				return m.AddColumn(&model.Producto{}, "Estado")
			}
			return nil
		}},
		{"productos.codigo", func() error {
			if m.HasTable(&model.Producto{}) && !m.HasColumn(&model.Producto{}, "Codigo") {
				return m.AddColumn(&model.Producto{}, "Codigo")
			}
			return nil
		}},
		{"ventas.boleta_id", func() error {
			if m.HasTable(&model.VentaLegacy{}) && !m.HasColumn(&model.VentaLegacy{}, "BoletaID") {
				return m.AddColumn(&model.VentaLegacy{}, "BoletaID")
			}
			return nil
		}},
	}
	for _, p := range patches {
		if err := p.apply(); err != nil {
			return fmt.Errorf("pre-patch %q: %w", p.descr, err)
		}
	}
	return nil
}

// importLegacyVentas turns every not-yet-imported row of the old ventas table
// into a tax-free boleta with one detalle. Stock is not touched again: those
// sales already decremented it when they were recorded.
func importLegacyVentas(db *gorm.DB) (int, error) {
	if !db.Migrator().HasTable(&model.VentaLegacy{}) {
		return 0, nil
	}

	var legacy []model.VentaLegacy
	if err := db.Where("boleta_id IS NULL").Order("id ASC").Find(&legacy).Error; err != nil {
		return 0, err
	}

	for _, v := range legacy {
		err := db.Transaction(func(tx *gorm.DB) error {
			b := boletaFromLegacy(v)
			if err := tx.Create(&b).Error; err != nil {
				return err
			}
			return tx.Model(&model.VentaLegacy{}).Where("id = ?", v.ID).Update("boleta_id", b.ID).Error
		})
		if err != nil {
			return 0, fmt.Errorf("venta %d: %w", v.ID, err)
		}
	}
	return len(legacy), nil
}

func boletaFromLegacy(v model.VentaLegacy) model.Boleta {
	fecha := time.Now()
	if v.Fecha != nil {
		fecha = *v.Fecha
	}
	vendedor := ""
	if v.VendedorUsuario != nil {
		vendedor = *v.VendedorUsuario
	}
	unit := v.Total
	if v.Cantidad > 0 {
		unit = v.Total.DivRound(decimal.NewFromInt(int64(v.Cantidad)), 2)
	}
	return model.Boleta{
		Neto:            v.Total,
		IVA:             decimal.Zero,
		Total:           v.Total,
		Fecha:           fecha,
		VendedorUsuario: vendedor,
		TipoDocumento:   model.DocumentoBoleta,
		Detalles: []model.DetalleVenta{{
			ProductoID:     v.ProductoID,
			Cantidad:       v.Cantidad,
			PrecioUnitario: unit,
			Subtotal:       v.Total,
		}},
	}
}
