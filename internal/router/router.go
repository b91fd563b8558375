package router

import (
	"time"

	"bazarpos/internal/codegen"
	"bazarpos/internal/config"
	"bazarpos/internal/handler"
	"bazarpos/internal/middleware"
	"bazarpos/internal/model"
	"bazarpos/internal/repository"
	"bazarpos/internal/service"
	"bazarpos/internal/session"
	"bazarpos/internal/terminal"
	"bazarpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const loginAttemptsPerMinute = 20

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Terminal ← Service ← Repository ← DB/Redis.
// rdb may be nil, which disables the receipt queue; clk may be nil for the
// wall clock.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, clk clock.Clock) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// A nil *worker.Dispatcher must not reach the service as a non-nil interface
	var dispatcher service.ComprobanteDispatcher
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
	}

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, codegen.New(codegen.WithMaxAttempts(cfg.CodeMaxAttempts)))
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, dispatcher)

	// ── Terminal ─────────────────────────────────────────────────────────────
	term := terminal.New(session.New(), terminal.Services{
		Auth:      authSvc,
		Productos: productoSvc,
		Ventas:    ventaSvc,
	}, terminal.Options{
		StoreName: cfg.StoreName,
		TaxRate:   cfg.Tax(),
		Timeout:   cfg.InactivityTimeout,
		Clock:     clk,
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(term, authSvc)
	terminalH := handler.NewTerminalHandler(term)
	boletasH := handler.NewBoletasHandler(ventaSvc, cfg.StoreName, cfg.PDFStoragePath)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Every protected request counts as input activity for the watchdog
	jwtMW := middleware.JWTAuth(cfg.JWTSecret, term)
	activityMW := middleware.Activity(term)
	admin := middleware.RequireRole(model.RolAdmin)

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(loginAttemptsPerMinute), authH.Login)
		auth.POST("/logout", jwtMW, activityMW, authH.Logout)
	}

	v1 := r.Group("/v1", jwtMW, activityMW)
	{
		t := v1.Group("/terminal")
		{
			t.POST("/actividad", terminalH.Actividad)
			t.GET("/vista", terminalH.Vista)
			t.POST("/navegar", terminalH.Navegar)

			t.POST("/venta/lineas", terminalH.AgregarLinea)
			t.POST("/venta/confirmar", terminalH.ConfirmarVenta)

			t.POST("/productos/:id/archivar", admin, terminalH.ArchivarProducto)
			t.POST("/formulario-producto/guardar", admin, terminalH.GuardarProducto)

			usuarios := t.Group("/usuarios", admin)
			{
				usuarios.POST("", terminalH.CrearUsuario)
				usuarios.PUT("/:id", terminalH.ActualizarUsuario)
				usuarios.DELETE("/:id", terminalH.EliminarUsuario)
			}

			t.POST("/historial/buscar", admin, terminalH.BuscarHistorial)
		}

		v1.GET("/boletas/:id/pdf", boletasH.DescargarPDF)
	}

	// Swagger UI: only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
