package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName    string
	Movements  movementService
	Reconciler reconcileService
	Sweeper    sweepService
	Report     reportEncoder // opcional
	Serials    serialService
	Purchases  purchaseService
	Sales      saleService
	JWTSecret  string
	// Gatherer expone /metrics; nil usa el registro por defecto de Prometheus.
	Gatherer prometheus.Gatherer
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	warehouseStaff := RequireRole(RoleAdmin, RoleBodeguero)
	salesStaff := RequireRole(RoleAdmin, RoleVendedor)

	// Inventario
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Movements, deps.Reconciler, deps.Sweeper, deps.Report)
	inv.Post("/entradas", warehouseStaff, inventoryHandler.Entrada)
	inv.Post("/salidas", warehouseStaff, inventoryHandler.Salida)
	inv.Get("/products/:id/movements", inventoryHandler.ListMovements)
	inv.Post("/products/:id/reconcile", warehouseStaff, inventoryHandler.Reconcile)
	inv.Post("/reconcile", RequireRole(RoleAdmin), inventoryHandler.Sweep)

	// Series
	serials := protected.Group("/serials", warehouseStaff)
	serialHandler := NewSerialHandler(deps.Serials)
	serials.Post("/", serialHandler.Register)
	serials.Patch("/:id/state", serialHandler.ChangeState)
	serials.Post("/:id/transfer", serialHandler.Transfer)
	serials.Delete("/:id", serialHandler.Delete)
	serials.Post("/:id/restore", serialHandler.Restore)

	// Compras
	purchases := protected.Group("/purchases", warehouseStaff)
	purchaseHandler := NewPurchaseHandler(deps.Purchases, deps.Serials)
	purchases.Post("/:id/receipts", purchaseHandler.ReceiveLine)
	purchases.Patch("/:id/lines", purchaseHandler.EditLine)
	purchases.Put("/:id/serials", purchaseHandler.ReplaceSerials)
	purchases.Post("/:id/cancel", purchaseHandler.Cancel)

	// Ventas
	sales := protected.Group("/sales", salesStaff)
	saleHandler := NewSaleHandler(deps.Sales)
	sales.Post("/:id/serials", saleHandler.SellSerial)
	sales.Post("/:id/lines", saleHandler.SellQuantity)
	sales.Post("/:id/cancel", saleHandler.Cancel)
}
