package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pharmabill/pharmabill-api/internal/application/billing"
	"github.com/pharmabill/pharmabill-api/internal/application/inventory"
	"github.com/pharmabill/pharmabill-api/internal/application/ledger"
)

// RouterDeps holds everything the routes need.
type RouterDeps struct {
	Coordinator *billing.Coordinator
	InventoryUC *inventory.UseCase
	LedgerUC    *ledger.UseCase
	Validate    *validator.Validate
	JWTSecret   string
}

// Router registers the API routes. Everything is shop-scoped and requires a
// Bearer token; document deletion is restricted to owners.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Documents: invoices, purchases and their returns.
	documents := protected.Group("/documents")
	documentHandler := NewDocumentHandler(deps.Coordinator, deps.Validate)
	documents.Post("/:type", documentHandler.Create)
	documents.Get("/:type/:id", documentHandler.GetByID)
	documents.Put("/:type/:id", documentHandler.Edit)
	documents.Delete("/:type/:id", RequireRole("owner"), documentHandler.Delete)
	documents.Post("/:type/:id/returns", documentHandler.CreateReturn)

	// Batch stock read side.
	inventoryHandler := NewInventoryHandler(deps.InventoryUC, deps.Validate)
	products := protected.Group("/products")
	products.Get("/:id/batches", inventoryHandler.Batches)
	products.Post("/:id/allocation-preview", inventoryHandler.AllocationPreview)
	batches := protected.Group("/batches")
	batches.Delete("/:id", RequireRole("owner"), inventoryHandler.DeleteBatch)

	// Accounting read side.
	ledgerGroup := protected.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.LedgerUC)
	ledgerGroup.Get("/accounts/:account/balance", ledgerHandler.AccountBalance)
	ledgerGroup.Get("/party/:type/:id", ledgerHandler.PartyLedger)

	// Settlements and expenses.
	paymentHandler := NewPaymentHandler(deps.Coordinator, deps.Validate)
	protected.Post("/payments", paymentHandler.RecordPayment)
	protected.Post("/expenses", paymentHandler.RecordExpense)
}
