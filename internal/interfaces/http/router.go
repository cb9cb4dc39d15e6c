package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockledger-api/internal/application/approval"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/application/ncr"
	"github.com/jhoicas/stockledger-api/internal/application/period"
	"github.com/jhoicas/stockledger-api/internal/application/reconciliation"
	"github.com/jhoicas/stockledger-api/internal/application/transfer"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Deliveries      *inventory.DeliveryUseCase
	Issues          *inventory.IssueUseCase
	Transfers       *transfer.UseCase
	NCRs            *ncr.UseCase
	Approvals       *approval.UseCase
	Periods         *period.UseCase
	Reconciliations *reconciliation.UseCase
	JWTSecret       string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	elevated := RequireElevated()

	// Entregas y salidas
	inventoryHandler := NewInventoryHandler(deps.Deliveries, deps.Issues)
	api.Post("/deliveries", inventoryHandler.PostDelivery)
	api.Post("/deliveries/:id/post", inventoryHandler.PostDraftDelivery)
	api.Get("/deliveries/:id", inventoryHandler.GetDelivery)
	api.Post("/issues", inventoryHandler.PostIssue)
	api.Get("/issues/:id", inventoryHandler.GetIssue)

	// Traslados
	transferHandler := NewTransferHandler(deps.Transfers)
	api.Post("/transfers", transferHandler.Create)
	api.Get("/transfers/:id", transferHandler.Get)
	api.Post("/transfers/:id/submit", transferHandler.Submit)
	api.Post("/transfers/:id/approve", elevated, transferHandler.Approve)
	api.Post("/transfers/:id/reject", elevated, transferHandler.Reject)

	// NCR
	ncrHandler := NewNCRHandler(deps.NCRs)
	api.Post("/ncrs", ncrHandler.Create)
	api.Get("/ncrs/:id", ncrHandler.Get)
	api.Patch("/ncrs/:id/status", ncrHandler.UpdateStatus)

	// Aprobaciones
	approvalHandler := NewApprovalHandler(deps.Approvals)
	api.Get("/approvals/pending", approvalHandler.ListPending)
	api.Get("/approvals/:id", approvalHandler.Get)
	api.Post("/approvals/:id/approve", elevated, approvalHandler.Approve)
	api.Post("/approvals/:id/reject", elevated, approvalHandler.Reject)

	// Periodos y reconciliación
	periodHandler := NewPeriodHandler(deps.Periods, deps.Reconciliations)
	periods := api.Group("/periods")
	periods.Post("/", elevated, periodHandler.Create)
	periods.Get("/current", periodHandler.Current)
	periods.Post("/close-approvals/:approvalId/approve", elevated, periodHandler.ApproveClose)
	periods.Get("/:id", periodHandler.Get)
	periods.Post("/:id/open", elevated, periodHandler.Open)
	periods.Put("/:id/prices", periodHandler.SetPrices)
	periods.Post("/:id/prices/import", periodHandler.ImportPrices)
	periods.Post("/:id/locations/:locationId/ready", periodHandler.MarkReady)
	periods.Put("/:id/locations/:locationId/reconciliation", periodHandler.SaveReconciliation)
	periods.Get("/:id/locations/:locationId/reconciliation", periodHandler.GetReconciliation)
	periods.Post("/:id/close", elevated, periodHandler.RequestClose)
	periods.Post("/:id/roll-forward", elevated, periodHandler.RollForward)
}
