package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
)

// InventoryHandler entregas y salidas de stock (protegido).
type InventoryHandler struct {
	deliveries *inventory.DeliveryUseCase
	issues     *inventory.IssueUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(deliveries *inventory.DeliveryUseCase, issues *inventory.IssueUseCase) *InventoryHandler {
	return &InventoryHandler{deliveries: deliveries, issues: issues}
}

// PostDelivery godoc
// @Summary      Registrar entrega de proveedor
// @Description  Recalcula el costo promedio ponderado por línea y genera NCR automáticas por variación de precio.
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PostDeliveryRequest  true  "ubicación, proveedor, periodo, factura y líneas"
// @Success      201   {object}  dto.DeliveryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/deliveries [post]
func (h *InventoryHandler) PostDelivery(c *fiber.Ctx) error {
	var in dto.PostDeliveryRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.deliveries.PostDelivery(c.Context(), GetIdentity(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PostDraftDelivery godoc
// @Summary      Contabilizar una entrega en borrador
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true   "ID de la entrega"
// @Param        body  body  dto.PostDraftDeliveryRequest  false  "ajustes opcionales"
// @Success      200   {object}  dto.DeliveryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id}/post [post]
func (h *InventoryHandler) PostDraftDelivery(c *fiber.Ctx) error {
	var in dto.PostDraftDeliveryRequest
	if err := bindOptionalJSON(c, &in); err != nil {
		return err
	}
	out, err := h.deliveries.PostDraftDelivery(c.Context(), GetIdentity(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetDelivery godoc
// @Summary      Obtener entrega
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la entrega"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id} [get]
func (h *InventoryHandler) GetDelivery(c *fiber.Ctx) error {
	out, err := h.deliveries.GetDelivery(c.Context(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// PostIssue godoc
// @Summary      Registrar salida de stock
// @Description  Todo o nada: si una línea no tiene stock suficiente no se aplica ninguna.
// @Tags         issues
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PostIssueRequest  true  "ubicación, periodo y líneas"
// @Success      201   {object}  dto.IssueResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/issues [post]
func (h *InventoryHandler) PostIssue(c *fiber.Ctx) error {
	var in dto.PostIssueRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.issues.PostIssue(c.Context(), GetIdentity(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetIssue godoc
// @Summary      Obtener salida
// @Tags         issues
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la salida"
// @Success      200  {object}  dto.IssueResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/issues/{id} [get]
func (h *InventoryHandler) GetIssue(c *fiber.Ctx) error {
	out, err := h.issues.GetIssue(c.Context(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
