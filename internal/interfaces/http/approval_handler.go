package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockledger-api/internal/application/approval"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
)

// ApprovalHandler aprobaciones genéricas (traslados, cierres, PRF, PO).
type ApprovalHandler struct {
	uc *approval.UseCase
}

// NewApprovalHandler construye el handler.
func NewApprovalHandler(uc *approval.UseCase) *ApprovalHandler {
	return &ApprovalHandler{uc: uc}
}

// ListPending godoc
// @Summary      Aprobaciones pendientes
// @Tags         approvals
// @Security     Bearer
// @Produce      json
// @Param        entity_type  query  string  false  "TRANSFER, PRF, PO o PERIOD_CLOSE"
// @Success      200  {object}  dto.ApprovalListResponse
// @Router       /api/approvals/pending [get]
func (h *ApprovalHandler) ListPending(c *fiber.Ctx) error {
	out, err := h.uc.ListPending(c.Context(), c.Query("entity_type"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener aprobación
// @Tags         approvals
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la aprobación"
// @Success      200  {object}  dto.ApprovalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/approvals/{id} [get]
func (h *ApprovalHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar solicitud
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID de la aprobación"
// @Param        body  body  dto.ApprovalActionRequest  false  "comentario"
// @Success      200   {object}  dto.ApprovalResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/approvals/{id}/approve [post]
func (h *ApprovalHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApprovalActionRequest
	if err := bindOptionalJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Approve(c.Context(), GetIdentity(c), c.Params("id"), in.Comment)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar solicitud
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la aprobación"
// @Param        body  body  dto.ApprovalActionRequest  true  "comentario obligatorio"
// @Success      200   {object}  dto.ApprovalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/approvals/{id}/reject [post]
func (h *ApprovalHandler) Reject(c *fiber.Ctx) error {
	var in dto.ApprovalActionRequest
	if err := bindOptionalJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Reject(c.Context(), GetIdentity(c), c.Params("id"), in.Comment)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
