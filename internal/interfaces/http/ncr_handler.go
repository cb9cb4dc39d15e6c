package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/ncr"
)

// NCRHandler reportes de no conformidad.
type NCRHandler struct {
	uc *ncr.UseCase
}

// NewNCRHandler construye el handler.
func NewNCRHandler(uc *ncr.UseCase) *NCRHandler {
	return &NCRHandler{uc: uc}
}

// Create godoc
// @Summary      Crear NCR manual
// @Tags         ncrs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateNCRRequest  true  "ubicación, periodo, motivo y valor o líneas"
// @Success      201   {object}  dto.NCRResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ncrs [post]
func (h *NCRHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateNCRRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.CreateManualNCR(c.Context(), GetIdentity(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado de una NCR
// @Description  RESOLVED exige impacto financiero.
// @Tags         ncrs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la NCR"
// @Param        body  body  dto.UpdateNCRStatusRequest  true  "estado destino"
// @Success      200   {object}  dto.NCRResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ncrs/{id}/status [patch]
func (h *NCRHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateNCRStatusRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.UpdateNCRStatus(c.Context(), GetIdentity(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener NCR
// @Tags         ncrs
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la NCR"
// @Success      200  {object}  dto.NCRResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ncrs/{id} [get]
func (h *NCRHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetNCR(c.Context(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
