package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/period"
	"github.com/jhoicas/stockledger-api/internal/application/reconciliation"
	"github.com/jhoicas/stockledger-api/internal/domain"
)

// PeriodHandler ciclo de vida del periodo y reconciliación por ubicación.
type PeriodHandler struct {
	periods         *period.UseCase
	reconciliations *reconciliation.UseCase
}

// NewPeriodHandler construye el handler.
func NewPeriodHandler(periods *period.UseCase, reconciliations *reconciliation.UseCase) *PeriodHandler {
	return &PeriodHandler{periods: periods, reconciliations: reconciliations}
}

// Create godoc
// @Summary      Crear periodo (DRAFT)
// @Tags         periods
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePeriodRequest  true  "nombre y rango de fechas"
// @Success      201   {object}  dto.PeriodResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/periods [post]
func (h *PeriodHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePeriodRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.periods.CreatePeriod(c.Context(), GetIdentity(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Current godoc
// @Summary      Periodo vigente
// @Tags         periods
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PeriodResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/periods/current [get]
func (h *PeriodHandler) Current(c *fiber.Ctx) error {
	out, err := h.periods.CurrentPeriod(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener periodo con sus ubicaciones
// @Tags         periods
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del periodo"
// @Success      200  {object}  dto.PeriodResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/periods/{id} [get]
func (h *PeriodHandler) Get(c *fiber.Ctx) error {
	out, err := h.periods.GetPeriod(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Open godoc
// @Summary      Abrir periodo
// @Description  Crea las ubicaciones del periodo en OPEN con el valor de apertura.
// @Tags         periods
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del periodo"
// @Success      200  {object}  dto.PeriodResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/periods/{id}/open [post]
func (h *PeriodHandler) Open(c *fiber.Ctx) error {
	out, err := h.periods.OpenPeriod(c.Context(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// SetPrices godoc
// @Summary      Fijar precios del periodo
// @Tags         periods
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del periodo"
// @Param        body  body  dto.SetPricesRequest  true  "precios por ítem"
// @Success      200   {object}  dto.SetPricesResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/periods/{id}/prices [put]
func (h *PeriodHandler) SetPrices(c *fiber.Ctx) error {
	var in dto.SetPricesRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.periods.SetPeriodPrices(c.Context(), GetIdentity(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ImportPrices godoc
// @Summary      Importar precios desde xlsx
// @Tags         periods
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "ID del periodo"
// @Param        file  formData  file    true  "hoja con columnas código y precio"
// @Success      200   {object}  dto.SetPricesResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/periods/{id}/prices/import [post]
func (h *PeriodHandler) ImportPrices(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.Invalid("file", "archivo requerido")
	}
	f, err := fh.Open()
	if err != nil {
		return domain.Invalid("file", "no se pudo leer el archivo")
	}
	defer f.Close()
	out, err := h.periods.ImportPeriodPrices(c.Context(), GetIdentity(c), c.Params("id"), f)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// MarkReady godoc
// @Summary      Marcar ubicación lista para cierre
// @Tags         periods
// @Security     Bearer
// @Produce      json
// @Param        id          path  string  true  "ID del periodo"
// @Param        locationId  path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.PeriodResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/periods/{id}/locations/{locationId}/ready [post]
func (h *PeriodHandler) MarkReady(c *fiber.Ctx) error {
	out, err := h.periods.MarkLocationReady(c.Context(), GetIdentity(c), c.Params("id"), c.Params("locationId"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// RequestClose godoc
// @Summary      Solicitar cierre del periodo
// @Description  Exige todas las ubicaciones READY; devuelve la aprobación creada y las NCR abiertas como advertencia.
// @Tags         periods
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del periodo"
// @Success      202  {object}  dto.CloseRequestResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/periods/{id}/close [post]
func (h *PeriodHandler) RequestClose(c *fiber.Ctx) error {
	out, err := h.periods.RequestPeriodClose(c.Context(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}

// ApproveClose godoc
// @Summary      Aprobar cierre del periodo
// @Tags         periods
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        approvalId  path  string                     true   "ID de la aprobación de cierre"
// @Param        body        body  dto.ApprovalActionRequest  false  "comentario"
// @Success      200  {object}  dto.PeriodResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/periods/close-approvals/{approvalId}/approve [post]
func (h *PeriodHandler) ApproveClose(c *fiber.Ctx) error {
	var in dto.ApprovalActionRequest
	if err := bindOptionalJSON(c, &in); err != nil {
		return err
	}
	out, err := h.periods.ApprovePeriodClose(c.Context(), GetIdentity(c), c.Params("approvalId"), in.Comment)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// RollForward godoc
// @Summary      Crear el periodo siguiente
// @Tags         periods
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del periodo cerrado"
// @Param        body  body  dto.RollForwardRequest  true  "nombre, fechas y copia de precios"
// @Success      201   {object}  dto.PeriodResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/periods/{id}/roll-forward [post]
func (h *PeriodHandler) RollForward(c *fiber.Ctx) error {
	var in dto.RollForwardRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.periods.RollForwardPeriod(c.Context(), GetIdentity(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// SaveReconciliation godoc
// @Summary      Registrar ajustes de reconciliación
// @Tags         reconciliation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id          path  string                                true  "ID del periodo"
// @Param        locationId  path  string                                true  "ID de la ubicación"
// @Param        body        body  dto.ReconciliationAdjustmentsRequest  true  "ajustes"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/periods/{id}/locations/{locationId}/reconciliation [put]
func (h *PeriodHandler) SaveReconciliation(c *fiber.Ctx) error {
	var in dto.ReconciliationAdjustmentsRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.reconciliations.SaveAdjustments(c.Context(), GetIdentity(c), c.Params("id"), c.Params("locationId"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetReconciliation godoc
// @Summary      Obtener reconciliación
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        id          path  string  true  "ID del periodo"
// @Param        locationId  path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/periods/{id}/locations/{locationId}/reconciliation [get]
func (h *PeriodHandler) GetReconciliation(c *fiber.Ctx) error {
	out, err := h.reconciliations.Get(c.Context(), GetIdentity(c), c.Params("id"), c.Params("locationId"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
