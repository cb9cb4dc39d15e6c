package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

var statusByCode = map[string]int{
	domain.CodeInsufficientStock:          fiber.StatusConflict,
	domain.CodePeriodClosed:               fiber.StatusConflict,
	domain.CodeLocationsNotReady:          fiber.StatusConflict,
	domain.CodeReconciliationNotCompleted: fiber.StatusConflict,
	domain.CodeDuplicateEntry:             fiber.StatusConflict,
	domain.CodeInvalidState:               fiber.StatusConflict,
	domain.CodePricesLocked:               fiber.StatusConflict,
	domain.CodeConcurrencyConflict:        fiber.StatusConflict,
	domain.CodeValidation:                 fiber.StatusBadRequest,
	domain.CodeNotFound:                   fiber.StatusNotFound,
	domain.CodeForbidden:                  fiber.StatusForbidden,
	domain.CodeUnauthorized:               fiber.StatusUnauthorized,
	domain.CodeInternal:                   fiber.StatusInternalServerError,
}

// ErrorResponseFor traduce un error a (status HTTP, cuerpo). Los errores internos no exponen el detalle.
func ErrorResponseFor(err error) (int, dto.ErrorResponse) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := domain.CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = domain.CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
			code = domain.CodeValidation
		case fiber.StatusMethodNotAllowed:
			code = domain.CodeNotFound
		}
		return fe.Code, dto.ErrorResponse{Code: code, Message: fe.Message}
	}

	code := domain.Code(err)
	resp := dto.ErrorResponse{Code: code, Message: err.Error(), Details: details(err)}
	if code == domain.CodeInternal {
		resp.Message = "error interno"
		resp.Details = nil
	}
	return statusByCode[code], resp
}

func details(err error) map[string]any {
	var (
		stock      *domain.InsufficientStockError
		notReady   *domain.LocationsNotReadyError
		invalid    *domain.ValidationError
		request    *RequestValidationError
		transition *domain.TransitionError
	)
	switch {
	case errors.As(err, &stock):
		return map[string]any{
			"item_id":     stock.ItemID,
			"location_id": stock.LocationID,
			"requested":   stock.Requested.String(),
			"available":   stock.Available.String(),
		}
	case errors.As(err, &notReady):
		return map[string]any{"period_id": notReady.PeriodID, "pending_locations": notReady.Pending}
	case errors.As(err, &request):
		return map[string]any{"fields": request.Fields}
	case errors.As(err, &invalid):
		return map[string]any{"field": invalid.Field, "reason": invalid.Reason}
	case errors.As(err, &transition):
		return map[string]any{"entity": transition.Entity, "from": transition.From, "to": transition.To}
	case domain.IsRetryable(err):
		return map[string]any{"retryable": true}
	}
	return nil
}

// ErrorHandler manejador de errores de Fiber: los handlers devuelven errores de dominio y aquí se mapean.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := ErrorResponseFor(err)
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("error no controlado")
		}
		return c.Status(status).JSON(body)
	}
}
