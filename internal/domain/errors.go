package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound                   = errors.New("recurso no encontrado")
	ErrInvalidInput               = errors.New("entrada inválida")
	ErrDuplicate                  = errors.New("recurso duplicado")
	ErrUnauthorized               = errors.New("no autorizado")
	ErrForbidden                  = errors.New("acceso denegado")
	ErrInsufficientStock          = errors.New("stock insuficiente")
	ErrPeriodClosed               = errors.New("el periodo no admite movimientos")
	ErrPricesLocked               = errors.New("los precios del periodo están bloqueados")
	ErrLocationsNotReady          = errors.New("hay ubicaciones que no están listas para el cierre")
	ErrReconciliationNotCompleted = errors.New("la reconciliación de la ubicación no está registrada")
	ErrInvalidTransition          = errors.New("transición de estado no permitida")
	ErrConcurrencyConflict        = errors.New("conflicto de concurrencia, reintente")
)

// Códigos de error expuestos a los clientes.
const (
	CodeInsufficientStock          = "INSUFFICIENT_STOCK"
	CodePeriodClosed               = "PERIOD_CLOSED"
	CodeLocationsNotReady          = "LOCATIONS_NOT_READY"
	CodeReconciliationNotCompleted = "RECONCILIATION_NOT_COMPLETED"
	CodeDuplicateEntry             = "DUPLICATE_ENTRY"
	CodeValidation                 = "VALIDATION_ERROR"
	CodeNotFound                   = "NOT_FOUND"
	CodeInvalidState               = "INVALID_STATE"
	CodePricesLocked               = "PRICES_LOCKED"
	CodeConcurrencyConflict        = "CONCURRENCY_CONFLICT"
	CodeForbidden                  = "FORBIDDEN"
	CodeUnauthorized               = "UNAUTHORIZED"
	CodeInternal                   = "INTERNAL"
)

// InsufficientStockError detalla el faltante de un ítem en una ubicación.
type InsufficientStockError struct {
	ItemID     string
	LocationID string
	Requested  decimal.Decimal
	Available  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: ítem %s en ubicación %s, solicitado %s, disponible %s",
		e.ItemID, e.LocationID, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// LocationsNotReadyError lista las ubicaciones que bloquean la solicitud de cierre.
type LocationsNotReadyError struct {
	PeriodID string
	Pending  []string
}

func (e *LocationsNotReadyError) Error() string {
	return fmt.Sprintf("periodo %s: ubicaciones sin READY: %s", e.PeriodID, strings.Join(e.Pending, ", "))
}

func (e *LocationsNotReadyError) Unwrap() error { return ErrLocationsNotReady }

// ValidationError error de validación asociado a un campo de la entrada.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "entrada inválida: " + e.Reason
	}
	return fmt.Sprintf("entrada inválida: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// TransitionError transición de estado rechazada por la máquina de estados.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: transición %s -> %s no permitida", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// IsRetryable indica si la operación puede reintentarse sin cambios.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// Code traduce un error a su código público.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientStock):
		return CodeInsufficientStock
	case errors.Is(err, ErrPeriodClosed):
		return CodePeriodClosed
	case errors.Is(err, ErrPricesLocked):
		return CodePricesLocked
	case errors.Is(err, ErrLocationsNotReady):
		return CodeLocationsNotReady
	case errors.Is(err, ErrReconciliationNotCompleted):
		return CodeReconciliationNotCompleted
	case errors.Is(err, ErrDuplicate):
		return CodeDuplicateEntry
	case errors.Is(err, ErrInvalidInput):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidTransition):
		return CodeInvalidState
	case errors.Is(err, ErrConcurrencyConflict):
		return CodeConcurrencyConflict
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	default:
		return CodeInternal
	}
}
