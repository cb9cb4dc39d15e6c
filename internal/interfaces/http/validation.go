package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockledger-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Reportar los nombres JSON en lugar de los del struct.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RequestValidationError errores por campo del cuerpo de la petición.
type RequestValidationError struct {
	Fields map[string]string
}

func (e *RequestValidationError) Error() string {
	return "entrada inválida"
}

func (e *RequestValidationError) Unwrap() error { return domain.ErrInvalidInput }

// ProcessValidationErrors traduce los errores del validador a campo -> regla incumplida.
// El campo incluye la ruta para listas (ej. lines[1].quantity).
func ProcessValidationErrors(err error) map[string]string {
	out := make(map[string]string)
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return out
	}
	for _, ve := range validationErrors {
		field := ve.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		out[field] = ve.Tag()
	}
	return out
}

// bindJSON parsea y valida el cuerpo.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.Invalid("body", "JSON inválido")
	}
	if err := validate.Struct(out); err != nil {
		return &RequestValidationError{Fields: ProcessValidationErrors(err)}
	}
	return nil
}

// bindOptionalJSON como bindJSON pero admite cuerpo vacío.
func bindOptionalJSON(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return bindJSON(c, out)
}
