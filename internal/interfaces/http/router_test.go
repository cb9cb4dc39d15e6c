package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/application/approval"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/application/ncr"
	"github.com/jhoicas/stockledger-api/internal/application/period"
	"github.com/jhoicas/stockledger-api/internal/application/ports"
	"github.com/jhoicas/stockledger-api/internal/application/reconciliation"
	"github.com/jhoicas/stockledger-api/internal/application/transfer"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/excel"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/lock"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stockledger-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stockledger-api/pkg/jwt"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

const (
	locKitchen = "loc-kitchen"
	itemFlour  = "item-flour"
	supplierA  = "sup-a"

	testJWTSecret = "clave-de-prueba-router"
)

func tokenFor(t *testing.T, role string, locations ...string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, "user-1", role, locations, "stockledger-test", 60)
	require.NoError(t, err)
	return "Bearer " + tok
}

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
	admin string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	log := logger.Nop()
	store := memory.NewStore()
	store.AddLocation(&entity.Location{ID: locKitchen, Code: "K1", Name: "Cocina 1", Type: entity.LocationKitchen, Active: true})
	store.AddItem(&entity.Item{ID: itemFlour, Code: "FLOUR", Name: "Harina", Unit: "kg"})
	store.AddSupplier(&entity.Supplier{ID: supplierA, Code: "SA", Name: "Molinos", Active: true})

	metrics := ports.NopMetrics{}
	approvals := approval.NewUseCase(store, store, lock.NewLocalLocker(), log)
	deps := apphttp.RouterDeps{
		Deliveries:      inventory.NewDeliveryUseCase(store, store, metrics, log),
		Issues:          inventory.NewIssueUseCase(store, store, metrics, log),
		Transfers:       transfer.NewUseCase(store, store, approvals, metrics, log),
		NCRs:            ncr.NewUseCase(store, store, metrics, log),
		Approvals:       approvals,
		Periods:         period.NewUseCase(store, store, approvals, excel.NewPriceSheetReader(), metrics, log),
		Reconciliations: reconciliation.NewUseCase(store, store, log),
		JWTSecret:       testJWTSecret,
	}
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	apphttp.Router(app, deps)
	return &apiFixture{app: app, store: store, admin: tokenFor(t, dto.RoleAdmin)}
}

func (f *apiFixture) call(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

// openPeriod crea y abre un periodo con precio 25 para la harina.
func (f *apiFixture) openPeriod(t *testing.T) string {
	t.Helper()
	status, body := f.call(t, http.MethodPost, "/api/periods", f.admin, fiber.Map{
		"name": "Octubre 2026", "start_date": "2026-10-01", "end_date": "2026-10-31",
	})
	require.Equal(t, http.StatusCreated, status, body)
	periodID := body["id"].(string)

	status, body = f.call(t, http.MethodPut, "/api/periods/"+periodID+"/prices", f.admin, fiber.Map{
		"prices": []fiber.Map{{"item_id": itemFlour, "price": "25"}},
	})
	require.Equal(t, http.StatusOK, status, body)

	status, body = f.call(t, http.MethodPost, "/api/periods/"+periodID+"/open", f.admin, nil)
	require.Equal(t, http.StatusOK, status, body)
	return periodID
}

func TestRouter_PreciosBloqueadosTrasAbrir(t *testing.T) {
	f := newAPI(t)
	periodID := f.openPeriod(t)

	status, body := f.call(t, http.MethodPut, "/api/periods/"+periodID+"/prices", f.admin, fiber.Map{
		"prices": []fiber.Map{{"item_id": itemFlour, "price": "30"}},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PRICES_LOCKED", body["code"])
}

func TestRouter_PreciosAbiertosATodosLosRolesEnBorrador(t *testing.T) {
	f := newAPI(t)
	keeper := tokenFor(t, dto.RoleStorekeeper, locKitchen)

	status, body := f.call(t, http.MethodPost, "/api/periods", f.admin, fiber.Map{
		"name": "Noviembre 2026", "start_date": "2026-11-01", "end_date": "2026-11-30",
	})
	require.Equal(t, http.StatusCreated, status, body)
	periodID := body["id"].(string)

	status, body = f.call(t, http.MethodPut, "/api/periods/"+periodID+"/prices", keeper, fiber.Map{
		"prices": []fiber.Map{{"item_id": itemFlour, "price": "25"}},
	})
	require.Equal(t, http.StatusOK, status, body)

	status, body = f.call(t, http.MethodPost, "/api/periods/"+periodID+"/open", f.admin, nil)
	require.Equal(t, http.StatusOK, status, body)

	status, body = f.call(t, http.MethodPut, "/api/periods/"+periodID+"/prices", keeper, fiber.Map{
		"prices": []fiber.Map{{"item_id": itemFlour, "price": "26"}},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PRICES_LOCKED", body["code"])
}

func TestRouter_SinToken_Retorna401(t *testing.T) {
	f := newAPI(t)
	status, body := f.call(t, http.MethodGet, "/api/periods/current", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestRouter_EntregaConVariacion_CreaNCR(t *testing.T) {
	f := newAPI(t)
	periodID := f.openPeriod(t)

	status, body := f.call(t, http.MethodPost, "/api/deliveries", f.admin, fiber.Map{
		"location_id":   locKitchen,
		"period_id":     periodID,
		"supplier_id":   supplierA,
		"invoice_no":    "F-001",
		"delivery_date": "2026-10-10",
		"lines":         []fiber.Map{{"item_id": itemFlour, "quantity": "10", "unit_price": "26"}},
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "POSTED", body["status"])
	ncrs, ok := body["ncrs_created"].([]any)
	require.True(t, ok)
	assert.Len(t, ncrs, 1)

	// Misma factura del mismo proveedor.
	status, body = f.call(t, http.MethodPost, "/api/deliveries", f.admin, fiber.Map{
		"location_id": locKitchen,
		"period_id":   periodID,
		"supplier_id": supplierA,
		"invoice_no":  "F-001",
		"lines":       []fiber.Map{{"item_id": itemFlour, "quantity": "1", "unit_price": "25"}},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_ENTRY", body["code"])
}

func TestRouter_SalidaSinStock_Retorna409ConDetalle(t *testing.T) {
	f := newAPI(t)
	f.openPeriod(t)
	f.store.SetStock(locKitchen, itemFlour, decimal.NewFromInt(5), decimal.NewFromInt(10))

	status, body := f.call(t, http.MethodPost, "/api/issues", f.admin, fiber.Map{
		"location_id": locKitchen,
		"cost_centre": "PRODUCCION",
		"lines":       []fiber.Map{{"item_id": itemFlour, "quantity": "8"}},
	})
	require.Equal(t, http.StatusConflict, status, body)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "5", details["available"])
	assert.Equal(t, "8", details["requested"])

	s, err := f.store.Stock().Get(t.Context(), locKitchen, itemFlour)
	require.NoError(t, err)
	assert.True(t, s.OnHand.Equal(decimal.NewFromInt(5)), "el stock no cambia")
}

func TestRouter_CuerpoInvalido_Retorna400ConCampos(t *testing.T) {
	f := newAPI(t)
	status, body := f.call(t, http.MethodPost, "/api/issues", f.admin, fiber.Map{"location_id": locKitchen})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	details := body["details"].(map[string]any)
	fields := details["fields"].(map[string]any)
	assert.Equal(t, "required", fields["cost_centre"])
	assert.Equal(t, "required", fields["lines"])
}

func TestRouter_StorekeeperSinAccesoAUbicacion_Retorna403(t *testing.T) {
	f := newAPI(t)
	f.openPeriod(t)
	status, body := f.call(t, http.MethodPost, "/api/issues", tokenFor(t, dto.RoleStorekeeper, "otra"), fiber.Map{
		"location_id": locKitchen,
		"cost_centre": "PRODUCCION",
		"lines":       []fiber.Map{{"item_id": itemFlour, "quantity": "1"}},
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestRouter_CierreSinUbicacionesListas_Retorna409(t *testing.T) {
	f := newAPI(t)
	periodID := f.openPeriod(t)

	status, body := f.call(t, http.MethodPost, "/api/periods/"+periodID+"/close", tokenFor(t, dto.RoleStorekeeper, locKitchen), nil)
	assert.Equal(t, http.StatusForbidden, status, body)

	status, body = f.call(t, http.MethodPost, "/api/periods/"+periodID+"/close", f.admin, nil)
	require.Equal(t, http.StatusConflict, status, body)
	assert.Equal(t, "LOCATIONS_NOT_READY", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, []any{locKitchen}, details["pending_locations"])
}

func TestRouter_RecursoInexistente_Retorna404(t *testing.T) {
	f := newAPI(t)
	status, body := f.call(t, http.MethodGet, "/api/transfers/no-existe", f.admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}
