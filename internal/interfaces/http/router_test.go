package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/workflow"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	infraredis "github.com/jhoicas/inventario-ledger/internal/infrastructure/redis"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
)

type testServer struct {
	t   *testing.T
	app *fiber.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore(time.Second)
	runner := memory.NewTxRunner(store)
	reads := store.Repositories()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Engine:           workflow.NewEngine(runner, reads, nil),
		RegisterMovement: inventory.NewRegisterMovementUseCase(runner, nil),
		Queries:          inventory.NewQueryUseCase(reads.Movements, reads.Stock),
		Reconcile:        inventory.NewReconcileUseCase(reads.Movements, reads.Stock),
		Idempotency:      infraredis.NewIdempotencyStore(client, time.Hour),
		JWTSecret:        testJWTSecret,
		JWTIssuer:        testIssuer,
	})
	return &testServer{t: t, app: app}
}

// do envía body como JSON (nil = sin cuerpo) con el token del rol; headers en pares clave/valor.
func (s *testServer) do(method, path, role string, body any, headers ...string) (*http.Response, []byte) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	req.Header.Set(fiber.HeaderAuthorization, tokenForRole(s.t, role))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(s.t, err)
	return resp, buf.Bytes()
}

func (s *testServer) adjust(role, product, qty string) (*http.Response, []byte) {
	return s.do(http.MethodPost, "/api/inventory/adjustments", role, map[string]any{
		"warehouse_id": "w1", "product_id": product, "type": "adjustment_increase",
		"quantity": qty, "unit_cost": "2", "reason_code": "inicial",
	})
}

func decodeDocument(t *testing.T, raw []byte) dto.DocumentResponse {
	t.Helper()
	var doc dto.DocumentResponse
	require.NoError(t, json.Unmarshal(raw, &doc), string(raw))
	return doc
}

func TestRouter_FlujoDeDespachoCompleto(t *testing.T) {
	s := newTestServer(t)
	resp, raw := s.adjust("admin", "p1", "10")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = s.do(http.MethodPost, "/api/dispatches", "vendedor", map[string]any{
		"warehouse_id": "w1", "customer_id": "cli-1",
		"lines": []map[string]any{{"product_id": "p1", "quantity": "4", "unit_price": "15"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	doc := decodeDocument(t, raw)
	assert.Equal(t, "DESP-000001", doc.Number)
	assert.Equal(t, "borrador", doc.Status)
	assert.Equal(t, "Borrador", doc.StatusLabel)
	assert.True(t, doc.Editable)
	assert.Equal(t, []string{"cancel", "submit"}, doc.AllowedTransitions)
	assert.Equal(t, "60", doc.Totals.Total.String())

	base := "/api/dispatches/" + doc.ID + "/transitions/"
	resp, _ = s.do(http.MethodPost, base+"submit", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Vendedor no aprueba.
	resp, _ = s.do(http.MethodPost, base+"approve", "vendedor", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, base+"approve", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, raw = s.do(http.MethodPost, base+"dispatch", "bodeguero", nil, fiber.HeaderAcceptLanguage, "en")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	doc = decodeDocument(t, raw)
	assert.Equal(t, "Dispatched", doc.StatusLabel)
	assert.Contains(t, doc.Stamps, "dispatched")

	resp, raw = s.do(http.MethodGet, "/api/inventory/snapshot?warehouse_id=w1&product_id=p1", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap dto.SnapshotResponse
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, "6", snap.OnHand.String())

	resp, raw = s.do(http.MethodGet, "/api/inventory/kardex?warehouse_id=w1&product_id=p1&type=issue", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var kardex dto.KardexResponse
	require.NoError(t, json.Unmarshal(raw, &kardex))
	require.Len(t, kardex.Items, 1)
	assert.Equal(t, "issue", kardex.Items[0].Type)
	assert.Equal(t, "6", kardex.Balance.String())
	assert.Empty(t, kardex.NextCursor)

	resp, raw = s.do(http.MethodGet, "/api/inventory/reconcile?warehouse_id=w1&product_id=p1", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec dto.ReconcileResponse
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.True(t, rec.Consistent)
	assert.Equal(t, 2, rec.Records)
}

func TestRouter_StockInsuficienteDevuelveDetalle(t *testing.T) {
	s := newTestServer(t)
	resp, raw := s.do(http.MethodPost, "/api/dispatches/quick", "admin", map[string]any{
		"warehouse_id": "w1",
		"lines":        []map[string]any{{"product_id": "p1", "quantity": "1", "unit_price": "1"}},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body struct {
		Code    string                      `json:"code"`
		Details dto.InsufficientStockDetail `json:"details"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, "p1", body.Details.ProductID)
	assert.Equal(t, "0", body.Details.Available)
}

func TestRouter_DespachoRapidoRequierePermiso(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(http.MethodPost, "/api/dispatches/quick", "bodeguero", map[string]any{"warehouse_id": "w1"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_IdempotencyKeyRechazaDuplicado(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{"warehouse_id": "w1", "donor_id": "don-1"}

	resp, _ := s.do(http.MethodPost, "/api/donations", "admin", body, apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = s.do(http.MethodPost, "/api/donations", "admin", body, apphttp.HeaderIdempotencyKey, "k-1")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Una petición fallida libera la clave.
	bad := map[string]any{"donor_id": "don-1"}
	resp, _ = s.do(http.MethodPost, "/api/donations", "admin", bad, apphttp.HeaderIdempotencyKey, "k-2")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = s.do(http.MethodPost, "/api/donations", "admin", body, apphttp.HeaderIdempotencyKey, "k-2")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRouter_AjusteForzadoSoloConPermiso(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{
		"warehouse_id": "w1", "product_id": "p1", "type": "adjustment_decrease",
		"quantity": "2", "reason_code": "merma", "force": true,
	}
	resp, _ := s.do(http.MethodPost, "/api/inventory/adjustments", "bodeguero", body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := s.do(http.MethodPost, "/api/inventory/adjustments", "admin", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var mov dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &mov))
	assert.Equal(t, "-2", mov.Balance.String())

	body["force"] = false
	resp, _ = s.do(http.MethodPost, "/api/inventory/adjustments", "bodeguero", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRouter_KardexPaginaConCursor(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		resp, raw := s.adjust("admin", "p1", "1")
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	}
	base := "/api/inventory/kardex?warehouse_id=w1&product_id=p1"

	resp, raw := s.do(http.MethodGet, base+"&limit=2", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first dto.KardexResponse
	require.NoError(t, json.Unmarshal(raw, &first))
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	resp, raw = s.do(http.MethodGet, base+"&limit=2&after="+first.NextCursor, "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var second dto.KardexResponse
	require.NoError(t, json.Unmarshal(raw, &second))
	require.Len(t, second.Items, 1)
	assert.Empty(t, second.NextCursor)
	assert.Equal(t, "3", second.Items[0].Balance.String())

	// Un límite por encima del máximo se recorta, no se rechaza.
	resp, raw = s.do(http.MethodGet, base+"&limit=50000", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all dto.KardexResponse
	require.NoError(t, json.Unmarshal(raw, &all))
	assert.Len(t, all.Items, 3)
}

func TestRouter_ValidacionDeEntrada(t *testing.T) {
	s := newTestServer(t)

	resp, raw := s.do(http.MethodPost, "/api/inventory/adjustments", "admin", map[string]any{"warehouse_id": "w1", "type": "venta"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "VALIDATION")

	resp, _ = s.do(http.MethodPost, "/api/inventory/adjustments", "admin", map[string]any{
		"warehouse_id": "w1", "product_id": "p1", "type": "adjustment_increase",
		"quantity": "0.00001", "reason_code": "conteo",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/api/inventory/kardex?warehouse_id=w1", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = s.do(http.MethodGet, "/api/inventory/kardex?warehouse_id=w1&product_id=p1&after=xx", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = s.do(http.MethodGet, "/api/inventory/kardex?warehouse_id=w1&product_id=p1&date_from=ayer", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/api/transfers/no-existe", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = s.do(http.MethodPost, "/api/transfers", "admin", map[string]any{
		"from_warehouse_id": "w1", "to_warehouse_id": "w2",
		"lines": []map[string]any{{"product_id": "p1", "quantity": "1", "unit_price": "1"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	doc := decodeDocument(t, raw)
	resp, raw = s.do(http.MethodPost, "/api/transfers/"+doc.ID+"/transitions/dispatch", "admin", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(raw), "INVALID_TRANSITION")

	// Edición con versión desactualizada.
	update := map[string]any{"from_warehouse_id": "w1", "to_warehouse_id": "w2", "version": doc.Version}
	resp, _ = s.do(http.MethodPut, "/api/transfers/"+doc.ID, "admin", update)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, raw = s.do(http.MethodPut, "/api/transfers/"+doc.ID, "admin", update)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(raw), "CONCURRENT_MODIFICATION")
}

func TestRouter_OtraEmpresaNoVeDocumentos(t *testing.T) {
	s := newTestServer(t)
	resp, raw := s.do(http.MethodPost, "/api/donations", "admin", map[string]any{"warehouse_id": "w1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	doc := decodeDocument(t, raw)

	resp, _ = s.do(http.MethodGet, "/api/donations/"+doc.ID, "super_admin", nil, apphttp.HeaderCompanyID, "otra")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = s.do(http.MethodGet, "/api/donations/"+doc.ID, "admin", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
