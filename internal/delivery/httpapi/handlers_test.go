package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-payments-bot/internal/diagnostics"
	"course-payments-bot/internal/identity"
	"course-payments-bot/internal/invoice"
	"course-payments-bot/internal/product"
)

type fakeWire struct {
	calls int
	resp  *tgbotapi.APIResponse
	err   error
}

func (f *fakeWire) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.calls++
	return f.resp, f.err
}

type fakeSelf struct{ username string }

func (f *fakeSelf) GetMe() (tgbotapi.User, error) {
	return tgbotapi.User{UserName: f.username, IsBot: true}, nil
}

type fakeAudit struct {
	entries []invoice.AuditEntry
}

func (f *fakeAudit) ListRecent(_ context.Context, limit int) ([]invoice.AuditEntry, error) {
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func testProduct() *product.Product {
	return &product.Product{
		ID:             "arabic_course_001",
		Title:          "Арабский курс",
		Description:    "Интенсивный онлайн-курс арабского языка.",
		Currency:       "RUB",
		PriceMajor:     5500,
		Payload:        "arabic_course_001",
		StartParameter: "buy_arabic_course",
		ProviderToken:  "381764678:TEST:140649",
	}
}

type fixture struct {
	mux    *http.ServeMux
	wire   *fakeWire
	holder *identity.Holder
}

func newFixture(t *testing.T, wire *fakeWire, trail AuditReader) *fixture {
	t.Helper()

	p := testProduct()
	holder := identity.NewHolder()

	fb := invoice.NewFallbackClient("http://127.0.0.1:1", "bot-token", time.Second)
	dispatcher := invoice.NewDispatcher(wire, p, fb, nil)
	reporter := diagnostics.NewReporter(p, holder)

	h := NewHandlers(p, dispatcher, reporter, trail)
	return &fixture{mux: h.Mux(), wire: wire, holder: holder}
}

func (fx *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	fx.mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGetProduct(t *testing.T) {
	fx := newFixture(t, &fakeWire{}, nil)

	rec := fx.do(http.MethodGet, "/product", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	assert.Equal(t, true, out["ok"])

	data := out["data"].(map[string]interface{})
	assert.Equal(t, "Арабский курс", data["title"])
	assert.Equal(t, "RUB", data["currency"])
	assert.NotContains(t, rec.Body.String(), "381764678:TEST:140649")
	assert.NotContains(t, rec.Body.String(), "providerToken")
}

func TestPostInvoiceSuccess(t *testing.T) {
	wire := &fakeWire{resp: &tgbotapi.APIResponse{Ok: true, Result: json.RawMessage(`{"message_id":1}`)}}
	fx := newFixture(t, wire, nil)

	rec := fx.do(http.MethodPost, "/invoice", `{"chatId": 42}`)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "primary", out["path"])
	assert.Equal(t, 1, wire.calls)
}

func TestPostInvoiceAcceptsStringChatID(t *testing.T) {
	wire := &fakeWire{resp: &tgbotapi.APIResponse{Ok: true}}
	fx := newFixture(t, wire, nil)

	rec := fx.do(http.MethodPost, "/invoice", `{"chatId": "42"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, wire.calls)
}

func TestPostInvoiceRejectsBadChatID(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing", `{}`},
		{"zero", `{"chatId": 0}`},
		{"negative", `{"chatId": -5}`},
		{"float", `{"chatId": 42.5}`},
		{"text", `{"chatId": "abc"}`},
		{"not json", `chatId=42`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wire := &fakeWire{resp: &tgbotapi.APIResponse{Ok: true}}
			fx := newFixture(t, wire, nil)

			rec := fx.do(http.MethodPost, "/invoice", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 0, wire.calls, "invalid chatId must not reach the network")

			out := decode(t, rec)
			assert.Equal(t, false, out["ok"])
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestPostInvoiceMethodNotAllowed(t *testing.T) {
	fx := newFixture(t, &fakeWire{}, nil)
	rec := fx.do(http.MethodGet, "/invoice", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGetPricesPreview(t *testing.T) {
	fx := newFixture(t, &fakeWire{}, nil)

	rec := fx.do(http.MethodGet, "/prices-preview", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, "RUB", data["currency"])
	assert.JSONEq(t, `[{"label":"Арабский курс","amount":550000}]`, data["pricesJson"].(string))
}

func TestGetTelegramHealth(t *testing.T) {
	fx := newFixture(t, &fakeWire{}, nil)

	rec := fx.do(http.MethodGet, "/telegram/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "RUB", data["currency"])
	assert.Equal(t, float64(550000), data["amountMinor"])
	assert.Equal(t, "381764***********0649", data["providerToken"])
	assert.NotContains(t, rec.Body.String(), "381764678:TEST:140649")
}

func TestGetTelegramMetaUnresolved(t *testing.T) {
	fx := newFixture(t, &fakeWire{}, nil)

	rec := fx.do(http.MethodGet, "/telegram/meta", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	out := decode(t, rec)
	assert.Equal(t, false, out["ok"])
}

func TestGetTelegramMetaResolved(t *testing.T) {
	fx := newFixture(t, &fakeWire{}, nil)
	identity.NewResolver(&fakeSelf{username: "arabic_course_bot"}, fx.holder).Start()

	rec := fx.do(http.MethodGet, "/telegram/meta", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	data := out["data"].(map[string]interface{})
	links := data["links"].(map[string]interface{})
	assert.Equal(t, "https://t.me/arabic_course_bot?start=buy_arabic_course", links["web"])
}

func TestGetStatus(t *testing.T) {
	fx := newFixture(t, &fakeWire{}, nil)

	rec := fx.do(http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "running", out["status"])
}

func TestGetDispatchAudit(t *testing.T) {
	trail := &fakeAudit{entries: []invoice.AuditEntry{
		{ID: "a1", Path: "primary", ChatID: 42, OK: false},
		{ID: "a2", Path: "fallback", ChatID: 42, OK: true},
	}}
	fx := newFixture(t, &fakeWire{}, trail)

	rec := fx.do(http.MethodGet, "/dispatch/audit", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	data := out["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "a1", data[0].(map[string]interface{})["id"])
}

func TestGetDispatchAuditDisabled(t *testing.T) {
	fx := newFixture(t, &fakeWire{}, nil)

	rec := fx.do(http.MethodGet, "/dispatch/audit", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	assert.Equal(t, []interface{}{}, out["data"])
}
