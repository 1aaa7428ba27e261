// internal/invoice/dispatcher.go
package invoice

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"course-payments-bot/internal/pricing"
	"course-payments-bot/internal/product"
	"course-payments-bot/internal/utils"
	"course-payments-bot/pkg/logger"
)

// ParseRejectionSignature - известная подстрока в тексте ошибки Telegram,
// означающая отказ разбора массива цен. Сверка без учёта регистра.
// Формулировка платформы может измениться, поэтому сигнатура - эвристика,
// а raw-путь дополнительно доступен вручную через DispatchRaw.
const ParseRejectionSignature = "can't parse prices"

// WireAPI - библиотечный вызов Telegram API
type WireAPI interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// DispatchResult - единый результат одной отправки (primary + возможный
// fallback). Повторов сверх одного описанного обхода не бывает.
type DispatchResult struct {
	OK           bool            `json:"ok"`
	Path         string          `json:"path,omitempty"` // primary | fallback
	Data         json.RawMessage `json:"data,omitempty"`
	Error        string          `json:"error,omitempty"`
	ResponseBody string          `json:"responseBody,omitempty"`
	Err          error           `json:"-"`
}

// Dispatcher - двухуровневая отправка инвойса:
// BUILD -> VALIDATE -> PRIMARY_SEND -> {SUCCESS | FALLBACK_CHECK} ->
// [FALLBACK_SEND -> {SUCCESS | FAIL}] -> FAIL
type Dispatcher struct {
	api      WireAPI
	product  *product.Product
	fallback *FallbackClient
	audit    AuditSink // nil допустим
}

func NewDispatcher(api WireAPI, p *product.Product, fallback *FallbackClient, audit AuditSink) *Dispatcher {
	return &Dispatcher{
		api:      api,
		product:  p,
		fallback: fallback,
		audit:    audit,
	}
}

// Dispatch выполняет одну отправку инвойса в чат. Ошибки сборки и
// валидации терминальны и не доходят до сети; fallback открывается
// только сигнатурой parse-отказа, никогда - ошибкой валидации.
func (d *Dispatcher) Dispatch(ctx context.Context, chatID int64) DispatchResult {
	if chatID <= 0 {
		err := &InvalidChatIDError{ChatID: chatID}
		return DispatchResult{OK: false, Error: err.Error(), Err: err}
	}

	// BUILD: отказ здесь закрывает вызов без сетевого обращения
	prices, err := pricing.BuildPrices(d.product)
	if err != nil {
		return DispatchResult{OK: false, Error: err.Error(), Err: err}
	}

	// VALIDATE
	if err := pricing.ValidatePrices(prices); err != nil {
		return DispatchResult{OK: false, Error: err.Error(), Err: err}
	}

	// Round-trip: сериализуем и проверяем ещё раз - последний шанс
	// поймать порчу кодирования до пересечения сетевой границы
	raw, err := pricing.StringifyPrices(prices)
	if err != nil {
		return DispatchResult{OK: false, Error: err.Error(), Err: err}
	}
	if err := pricing.ValidateRawPrices(raw); err != nil {
		return DispatchResult{OK: false, Error: err.Error(), Err: err}
	}

	masked := utils.MaskToken(d.product.ProviderToken)
	payload := d.wirePayloadJSON(chatID, masked, raw)

	// PRIMARY_SEND: библиотеке передаётся типизированный массив
	// LabeledPrice - заранее сериализованная строка здесь
	// структурно невозможна
	logger.Attempt("primary", chatID, masked, payload)
	resp, sendErr := d.api.Request(d.invoiceConfig(chatID, prices))
	responseBody := responseBodyOf(resp)
	d.record(ctx, "primary", chatID, masked, payload, sendErr == nil, sendErr)

	if sendErr == nil {
		var data json.RawMessage
		if resp != nil {
			data = resp.Result
		}
		return DispatchResult{OK: true, Path: "primary", Data: data}
	}

	// FALLBACK_CHECK: обход открывает только сигнатура parse-отказа;
	// любая другая ошибка возвращается сразу, обогащённая телом ответа
	if !MatchesParseRejection(sendErr.Error()) && !MatchesParseRejection(responseBody) {
		terr := &TransportError{Path: "primary", ResponseBody: responseBody, Err: sendErr}
		return DispatchResult{OK: false, Path: "primary", Error: terr.Error(), ResponseBody: responseBody, Err: terr}
	}

	logger.Warn("⚠️ Telegram отверг payload цен (сигнатура parse-отказа), переключаемся на raw-отправку: %v", sendErr)

	return d.sendRaw(ctx, chatID, masked, payload, raw)
}

// DispatchRaw - ручной диагностический обход: тот же конвейер
// сборки и валидации, но сразу raw-отправка, без primary-попытки.
// Нужен на случай, если платформа переформулирует текст ошибки
// и сигнатура перестанет срабатывать.
func (d *Dispatcher) DispatchRaw(ctx context.Context, chatID int64) DispatchResult {
	if chatID <= 0 {
		err := &InvalidChatIDError{ChatID: chatID}
		return DispatchResult{OK: false, Error: err.Error(), Err: err}
	}

	prices, err := pricing.BuildPrices(d.product)
	if err != nil {
		return DispatchResult{OK: false, Error: err.Error(), Err: err}
	}
	if err := pricing.ValidatePrices(prices); err != nil {
		return DispatchResult{OK: false, Error: err.Error(), Err: err}
	}
	raw, err := pricing.StringifyPrices(prices)
	if err != nil {
		return DispatchResult{OK: false, Error: err.Error(), Err: err}
	}

	masked := utils.MaskToken(d.product.ProviderToken)
	payload := d.wirePayloadJSON(chatID, masked, raw)

	return d.sendRaw(ctx, chatID, masked, payload, raw)
}

// sendRaw - FALLBACK_SEND: защита в глубину (перепроверка того же
// payload) и raw-запрос с построчной стрингификацией полей
func (d *Dispatcher) sendRaw(ctx context.Context, chatID int64, masked, payload string, raw []byte) DispatchResult {
	if err := pricing.ValidateRawPrices(raw); err != nil {
		return DispatchResult{OK: false, Error: err.Error(), Err: err}
	}

	logger.Attempt("fallback", chatID, masked, payload)
	result, body, fbErr := d.fallback.SendInvoice(ctx, chatID, d.product, raw)
	d.record(ctx, "fallback", chatID, masked, payload, fbErr == nil, fbErr)

	if fbErr != nil {
		return DispatchResult{OK: false, Path: "fallback", Error: fbErr.Error(), ResponseBody: body, Err: fbErr}
	}

	return DispatchResult{OK: true, Path: "fallback", Data: result}
}

func (d *Dispatcher) invoiceConfig(chatID int64, prices []pricing.PriceLine) tgbotapi.InvoiceConfig {
	labeled := make([]tgbotapi.LabeledPrice, len(prices))
	for i, p := range prices {
		labeled[i] = tgbotapi.LabeledPrice{Label: p.Label, Amount: int(p.Amount)}
	}

	return tgbotapi.InvoiceConfig{
		BaseChat:       tgbotapi.BaseChat{ChatID: chatID},
		Title:          d.product.Title,
		Description:    d.product.Description,
		Payload:        d.product.Payload,
		ProviderToken:  d.product.ProviderToken,
		StartParameter: d.product.StartParameter,
		Currency:       d.product.Currency,
		Prices:         labeled,
	}
}

// wirePayload - то, что уходит на аудит: все поля инвойса с
// замаскированным токеном и точным JSON цен
type wirePayload struct {
	ChatID         int64           `json:"chat_id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Payload        string          `json:"payload"`
	ProviderToken  string          `json:"provider_token"`
	StartParameter string          `json:"start_parameter"`
	Currency       string          `json:"currency"`
	Prices         json.RawMessage `json:"prices"`
}

func (d *Dispatcher) wirePayloadJSON(chatID int64, masked string, raw []byte) string {
	data, err := json.Marshal(wirePayload{
		ChatID:         chatID,
		Title:          d.product.Title,
		Description:    d.product.Description,
		Payload:        d.product.Payload,
		ProviderToken:  masked,
		StartParameter: d.product.StartParameter,
		Currency:       d.product.Currency,
		Prices:         raw,
	})
	if err != nil {
		return string(raw)
	}
	return string(data)
}

func (d *Dispatcher) record(ctx context.Context, path string, chatID int64, masked, payload string, ok bool, err error) {
	if d.audit == nil {
		return
	}

	entry := AuditEntry{
		ID:          uuid.New().String(),
		Path:        path,
		ChatID:      chatID,
		MaskedToken: masked,
		Payload:     payload,
		OK:          ok,
		CreatedAt:   time.Now().UTC(),
	}
	if err != nil {
		entry.Error = err.Error()
	}

	d.audit.Record(ctx, entry)
}

// MatchesParseRejection проверяет наличие сигнатуры parse-отказа
// без учёта регистра
func MatchesParseRejection(s string) bool {
	return strings.Contains(strings.ToLower(s), ParseRejectionSignature)
}

func responseBodyOf(resp *tgbotapi.APIResponse) string {
	if resp == nil {
		return ""
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return ""
	}
	return string(data)
}
