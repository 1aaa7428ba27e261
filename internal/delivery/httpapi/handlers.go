// internal/delivery/httpapi/handlers.go
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"course-payments-bot/internal/diagnostics"
	"course-payments-bot/internal/identity"
	"course-payments-bot/internal/invoice"
	"course-payments-bot/internal/product"
	"course-payments-bot/pkg/logger"
)

// AuditReader читает последние записи аудита отправок.
// nil допустим: без Redis отдаём пустой список.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]invoice.AuditEntry, error)
}

// Handlers - HTTP-обработчики диагностики и ручной отправки инвойсов.
// Поверхность служебная: без аутентификации, предполагается закрытый
// периметр деплоймента.
type Handlers struct {
	product    *product.Product
	dispatcher *invoice.Dispatcher
	reporter   *diagnostics.Reporter
	auditTrail AuditReader
	startedAt  time.Time
}

func NewHandlers(p *product.Product, d *invoice.Dispatcher, r *diagnostics.Reporter, trail AuditReader) *Handlers {
	return &Handlers{
		product:    p,
		dispatcher: d,
		reporter:   r,
		auditTrail: trail,
		startedAt:  time.Now(),
	}
}

// Mux собирает маршруты сервиса
func (h *Handlers) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", h.handleStatus)
	mux.HandleFunc("/product", h.handleProduct)
	mux.HandleFunc("/invoice", h.handleInvoice)
	mux.HandleFunc("/invoice/test", h.handleInvoiceTest)
	mux.HandleFunc("/prices-preview", h.handlePricesPreview)
	mux.HandleFunc("/telegram/health", h.handleTelegramHealth)
	mux.HandleFunc("/telegram/meta", h.handleTelegramMeta)
	mux.HandleFunc("/dispatch/audit", h.handleDispatchAudit)
	return mux
}

type apiError struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type apiData struct {
	OK   bool        `json:"ok"`
	Data interface{} `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("⚠️ Ошибка записи HTTP-ответа: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, apiError{OK: false, Error: msg, Details: details})
}

// handleStatus - liveness
func (h *Handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"status": "running",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// handleProduct отдает публичное описание продукта, без токена провайдера
func (h *Handlers) handleProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, apiData{OK: true, Data: h.product.Summary()})
}

type invoiceRequest struct {
	ChatID json.RawMessage `json:"chatId"`
}

// parseChatID принимает chatId числом или строкой цифр; всё остальное
// отклоняется до какого-либо сетевого обращения
func parseChatID(r *http.Request) (int64, error) {
	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return 0, errors.New("request body must be JSON with a chatId field")
	}

	chatID, err := strconv.ParseInt(strings.Trim(string(req.ChatID), `"`), 10, 64)
	if err != nil {
		return 0, errors.New("chatId must be an integer")
	}
	if chatID <= 0 {
		return 0, errors.New("chatId must be a positive integer")
	}
	return chatID, nil
}

func (h *Handlers) handleInvoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	chatID, err := parseChatID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	h.writeDispatchResult(w, h.dispatcher.Dispatch(r.Context(), chatID))
}

// handleInvoiceTest - ручной диагностический обход: raw-отправка без
// primary-попытки, на случай изменения текста parse-отказа платформой
func (h *Handlers) handleInvoiceTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	chatID, err := parseChatID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	h.writeDispatchResult(w, h.dispatcher.DispatchRaw(r.Context(), chatID))
}

func (h *Handlers) writeDispatchResult(w http.ResponseWriter, res invoice.DispatchResult) {
	if res.OK {
		writeJSON(w, http.StatusOK, res)
		return
	}

	status := http.StatusBadRequest
	var terr *invoice.TransportError
	if errors.As(res.Err, &terr) {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, res)
}

func (h *Handlers) handlePricesPreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, apiData{OK: true, Data: h.reporter.PricesPreview()})
}

func (h *Handlers) handleTelegramHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	health, err := h.reporter.Health()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "payment configuration is invalid", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, apiData{OK: true, Data: health})
}

// handleTelegramMeta отдает идентичность бота и deep-link'и.
// Неразрешённая идентичность - 500, чтобы мониторинг её заметил.
func (h *Handlers) handleTelegramMeta(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	meta, err := h.reporter.Meta()
	if err != nil {
		var unresolved *identity.IdentityUnresolvedError
		if errors.As(err, &unresolved) {
			writeError(w, http.StatusInternalServerError, unresolved.Error(), "")
			return
		}
		writeError(w, http.StatusInternalServerError, "meta unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, apiData{OK: true, Data: meta})
}

func (h *Handlers) handleDispatchAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries := []invoice.AuditEntry{}
	if h.auditTrail != nil {
		var err error
		entries, err = h.auditTrail.ListRecent(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "audit trail unavailable", err.Error())
			return
		}
		if entries == nil {
			entries = []invoice.AuditEntry{}
		}
	}

	writeJSON(w, http.StatusOK, apiData{OK: true, Data: entries})
}
