// internal/invoice/fallback.go
package invoice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"course-payments-bot/internal/product"
)

// FallbackClient отправляет sendInvoice напрямую через
// application/x-www-form-urlencoded, минуя кодирование библиотеки.
// Обход существует потому, что под подозрением именно внутренняя
// сериализация библиотеки, а не наша валидация: каждое поле
// стрингифицируется отдельно, а prices передаётся одной строкой JSON.
type FallbackClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewFallbackClient(baseURL, token string, timeout time.Duration) *FallbackClient {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &FallbackClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// apiResponse - ответ Telegram API на sendInvoice
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// SendInvoice выполняет raw-отправку инвойса. Успех определяется
// исключительно полем ok в теле ответа, независимо от HTTP-статуса.
// Возвращает result, сырое тело ответа и ошибку.
func (c *FallbackClient) SendInvoice(ctx context.Context, chatID int64, p *product.Product, pricesJSON []byte) (json.RawMessage, string, error) {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("title", p.Title)
	form.Set("description", p.Description)
	form.Set("payload", p.Payload)
	form.Set("provider_token", p.ProviderToken)
	form.Set("start_parameter", p.StartParameter)
	form.Set("currency", p.Currency)
	form.Set("prices", string(pricesJSON))

	endpoint := fmt.Sprintf("%s/bot%s/sendInvoice", c.baseURL, c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, "", &TransportError{Path: "fallback", Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", &TransportError{Path: "fallback", Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &TransportError{Path: "fallback", Err: fmt.Errorf("read response: %w", err)}
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, string(body), &TransportError{
			Path:         "fallback",
			ResponseBody: string(body),
			Err:          fmt.Errorf("parse response: %w", err),
		}
	}

	if !api.OK {
		return nil, string(body), &TransportError{
			Path:         "fallback",
			ResponseBody: string(body),
			Err:          fmt.Errorf("telegram API error %d: %s", api.ErrorCode, api.Description),
		}
	}

	return api.Result, string(body), nil
}
