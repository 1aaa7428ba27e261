// internal/invoice/errors.go
package invoice

import "fmt"

// InvalidChatIDError - некорректный адресат. Отказ терминален и
// происходит до сборки цен и какой-либо сетевой работы.
type InvalidChatIDError struct {
	ChatID int64
}

func (e *InvalidChatIDError) Error() string {
	return fmt.Sprintf("chat id must be a positive integer, got %d", e.ChatID)
}

// TransportError оборачивает отказ либо библиотечного клиента, либо
// raw-HTTP запроса. Несёт тело ответа платформы, когда оно доступно.
type TransportError struct {
	Path         string // primary | fallback
	ResponseBody string
	Err          error
}

func (e *TransportError) Error() string {
	if e.ResponseBody != "" {
		return fmt.Sprintf("%s send failed: %v (response: %s)", e.Path, e.Err, e.ResponseBody)
	}
	return fmt.Sprintf("%s send failed: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
