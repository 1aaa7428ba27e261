// internal/identity/deeplinks.go
package identity

import (
	"fmt"
	"net/url"
)

// DeepLinks - три формы ссылки, открывающие чат с ботом с start-токеном:
// нативная схема и два HTTPS-варианта (web/desktop).
type DeepLinks struct {
	App     string `json:"tg,omitempty"`
	Web     string `json:"web,omitempty"`
	Desktop string `json:"desktop,omitempty"`
}

// BuildDeepLinks - чистая функция от (username, startParameter).
// При неразрешённой идентичности все три ссылки пусты - вызывающая
// сторона обязана это учитывать.
func BuildDeepLinks(id BotIdentity, startParameter string) DeepLinks {
	if !id.Resolved || id.Username == "" {
		return DeepLinks{}
	}

	start := url.QueryEscape(startParameter)
	return DeepLinks{
		App:     fmt.Sprintf("tg://resolve?domain=%s&start=%s", id.Username, start),
		Web:     fmt.Sprintf("https://t.me/%s?start=%s", id.Username, start),
		Desktop: fmt.Sprintf("https://telegram.me/%s?start=%s", id.Username, start),
	}
}
