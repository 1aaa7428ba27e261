// internal/diagnostics/reporter.go
package diagnostics

import (
	"fmt"

	"course-payments-bot/internal/identity"
	"course-payments-bot/internal/pricing"
	"course-payments-bot/internal/product"
	"course-payments-bot/internal/utils"
)

// Reporter отвечает на диагностические запросы read-only: без сетевых
// обращений и без побочных эффектов. Единственный способ увидеть
// точный payload цен до реальной отправки.
type Reporter struct {
	product *product.Product
	holder  *identity.Holder
}

func NewReporter(p *product.Product, holder *identity.Holder) *Reporter {
	return &Reporter{product: p, holder: holder}
}

// PricesPreview - массив цен, его сериализованная форма и вердикт
// строгого валидатора. Собирается тем же конвейером, что и реальная
// отправка, поэтому превью честно показывает то, что уйдёт на провод.
type PricesPreview struct {
	Currency   string              `json:"currency"`
	Prices     []pricing.PriceLine `json:"prices"`
	PricesJSON string              `json:"pricesJson"`
	Valid      bool                `json:"valid"`
	Error      string              `json:"error,omitempty"`
}

func (r *Reporter) PricesPreview() PricesPreview {
	preview := PricesPreview{Currency: r.product.Currency}

	prices, err := pricing.BuildPrices(r.product)
	if err != nil {
		preview.Error = err.Error()
		return preview
	}
	preview.Prices = prices

	raw, err := pricing.StringifyPrices(prices)
	if err != nil {
		preview.Error = err.Error()
		return preview
	}
	preview.PricesJSON = string(raw)

	if err := pricing.ValidateRawPrices(raw); err != nil {
		preview.Error = err.Error()
		return preview
	}

	preview.Valid = true
	return preview
}

// Health - слепок платёжной конфигурации с замаскированным токеном
// провайдера. Полный токен наружу не выходит никогда.
type Health struct {
	Status        string `json:"status"`
	Currency      string `json:"currency"`
	ProviderToken string `json:"providerToken"`
	AmountMinor   int64  `json:"amountMinor"`
	PricePreview  string `json:"pricePreview"`
}

func (r *Reporter) Health() (Health, error) {
	amount, err := pricing.ToMinorUnits(r.product.PriceMajor)
	if err != nil {
		return Health{}, err
	}

	return Health{
		Status:        "ok",
		Currency:      r.product.Currency,
		ProviderToken: utils.MaskToken(r.product.ProviderToken),
		AmountMinor:   amount,
		PricePreview:  fmt.Sprintf("%.2f %s = %d minor units", r.product.PriceMajor, r.product.Currency, amount),
	}, nil
}

// Meta - идентичность бота и deep-link'и на её основе.
// При неразрешённой идентичности возвращает IdentityUnresolvedError,
// чтобы вызывающая сторона могла отличить "ещё нет" от "пусто".
type Meta struct {
	Identity identity.BotIdentity `json:"identity"`
	Links    identity.DeepLinks   `json:"links"`
}

func (r *Reporter) Meta() (Meta, error) {
	id := r.holder.Get()
	if !id.Resolved {
		return Meta{Identity: id}, &identity.IdentityUnresolvedError{}
	}

	return Meta{
		Identity: id,
		Links:    identity.BuildDeepLinks(id, r.product.StartParameter),
	}, nil
}
