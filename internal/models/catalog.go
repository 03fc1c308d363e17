package models

// CatalogRecord is a product as known to the structured store.
type CatalogRecord struct {
	ID         string                 `json:"id"`
	Title      string                 `json:"title"`
	Handle     string                 `json:"handle,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Producer   *Producer              `json:"producer,omitempty"`
	Categories []Category             `json:"categories,omitempty"`
	Variants   []Variant              `json:"variants,omitempty"`
}

type Producer struct {
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

type Category struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Name   string `json:"name"`
}

type Variant struct {
	ID     string  `json:"id"`
	Prices []Price `json:"prices,omitempty"`
}

// Price amounts are stored as the store returns them; integer amounts are minor units.
type Price struct {
	Amount       float64 `json:"amount"`
	CurrencyCode string  `json:"currency_code,omitempty"`
}

// Region carries the pricing context a storefront request runs in.
type Region struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CurrencyCode string `json:"currency_code"`
}
