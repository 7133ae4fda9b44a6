package models

// Requests for the signals/prices HTTP endpoints. Defined in domain for consistency and reuse.

type GenerateSignalRequest struct {
	Symbol    string `json:"symbol" validate:"required,max=20"`
	Timeframe string `json:"timeframe" default:"3D" validate:"required,max=8"`
}

type ListSignalsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"omitempty,max=20"`
	Limit  int    `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=100"`
}

type PriceHistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=20"`
	Days   int    `query:"days" json:"days" default:"7" validate:"gte=1,lte=365"`
}

type PricePointInput struct {
	Timestamp string   `json:"timestamp" validate:"required"`
	Open      float64  `json:"open_price" validate:"gt=0"`
	High      float64  `json:"high_price" validate:"gt=0"`
	Low       float64  `json:"low_price" validate:"gt=0"`
	Close     float64  `json:"close_price" validate:"gt=0"`
	Volume    *float64 `json:"volume" validate:"omitempty,gte=0"`
	MarketCap *float64 `json:"market_cap" validate:"omitempty,gte=0"`
}

type StorePricesRequest struct {
	Symbol string            `json:"symbol" validate:"required,max=20"`
	Points []PricePointInput `json:"points" validate:"required,min=1,max=5000,dive"`
}
