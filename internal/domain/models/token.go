package models

import (
	"sort"
	"time"
)

// Token is one entry of the supported-token catalog.
type Token struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	CoingeckoID *string   `json:"coingecko_id,omitempty"`
	Blockchain  *string   `json:"blockchain,omitempty"`
	MarketCap   *float64  `json:"market_cap,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SortTokensByMarketCap orders tokens by market cap descending. Tokens without
// a market cap go last; ties fall back to symbol.
func SortTokensByMarketCap(tokens []Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		a, b := tokens[i].MarketCap, tokens[j].MarketCap
		switch {
		case a == nil && b == nil:
			return tokens[i].Symbol < tokens[j].Symbol
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		}
		return tokens[i].Symbol < tokens[j].Symbol
	})
}
