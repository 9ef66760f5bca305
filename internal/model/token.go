package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DefaultDecimals is used when a venue reports unparsable token decimals.
const DefaultDecimals uint8 = 18

// Token describes one leg of a pool.
type Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Decimals uint8  `json:"decimals"`
	Verified bool   `json:"verified"`
}

// Decimals decodes token precision that upstream feeds send either as a JSON
// number or as a numeric string. Anything outside 0-255 falls back to 18.
type Decimals uint8

func (d *Decimals) UnmarshalJSON(data []byte) error {
	*d = Decimals(ParseDecimals(data))
	return nil
}

// Uint8 returns the decoded precision.
func (d Decimals) Uint8() uint8 {
	return uint8(d)
}

// ParseDecimals normalizes a raw JSON value (string or number) into a decimal
// precision, returning DefaultDecimals when it cannot be parsed.
func ParseDecimals(raw []byte) uint8 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return DefaultDecimals
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return DefaultDecimals
		}
		text = strings.TrimSpace(s)
	}

	v, err := strconv.ParseUint(text, 10, 8)
	if err != nil {
		return DefaultDecimals
	}
	return uint8(v)
}

// TokenPrice is a venue's current quote for a token, in USD.
type TokenPrice struct {
	Address string  `json:"address"`
	Symbol  string  `json:"symbol"`
	Price   float64 `json:"price"`
}
