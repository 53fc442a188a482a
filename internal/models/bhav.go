package models

import "github.com/shopspring/decimal"

// EquityBar is one row of an equity bhavcopy snapshot, reduced to the columns
// the comparison analytics need.
type EquityBar struct {
	TradeDate    string          `json:"trade_date"`
	Series       string          `json:"series"`
	Ticker       string          `json:"ticker"`
	InstrumentNm string          `json:"instrument_name"`
	Close        decimal.Decimal `json:"close"`
}

// DerivativeBar is one row of a derivatives bhavcopy snapshot.
type DerivativeBar struct {
	Ticker         string          `json:"ticker"`
	Expiry         string          `json:"expiry"`
	Strike         decimal.Decimal `json:"strike"`
	OptionType     string          `json:"option_type"` // "CE", "PE", or "" for futures
	InstrumentNm   string          `json:"instrument_name"`
	Close          decimal.Decimal `json:"close"`
	PrevClose      decimal.Decimal `json:"prev_close"`
	UnderlyingPx   decimal.Decimal `json:"underlying_price"`
	SettlePx       decimal.Decimal `json:"settle_price"`
	OpenInterest   decimal.Decimal `json:"open_interest"`
	ChangeInOI     decimal.Decimal `json:"change_in_oi"`
	PctChangeInOI  decimal.Decimal `json:"pct_change_in_oi"`
}

// PriceChange is one row of a two-snapshot close-price comparison.
type PriceChange struct {
	InstrumentNm string          `json:"instrument_name"`
	Ticker       string          `json:"ticker"`
	CloseFirst   decimal.Decimal `json:"close_first"`
	CloseSecond  decimal.Decimal `json:"close_second"`
	PctChange    decimal.Decimal `json:"pct_change"`
}

// OptionStrikeRow merges the call and put legs at one strike.
type OptionStrikeRow struct {
	Strike        decimal.Decimal `json:"strike"`
	CEClose       decimal.Decimal `json:"ce_close"`
	CEOpenInt     decimal.Decimal `json:"ce_open_interest"`
	CEChangeInOI  decimal.Decimal `json:"ce_change_in_oi"`
	CEPctOIChange decimal.Decimal `json:"ce_pct_oi_change"`
	PEClose       decimal.Decimal `json:"pe_close"`
	PEOpenInt     decimal.Decimal `json:"pe_open_interest"`
	PEChangeInOI  decimal.Decimal `json:"pe_change_in_oi"`
	PEPctOIChange decimal.Decimal `json:"pe_pct_oi_change"`
	HasCE         bool            `json:"has_ce"`
	HasPE         bool            `json:"has_pe"`
}

// PutCallRatio is the put/call open-interest ratio for one ticker+expiry.
type PutCallRatio struct {
	Ticker  string          `json:"ticker"`
	Expiry  string          `json:"expiry"`
	PutOI   decimal.Decimal `json:"put_oi"`
	CallOI  decimal.Decimal `json:"call_oi"`
	Ratio   decimal.Decimal `json:"ratio"`
	Defined bool            `json:"defined"` // false when call OI is zero
}
