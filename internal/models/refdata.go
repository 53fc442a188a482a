package models

// ScripCode maps a listed company to its exchange-native identifier.
// BSE uses numeric scrip codes, NSE uses ticker symbols.
type ScripCode struct {
	CompanyName string `json:"company_name"`
	Code        string `json:"code"`
	Exchange    string `json:"exchange"`
}
