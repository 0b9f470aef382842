package catalog

import currency "github.com/malusev998/currency-board"

var defaultCurrencies = []currency.Currency{
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "¥", Flag: "CN"},
	{Code: "HKD", Name: "Hong Kong Dollar", Symbol: "HK$", Flag: "HK"},
	{Code: "USD", Name: "US Dollar", Symbol: "$", Flag: "US"},
	{Code: "EUR", Name: "Euro", Symbol: "€", Flag: "EU"},
	{Code: "GBP", Name: "British Pound", Symbol: "£", Flag: "GB"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥", Flag: "JP"},
	{Code: "KRW", Name: "South Korean Won", Symbol: "₩", Flag: "KR"},
	{Code: "SGD", Name: "Singapore Dollar", Symbol: "S$", Flag: "SG"},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$", Flag: "AU"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "C$", Flag: "CA"},
}

var flags = map[currency.Code]string{
	"AED": "AE", "AUD": "AU", "BGN": "BG", "BRL": "BR", "CAD": "CA",
	"CHF": "CH", "CNY": "CN", "CZK": "CZ", "DKK": "DK", "EUR": "EU",
	"GBP": "GB", "HKD": "HK", "HUF": "HU", "IDR": "ID", "ILS": "IL",
	"INR": "IN", "JPY": "JP", "KRW": "KR", "MXN": "MX", "MYR": "MY",
	"NOK": "NO", "NZD": "NZ", "PHP": "PH", "PLN": "PL", "RON": "RO",
	"RUB": "RU", "SAR": "SA", "SEK": "SE", "SGD": "SG", "THB": "TH",
	"TRY": "TR", "TWD": "TW", "USD": "US", "VND": "VN", "ZAR": "ZA",
}

var symbols = map[currency.Code]string{
	"USD": "$", "EUR": "€", "GBP": "£", "JPY": "¥", "CNY": "¥",
	"KRW": "₩", "INR": "₹", "RUB": "₽", "BRL": "R$", "ZAR": "R",
	"THB": "฿", "VND": "₫", "PHP": "₱", "CHF": "CHF", "CAD": "C$",
	"AUD": "A$", "NZD": "NZ$", "SGD": "S$", "HKD": "HK$", "TWD": "NT$",
	"MXN": "MX$", "IDR": "Rp", "MYR": "RM", "AED": "AED", "SAR": "SAR",
}

var names = map[currency.Code]string{
	"AED": "UAE Dirham",
	"AUD": "Australian Dollar",
	"BGN": "Bulgarian Lev",
	"BRL": "Brazilian Real",
	"CAD": "Canadian Dollar",
	"CHF": "Swiss Franc",
	"CNY": "Chinese Yuan",
	"CZK": "Czech Koruna",
	"DKK": "Danish Krone",
	"EUR": "Euro",
	"GBP": "British Pound",
	"HKD": "Hong Kong Dollar",
	"HUF": "Hungarian Forint",
	"IDR": "Indonesian Rupiah",
	"ILS": "Israeli New Shekel",
	"INR": "Indian Rupee",
	"JPY": "Japanese Yen",
	"KRW": "South Korean Won",
	"MXN": "Mexican Peso",
	"MYR": "Malaysian Ringgit",
	"NOK": "Norwegian Krone",
	"NZD": "New Zealand Dollar",
	"PHP": "Philippine Peso",
	"PLN": "Polish Zloty",
	"RON": "Romanian Leu",
	"RUB": "Russian Ruble",
	"SAR": "Saudi Riyal",
	"SEK": "Swedish Krona",
	"SGD": "Singapore Dollar",
	"THB": "Thai Baht",
	"TRY": "Turkish Lira",
	"TWD": "New Taiwan Dollar",
	"USD": "US Dollar",
	"VND": "Vietnamese Dong",
	"ZAR": "South African Rand",
}
